package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateDefaultData provisions the rows the application expects at runtime.
// Currently that is the single general conversation backing the public feed.
func CreateDefaultData(ctx context.Context, db *pgxpool.Pool, logger zerolog.Logger) error {
	return ensureGeneralConversation(ctx, db, logger)
}

// ensureGeneralConversation creates the feed channel if it does not exist.
// The partial unique index on conv_type makes this safe under concurrent
// startups: one insert wins and the rest no-op.
func ensureGeneralConversation(ctx context.Context, db *pgxpool.Pool, logger zerolog.Logger) error {
	query := `
		INSERT INTO conversations (conv_type, title)
		VALUES ('general', 'General')
		ON CONFLICT DO NOTHING
	`

	tag, err := db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("error provisioning general conversation: %w", err)
	}

	if tag.RowsAffected() > 0 {
		logger.Info().Msg("General conversation provisioned")
	} else {
		logger.Debug().Msg("General conversation already present")
	}

	return nil
}
