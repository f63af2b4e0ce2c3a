package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ConversationRepository *ConversationRepository
	ParticipantRepository  *ParticipantRepository
	MessageRepository      *MessageRepository
	AttachmentRepository   *AttachmentRepository
	ReactionRepository     *ReactionRepository
	ReadPointerRepository  *ReadPointerRepository
	FollowRepository       *FollowRepository
	BlockRepository        *BlockRepository
	ReportRepository       *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		ConversationRepository: NewConversationRepository(db),
		ParticipantRepository:  NewParticipantRepository(db),
		MessageRepository:      NewMessageRepository(db),
		AttachmentRepository:   NewAttachmentRepository(db),
		ReactionRepository:     NewReactionRepository(db),
		ReadPointerRepository:  NewReadPointerRepository(db),
		FollowRepository:       NewFollowRepository(db),
		BlockRepository:        NewBlockRepository(db),
		ReportRepository:       NewReportRepository(db),
	}
}
