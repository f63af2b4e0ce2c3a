// Package mediatoken parses inline media references embedded in message
// text. A token has the form [media:<attachment-id>] and is resolved against
// the attachments table on read; there is no message-attachment join table.
package mediatoken

import (
	"regexp"

	"github.com/google/uuid"
)

var tokenPattern = regexp.MustCompile(`\[media:([0-9a-fA-F-]{36})\]`)

// Parse returns the attachment ids referenced by inline tokens in text, in
// order of first appearance, deduplicated. Malformed tokens are skipped.
func Parse(text string) []uuid.UUID {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(matches))
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
