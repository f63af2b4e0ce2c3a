package mediatoken

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleToken(t *testing.T) {
	id := uuid.New()
	text := fmt.Sprintf("check out this bud [media:%s] fresh harvest", id)

	ids := Parse(text)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}

func TestParseOrderOfFirstAppearance(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	text := fmt.Sprintf("[media:%s] then [media:%s] then [media:%s] again", first, second, first)

	ids := Parse(text)
	require.Len(t, ids, 2)
	assert.Equal(t, first, ids[0])
	assert.Equal(t, second, ids[1])
}

func TestParseMalformedTokensSkipped(t *testing.T) {
	valid := uuid.New()
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no tokens", "just plain text with #hashtags", 0},
		{"short id", "[media:abc123]", 0},
		{"unclosed", fmt.Sprintf("[media:%s", valid), 0},
		{"wrong keyword", fmt.Sprintf("[image:%s]", valid), 0},
		{"valid among noise", fmt.Sprintf("[media:xyz] [media:%s] [media:]", valid), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Parse(tt.text), tt.want)
		})
	}
}

func TestParseEmptyText(t *testing.T) {
	assert.Nil(t, Parse(""))
}
