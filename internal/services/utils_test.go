package services_test

import (
	"testing"

	"github.com/mongrate/mongrate/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestCleanJSONMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain json passes through",
			content: `{"key": "value"}`,
			want:    `{"key": "value"}`,
		},
		{
			name:    "json fence stripped",
			content: "```json\n{\"key\": \"value\"}\n```",
			want:    `{"key": "value"}`,
		},
		{
			name:    "uppercase fence stripped",
			content: "```JSON\n{\"key\": \"value\"}\n```",
			want:    `{"key": "value"}`,
		},
		{
			name:    "bare fence stripped",
			content: "```\n{\"key\": \"value\"}\n```",
			want:    `{"key": "value"}`,
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "  \n```json\n{}\n```\n  ",
			want:    "{}",
		},
		{
			name:    "code block inside prose untouched",
			content: "Create the index first:\n```js\ndb.users.createIndex({email: 1})\n```\nThen load the data.",
			want:    "Create the index first:\n```js\ndb.users.createIndex({email: 1})\n```\nThen load the data.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.CleanJSONMarkdown(tt.content))
		})
	}
}
