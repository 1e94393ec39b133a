package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "single emoji", content: "🎉"},
		{name: "multiple emoji", content: "🎉🔥💯"},
		{name: "flag emoji", content: "🇭🇷"},
		{name: "skin tone modifier", content: "👍🏽"},
		{name: "zwj sequence", content: "👩‍💻"},
		{name: "empty", content: "", wantErr: "Post content is required"},
		{name: "plain text", content: "hello", wantErr: "Only emoji are allowed."},
		{name: "mixed emoji and text", content: "🎉 party", wantErr: "Only emoji are allowed."},
		{name: "emoji with whitespace", content: "🎉 🎉", wantErr: "Only emoji are allowed."},
		{name: "whitespace only", content: "   ", wantErr: "Only emoji are allowed."},
		{name: "at limit", content: strings.Repeat("😀", MaxPostLength)},
		{name: "over limit", content: strings.Repeat("😀", MaxPostLength+1), wantErr: "Post content must be at most 280 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePost(tt.content)
			if tt.wantErr == "" {
				assert.False(t, errs.HasErrors(), "expected %q to be valid, got %v", tt.content, errs)
			} else {
				assert.Equal(t, tt.wantErr, errs["content"])
			}
		})
	}
}

func TestValidatePostCountsCodePoints(t *testing.T) {
	// 140 flag emoji are 280 code points but far more bytes; still valid.
	content := strings.Repeat("🇭🇷", 140)
	assert.False(t, ValidatePost(content).HasErrors())

	assert.True(t, ValidatePost(strings.Repeat("🇭🇷", 141)).HasErrors())
}
