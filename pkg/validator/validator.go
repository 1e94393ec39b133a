package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// MaxPostLength is counted in code points, not bytes.
const MaxPostLength = 280

// ValidatePost checks the emoji-only content rule: non-empty, at most 280
// code points, and nothing left once every emoji sequence is stripped.
func ValidatePost(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if content == "" {
		errs.Add("content", "Post content is required")
		return errs
	}

	if utf8.RuneCountInString(content) > MaxPostLength {
		errs.Add("content", "Post content must be at most 280 characters")
		return errs
	}

	// Whitespace is not emoji either, so "🎉 🎉" fails like plain text.
	if strings.ContainsFunc(content, unicode.IsSpace) || gomoji.RemoveEmojis(content) != "" {
		errs.Add("content", "Only emoji are allowed.")
	}

	return errs
}
