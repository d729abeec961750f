package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/basket/tasktrack/internal/validate"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr error
	}{
		{"valid", "Buy milk", nil},
		{"empty", "", validate.ErrEmptyTitle},
		{"whitespace only", "   \n\t ", validate.ErrEmptyTitle},
		{"at limit", strings.Repeat("a", validate.MaxTitleLen), nil},
		{"over limit", strings.Repeat("a", validate.MaxTitleLen+1), validate.ErrTitleTooLong},
		{"multibyte at limit", strings.Repeat("я", validate.MaxTitleLen), nil},
		{"multibyte over limit", strings.Repeat("я", validate.MaxTitleLen+1), validate.ErrTitleTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Title(tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Title(%d chars) = %v, want %v", len(tt.title), err, tt.wantErr)
			}
		})
	}
}

func TestTitle_LimitIsRuneBased(t *testing.T) {
	// 200 two-byte runes are 400 bytes but still a legal title.
	title := strings.Repeat("ё", validate.MaxTitleLen)
	if len(title) <= validate.MaxTitleLen {
		t.Fatal("test input must exceed the limit in bytes")
	}
	if err := validate.Title(title); err != nil {
		t.Fatalf("expected rune-based limit to accept, got %v", err)
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		name    string
		desc    string
		wantErr error
	}{
		{"empty is valid", "", nil},
		{"normal", "pick the 2% one", nil},
		{"at limit", strings.Repeat("a", validate.MaxDescriptionLen), nil},
		{"over limit", strings.Repeat("a", validate.MaxDescriptionLen+1), validate.ErrDescriptionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Description(tt.desc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Description(%d chars) = %v, want %v", len(tt.desc), err, tt.wantErr)
			}
		})
	}
}
