// Package validate holds the pure input checks for the task-creation
// dialogue. Validators have no side effects and never touch the store.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxTitleLen is the longest accepted task title, in characters.
	MaxTitleLen = 200
	// MaxDescriptionLen is the longest accepted task description, in characters.
	MaxDescriptionLen = 1000
)

var (
	ErrEmptyTitle         = errors.New("title is empty")
	ErrTitleTooLong       = errors.New("title too long")
	ErrDescriptionTooLong = errors.New("description too long")
)

// Title checks a task title: non-blank after trimming, at most MaxTitleLen
// characters. Length is measured on the raw input, matching what the user
// typed.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if n := len([]rune(title)); n > MaxTitleLen {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrTitleTooLong, n, MaxTitleLen)
	}
	return nil
}

// Description checks a task description. Empty is always valid; the
// description is optional.
func Description(description string) error {
	if n := len([]rune(description)); n > MaxDescriptionLen {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrDescriptionTooLong, n, MaxDescriptionLen)
	}
	return nil
}
