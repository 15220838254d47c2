package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("item name is required")
	ErrNameTooLong     = errors.New("item name too long")
	ErrInvalidImageURL = errors.New("invalid image url")
	ErrInvalidItemID   = errors.New("invalid item id")
)

const maxNameLength = 200

var imageURLRegex = regexp.MustCompile(`^https?://\S+$`)

func ValidateItemName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateItemIDs rejects any id that is not a well formed UUID. Malformed
// ids must never reach the database: the inventory primary key is a uuid
// column, and a bad cast fails the whole query instead of matching nothing.
func ValidateItemIDs(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return ErrInvalidItemID
		}
	}
	return nil
}

// ValidateImageURL accepts an absent URL; when present it must look like an
// http(s) reference.
func ValidateImageURL(url *string) error {
	if url == nil || *url == "" {
		return nil
	}
	if !imageURLRegex.MatchString(*url) {
		return ErrInvalidImageURL
	}
	return nil
}
