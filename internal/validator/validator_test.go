package validator

import (
	"strings"
	"testing"
)

func TestValidateItemName(t *testing.T) {
	if err := ValidateItemName("Charizard Holo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateItemName(""); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := ValidateItemName("   "); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName for whitespace, got %v", err)
	}
	if err := ValidateItemName(strings.Repeat("a", 201)); err != ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if err := ValidateItemName(strings.Repeat("a", 200)); err != nil {
		t.Fatalf("200 runes should pass, got %v", err)
	}
	// Length is counted in runes, not bytes.
	if err := ValidateItemName(strings.Repeat("ポ", 200)); err != nil {
		t.Fatalf("200 multibyte runes should pass, got %v", err)
	}
}

func TestValidateItemIDs(t *testing.T) {
	if err := ValidateItemIDs(nil); err != nil {
		t.Fatalf("empty id set should pass, got %v", err)
	}
	if err := ValidateItemIDs([]string{"3f1c2a34-88a3-4a61-9d35-6f1f6f1de001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateItemIDs([]string{"not-a-uuid"}); err != ErrInvalidItemID {
		t.Fatalf("expected ErrInvalidItemID, got %v", err)
	}
	if err := ValidateItemIDs([]string{"3f1c2a34-88a3-4a61-9d35-6f1f6f1de001", ""}); err != ErrInvalidItemID {
		t.Fatalf("expected ErrInvalidItemID for empty id, got %v", err)
	}
}

func TestValidateImageURL(t *testing.T) {
	if err := ValidateImageURL(nil); err != nil {
		t.Fatalf("nil url should pass, got %v", err)
	}
	empty := ""
	if err := ValidateImageURL(&empty); err != nil {
		t.Fatalf("empty url should pass, got %v", err)
	}
	ok := "https://images.example.com/card.png"
	if err := ValidateImageURL(&ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := "ftp://images.example.com/card.png"
	if err := ValidateImageURL(&bad); err != ErrInvalidImageURL {
		t.Fatalf("expected ErrInvalidImageURL, got %v", err)
	}
	spaced := "https://images.example.com/a card.png"
	if err := ValidateImageURL(&spaced); err != ErrInvalidImageURL {
		t.Fatalf("expected ErrInvalidImageURL for spaces, got %v", err)
	}
}
