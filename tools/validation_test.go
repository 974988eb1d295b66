package tools

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple", "members", nil},
		{"mixed case", "A01_ClanInfo", nil},
		{"leading underscore", "_private", nil},
		{"digits after first", "col2", nil},
		{"empty", "", ErrEmptyIdentifier},
		{"leading digit", "1col", ErrInvalidCharacter},
		{"space", "clan info", ErrInvalidCharacter},
		{"quote", "a\"b", ErrInvalidCharacter},
		{"bracket", "a]b", ErrInvalidCharacter},
		{"semicolon", "x;DROP TABLE y", ErrInvalidCharacter},
		{"hyphen", "war-log", ErrInvalidCharacter},
		{"non ascii", "clé", ErrInvalidCharacter},
		{"max length", strings.Repeat("a", MaxIdentifierLength), nil},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), ErrIdentifierTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateIdentifier(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateIdentifier(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTableAndColumnName(t *testing.T) {
	if err := ValidateTableName("bad name"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("ValidateTableName error = %v, want ErrInvalidIdentifier", err)
	}
	if err := ValidateColumnName(""); !errors.Is(err, ErrEmptyIdentifier) {
		t.Errorf("ValidateColumnName error = %v, want ErrEmptyIdentifier", err)
	}
	if err := ValidateColumnName("tag"); err != nil {
		t.Errorf("ValidateColumnName(tag) = %v, want nil", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := QuoteIdentifier("members"); got != "[members]" {
		t.Errorf("QuoteIdentifier = %q, want %q", got, "[members]")
	}
}
