package tools

import (
	"fmt"
)

// Constants for identifier validation.
const (
	MaxIdentifierLength = 128
)

// ValidateIdentifier validates a table, column or index name.
// Identifiers are interpolated into DDL, so only ASCII letters, digits and
// underscores are accepted, and the first character may not be a digit.
func ValidateIdentifier(name string) error {
	if name == "" {
		return ErrEmptyIdentifier
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrIdentifierTooLong, len(name), MaxIdentifierLength)
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("%w: identifier must start with letter or underscore", ErrInvalidCharacter)
			}
		default:
			return fmt.Errorf("%w: '%c' at position %d", ErrInvalidCharacter, r, i)
		}
	}
	return nil
}

// ValidateTableName validates a table name.
func ValidateTableName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("%w: table name %q: %w", ErrInvalidIdentifier, name, err)
	}
	return nil
}

// ValidateColumnName validates a column name.
func ValidateColumnName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("%w: column name %q: %w", ErrInvalidIdentifier, name, err)
	}
	return nil
}

// QuoteIdentifier wraps a validated identifier in brackets for use in DDL.
func QuoteIdentifier(name string) string {
	return "[" + name + "]"
}
