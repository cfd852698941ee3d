package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atlas package.
var (
	// ErrNoGlyphs is returned when no rune of the charset resolves to a
	// glyph in the font.
	ErrNoGlyphs = errors.New("atlas: no resolvable glyphs in charset")
)

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atlas: invalid config: %s: %s", e.Field, e.Reason)
}
