// Package size defines the five discrete size presets shared by the avatar
// and tooltip components.
//
// The presets are ordered from smallest to largest:
//
//	size.XS, size.SM, size.MD, size.LG, size.XL
//
// Components key their own pixel tables by [Class]; this package only owns
// the enumeration and its parsing.
package size

import (
	"strings"

	"github.com/matzehuels/facepile/pkg/errors"
)

// Class is one of the five size presets.
type Class string

// Size presets.
const (
	XS Class = "xs"
	SM Class = "sm"
	MD Class = "md"
	LG Class = "lg"
	XL Class = "xl"
)

// Default is the preset used when none is given.
const Default = MD

var all = []Class{XS, SM, MD, LG, XL}

// All returns the presets in ascending order.
func All() []Class {
	out := make([]Class, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is one of the five presets.
func (c Class) Valid() bool {
	switch c {
	case XS, SM, MD, LG, XL:
		return true
	}
	return false
}

// String returns the preset name.
func (c Class) String() string { return string(c) }

// Validate returns an INVALID_SIZE error unless c is a known preset.
func (c Class) Validate() error {
	if !c.Valid() {
		return errors.New(errors.ErrCodeInvalidSize, "unknown size class %q (must be one of xs, sm, md, lg, xl)", string(c))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the same
// spellings as [Parse].
func (c *Class) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse converts a preset name to a Class. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
