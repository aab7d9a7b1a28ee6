// Package tooltip describes a tooltip as a request to an external flyout
// controller.
//
// Directional placement, viewport collision handling and dismissal belong to
// the controller. This package forwards the caller's parameters unchanged,
// fills in defaults, and renders nothing when there is no anchor.
package tooltip

import (
	"reflect"

	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

// Direction is the preferred side of the anchor for the flyout.
type Direction string

// Directions. The zero value lets the controller choose.
const (
	DirectionAuto  Direction = ""
	DirectionUp    Direction = "up"
	DirectionRight Direction = "right"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
)

// ParseDirection validates a direction name. The empty string is accepted
// and means no preference.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionAuto, DirectionUp, DirectionRight, DirectionDown, DirectionLeft:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q (must be up, right, down or left)", s)
}

// Flyout styling applied to every tooltip.
const (
	Background     = "darkGray"
	ContentColumns = 12
	ContentPadding = 3
)

// Anchor is the element the tooltip points at. It is opaque here.
type Anchor any

// Props configures a tooltip.
type Props struct {
	Anchor                   Anchor
	Content                  any
	IdealDirection           Direction
	OnDismiss                func()
	PositionRelativeToAnchor *bool
	Size                     size.Class
}

// Flyout is the request handed to the controller.
type Flyout struct {
	Anchor                   Anchor
	Content                  any
	IdealDirection           Direction
	OnDismiss                func()
	PositionRelativeToAnchor bool
	Size                     size.Class
	BgColor                  string
	Columns                  int
	Padding                  int
}

// Controller positions and shows flyouts.
type Controller interface {
	Show(f Flyout) error
}

// Render builds the flyout request for p. It reports false, and produces
// nothing, when p has no anchor.
func Render(p Props) (Flyout, bool) {
	if absent(p.Anchor) {
		return Flyout{}, false
	}
	relative := true
	if p.PositionRelativeToAnchor != nil {
		relative = *p.PositionRelativeToAnchor
	}
	sz := p.Size
	if sz == "" {
		sz = size.Default
	}
	return Flyout{
		Anchor:                   p.Anchor,
		Content:                  p.Content,
		IdealDirection:           p.IdealDirection,
		OnDismiss:                p.OnDismiss,
		PositionRelativeToAnchor: relative,
		Size:                     sz,
		BgColor:                  Background,
		Columns:                  ContentColumns,
		Padding:                  ContentPadding,
	}, true
}

// absent reports whether a is nil, including a nil pointer, map, slice,
// func or channel stored in the interface.
func absent(a Anchor) bool {
	if a == nil {
		return true
	}
	switch v := reflect.ValueOf(a); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}

// Show validates p and hands its flyout to c. A missing anchor is not an
// error; nothing is shown.
func Show(c Controller, p Props) error {
	if _, err := ParseDirection(string(p.IdealDirection)); err != nil {
		return err
	}
	if p.Size != "" {
		if err := p.Size.Validate(); err != nil {
			return err
		}
	}
	f, ok := Render(p)
	if !ok {
		return nil
	}
	return c.Show(f)
}
