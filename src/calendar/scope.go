// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import "github.com/hexya-erp/crm/src/models"

// A Direction is the direction of a synchronization between a source
// record and its calendar event.
type Direction uint8

// Synchronization directions
const (
	// Forward is the synchronization of a source record into its event
	Forward Direction = iota + 1
	// Reverse is the synchronization of an event into its source record
	Reverse
)

// String method for Direction
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	}
	return "unknown"
}

type scopeKey struct {
	direction Direction
	ref       models.Reference
}

// A Scope holds the state of a single save operation. It records which
// synchronizations are in flight so that they are not triggered again
// by the writes they cause. A Scope must not be shared between operations.
type Scope struct {
	// FromCalendarDrag is set when the operation is a drag and drop
	// rescheduling in a calendar view. It disables the checks that
	// prevent scheduling in the past.
	FromCalendarDrag bool
	suppressed       map[scopeKey]int
}

// NewScope returns a new Scope for a save operation
func NewScope(fromCalendarDrag bool) *Scope {
	return &Scope{
		FromCalendarDrag: fromCalendarDrag,
		suppressed:       make(map[scopeKey]int),
	}
}

// Suppress disables the given synchronization for ref until the returned
// release function is called.
func (s *Scope) Suppress(dir Direction, ref models.Reference) (release func()) {
	key := scopeKey{direction: dir, ref: ref}
	s.suppressed[key]++
	return func() {
		s.suppressed[key]--
		if s.suppressed[key] <= 0 {
			delete(s.suppressed, key)
		}
	}
}

// IsSuppressed returns true if the given synchronization is disabled for ref
func (s *Scope) IsSuppressed(dir Direction, ref models.Reference) bool {
	if s == nil {
		return false
	}
	return s.suppressed[scopeKey{direction: dir, ref: ref}] > 0
}

// AllowsPast returns true if records may be scheduled in the past in this scope
func (s *Scope) AllowsPast() bool {
	return s != nil && s.FromCalendarDrag
}
