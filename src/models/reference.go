// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"fmt"

	"github.com/hexya-erp/crm/src/tools/exceptions"
)

// A Kind is the type of a record that can be referenced by a calendar
// Event or a reminder queue entry.
type Kind string

// Referenceable record kinds. The values are the names stored in the
// reference_type columns.
const (
	KindCall    Kind = "Calls"
	KindMeeting Kind = "Meeting"
	KindToDo    Kind = "ToDo"
)

// Kinds lists all referenceable kinds
var Kinds = []Kind{KindCall, KindMeeting, KindToDo}

// IsValid returns true if k is a known Kind
func (k Kind) IsValid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ParseKind returns the Kind with the given name or a UserError
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !k.IsValid() {
		return "", exceptions.NewUserError("Unknown reference type %q", name)
	}
	return k, nil
}

// A Reference points to exactly one record of one Kind.
type Reference struct {
	Kind Kind
	ID   string
}

// NewReference returns a Reference to the record with the given kind and id
func NewReference(kind Kind, id string) Reference {
	return Reference{Kind: kind, ID: id}
}

// IsZero returns true if this Reference does not point to any record
func (r Reference) IsZero() bool {
	return r.Kind == "" || r.ID == ""
}

// String method for Reference
func (r Reference) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}
