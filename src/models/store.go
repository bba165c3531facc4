// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package models holds the CRM records and their persistence.
//
// All reads and writes go through an Environment, which is bound to
// a single transaction opened by Store.ExecuteInNewEnvironment.
package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/logging"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("models")
}

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// A Store gives access to the persisted CRM records.
type Store interface {
	// ExecuteInNewEnvironment executes fnct in a new Environment within
	// a new transaction. The transaction is committed if fnct returns nil
	// and rolled back otherwise.
	ExecuteInNewEnvironment(ctx context.Context, fnct func(Environment) error) error
	// Close releases the resources held by the store
	Close() error
}

// An Environment gives access to the records within a transaction.
//
// Create methods set the ID of the given record if it is empty. Get and
// Update methods return ErrNotFound if the record does not exist.
type Environment interface {
	GetCall(id string) (*Call, error)
	CreateCall(call *Call) error
	UpdateCall(call *Call) error
	// CallsInRange returns the calls that overlap the given time range
	CallsInRange(start, end dates.DateTime) ([]*Call, error)

	GetMeeting(id string) (*Meeting, error)
	CreateMeeting(meeting *Meeting) error
	UpdateMeeting(meeting *Meeting) error
	// MeetingsInRange returns the meetings that overlap the given time range
	MeetingsInRange(start, end dates.DateTime) ([]*Meeting, error)

	GetToDo(id string) (*ToDo, error)
	CreateToDo(todo *ToDo) error
	UpdateToDo(todo *ToDo) error

	GetEvent(id string) (*Event, error)
	CreateEvent(event *Event) error
	UpdateEvent(event *Event) error
	// FindEventByReference returns the event linked to the given record
	FindEventByReference(ref Reference) (*Event, error)
	// EventsInRange returns the events that overlap the given time range.
	// Events without end are considered to end when they start.
	EventsInRange(start, end dates.DateTime) ([]*Event, error)

	GetLead(id string) (*Lead, error)
	CreateLead(lead *Lead) error
	UpdateLead(lead *Lead) error
	GetLeadFollowup(id string) (*LeadFollowup, error)
	CreateLeadFollowup(row *LeadFollowup) error
	UpdateLeadFollowup(row *LeadFollowup) error
	// LeadFollowups returns the follow-up history of the given lead
	LeadFollowups(leadID string) ([]*LeadFollowup, error)
	CreateLeadTimeline(row *LeadTimeline) error
	// LeadTimelines returns the pipeline history of the given lead
	LeadTimelines(leadID string) ([]*LeadTimeline, error)

	GetReminder(id string) (*ReminderQueue, error)
	CreateReminder(entry *ReminderQueue) error
	UpdateReminder(entry *ReminderQueue) error
	// DeleteUnsentReminders deletes all entries of the given reference that
	// are not Sent and returns the number of deleted entries.
	DeleteUnsentReminders(ref Reference) (int64, error)
	// RemindersFor returns all entries of the given reference ordered by trigger time
	RemindersFor(ref Reference) ([]*ReminderQueue, error)
	// DueReminders returns the Pending entries with a trigger time before or at now
	DueReminders(now dates.DateTime) ([]*ReminderQueue, error)
	// ClaimReminder atomically moves the given entry from Pending to
	// Processing. It returns false if the entry was not Pending anymore.
	ClaimReminder(id string) (bool, error)
	// MarkReminderSent sets the given entry to Sent
	MarkReminderSent(id string, sentAt dates.DateTime) error
	// MarkReminderFailed sets the given entry to Failed, increments its
	// attempts counter and stores the error message.
	MarkReminderFailed(id string, lastError string) error
}

// NewID returns a new unique record identifier
func NewID() string {
	return uuid.NewString()
}

// ensureID sets *id to a new identifier if it is empty
func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}
