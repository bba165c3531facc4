// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

/*
Package crm implements the save hooks of the CRM records.

Saving a Call, Meeting or ToDo validates it, reconciles its reminders
and mirrors it into its calendar Event. Saving an Event validates it
against its linked record and copies its changes back into that record.
Each save is executed in a single transaction.
*/
package crm

import (
	"context"

	"github.com/hexya-erp/crm/src/calendar"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/reminders"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/pkg/errors"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("crm")
}

// SaveOptions are the options of a save operation
type SaveOptions struct {
	// FromCalendarDrag must be set when the save is a drag and drop
	// rescheduling from a calendar view.
	FromCalendarDrag bool
	// ChangedBy is the user performing the save
	ChangedBy string
}

// A Service executes the save hooks of CRM records on a Store
type Service struct {
	store     models.Store
	reminders *reminders.Engine
	calendar  *calendar.Calendar
}

// NewService returns a Service working on the given store
func NewService(store models.Store, engine *reminders.Engine, cal *calendar.Calendar) *Service {
	return &Service{
		store:     store,
		reminders: engine,
		calendar:  cal,
	}
}

// Calendar returns the Calendar used by this Service
func (s *Service) Calendar() *calendar.Calendar {
	return s.calendar
}

// Reminders returns the reminder engine used by this Service
func (s *Service) Reminders() *reminders.Engine {
	return s.reminders
}

// execute runs fnct in a new transaction with a new sync scope
func (s *Service) execute(ctx context.Context, opts SaveOptions, fnct func(models.Environment, *calendar.Scope) error) error {
	return s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		return fnct(env, calendar.NewScope(opts.FromCalendarDrag))
	})
}

// SaveCall creates or updates the given call. call is updated with the
// saved values on success.
func (s *Service) SaveCall(ctx context.Context, call *models.Call, opts SaveOptions) error {
	rec := *call
	err := s.execute(ctx, opts, func(env models.Environment, scope *calendar.Scope) error {
		return s.saveCall(ctx, env, &rec, scope)
	})
	if err != nil {
		return err
	}
	*call = rec
	return nil
}

// SaveMeeting creates or updates the given meeting. meeting is updated
// with the saved values on success.
func (s *Service) SaveMeeting(ctx context.Context, meeting *models.Meeting, opts SaveOptions) error {
	rec := *meeting
	err := s.execute(ctx, opts, func(env models.Environment, scope *calendar.Scope) error {
		return s.saveMeeting(ctx, env, &rec, scope)
	})
	if err != nil {
		return err
	}
	*meeting = rec
	return nil
}

// SaveToDo creates or updates the given todo. todo is updated with the
// saved values on success.
func (s *Service) SaveToDo(ctx context.Context, todo *models.ToDo, opts SaveOptions) error {
	rec := *todo
	err := s.execute(ctx, opts, func(env models.Environment, scope *calendar.Scope) error {
		return s.saveToDo(ctx, env, &rec, scope)
	})
	if err != nil {
		return err
	}
	*todo = rec
	return nil
}

// SaveEvent validates then creates or updates the given event. If the
// event is linked to a record, the record is updated from the event.
func (s *Service) SaveEvent(ctx context.Context, ev *models.Event, opts SaveOptions) error {
	if ev.ReferenceType != "" && !ev.ReferenceType.IsValid() {
		return exceptions.NewUserError("Unsupported reference type: %s", ev.ReferenceType)
	}
	rec := *ev
	err := s.execute(ctx, opts, func(env models.Environment, scope *calendar.Scope) error {
		return s.saveEvent(ctx, env, &rec, scope, true)
	})
	if err != nil {
		return err
	}
	*ev = rec
	return nil
}

// GetCall returns the call with the given id
func (s *Service) GetCall(ctx context.Context, id string) (*models.Call, error) {
	var res *models.Call
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.GetCall(id)
		return err
	})
	return res, err
}

// GetMeeting returns the meeting with the given id
func (s *Service) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	var res *models.Meeting
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.GetMeeting(id)
		return err
	})
	return res, err
}

// GetToDo returns the todo with the given id
func (s *Service) GetToDo(ctx context.Context, id string) (*models.ToDo, error) {
	var res *models.ToDo
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.GetToDo(id)
		return err
	})
	return res, err
}

// GetEvent returns the event with the given id
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var res *models.Event
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.GetEvent(id)
		return err
	})
	return res, err
}

// EventFor returns the calendar event linked to the given record
func (s *Service) EventFor(ctx context.Context, ref models.Reference) (*models.Event, error) {
	var res *models.Event
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.FindEventByReference(ref)
		return err
	})
	return res, err
}

// RemindersFor returns all the reminder queue entries of the given record
func (s *Service) RemindersFor(ctx context.Context, ref models.Reference) ([]*models.ReminderQueue, error) {
	var res []*models.ReminderQueue
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = env.RemindersFor(ref)
		return err
	})
	return res, err
}

// ForceSend delivers the given reminder entry immediately
func (s *Service) ForceSend(ctx context.Context, id string) (*models.ReminderQueue, error) {
	return s.reminders.ForceSend(ctx, id)
}

// CallFeed returns the calendar view entries of the calls between start and end
func (s *Service) CallFeed(ctx context.Context, start, end dates.DateTime) ([]calendar.FeedEntry, error) {
	var res []calendar.FeedEntry
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = s.calendar.CallFeed(env, start, end)
		return err
	})
	return res, err
}

// MeetingFeed returns the calendar view entries of the meetings between start and end
func (s *Service) MeetingFeed(ctx context.Context, start, end dates.DateTime) ([]calendar.FeedEntry, error) {
	var res []calendar.FeedEntry
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = s.calendar.MeetingFeed(env, start, end)
		return err
	})
	return res, err
}

// EventFeed returns the calendar view entries of the events between start and end
func (s *Service) EventFeed(ctx context.Context, start, end dates.DateTime) ([]calendar.EventFeedEntry, error) {
	var res []calendar.EventFeedEntry
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		res, err = s.calendar.EventFeed(env, start, end)
		return err
	})
	return res, err
}

// upsert updates rec if a record with the given id exists and creates it otherwise.
// It returns true if the record has been created.
func upsert[T any](id string, get func(string) (*T, error), create, update func(*T) error, rec *T) (bool, error) {
	if id != "" {
		_, err := get(id)
		switch {
		case err == nil:
			return false, update(rec)
		case !models.IsNotFound(err):
			return false, err
		}
	}
	return true, create(rec)
}

// loadReferenced returns the record referenced by ref with the given getter.
func loadReferenced[T any](ref models.Reference, get func(string) (*T, error)) (*T, error) {
	rec, err := get(ref.ID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, exceptions.NewUserError("%s %s not found", ref.Kind, ref.ID)
		}
		return nil, errors.Wrapf(err, "unable to load %s", ref)
	}
	return rec, nil
}
