// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import (
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/pkg/errors"
)

// ValidateEvent checks that the timing of ev is consistent with the
// record it is linked to. Events without reference are always valid.
//
// Checks against the current time are skipped when the scope comes from
// a calendar drag.
func (c *Calendar) ValidateEvent(env models.Environment, ev *models.Event, scope *Scope) error {
	ref := ev.Reference()
	if ref.IsZero() {
		return nil
	}
	switch ref.Kind {
	case models.KindCall:
		return c.validateCallEvent(ev, scope)
	case models.KindMeeting:
		meeting, err := env.GetMeeting(ref.ID)
		if err != nil {
			return referenceError(ref, err)
		}
		return c.validateMeetingEvent(ev, meeting, scope)
	case models.KindToDo:
		todo, err := env.GetToDo(ref.ID)
		if err != nil {
			return referenceError(ref, err)
		}
		return c.validateToDoEvent(ev, todo, scope)
	}
	return nil
}

// referenceError wraps the error of fetching the record referenced by an event
func referenceError(ref models.Reference, err error) error {
	if models.IsNotFound(err) {
		return exceptions.NewUserError("%s %s not found", ref.Kind, ref.ID)
	}
	return errors.Wrapf(err, "unable to load %s", ref)
}

// validateCallEvent validates the event of a call. The state of the call
// is taken from the event itself, since the event may be the one changing it.
func (c *Calendar) validateCallEvent(ev *models.Event, scope *Scope) error {
	now := c.now()
	if !ev.StartsOn.IsZero() && !ev.EndsOn.IsZero() && ev.StartsOn.Greater(ev.EndsOn) {
		return exceptions.NewUserError("Call start time cannot be after end time.")
	}
	switch ev.Status {
	case models.EventOpen:
		if ev.StartsOn.IsZero() {
			return exceptions.NewUserError("Call start time is required.")
		}
		if !scope.AllowsPast() && ev.StartsOn.Lower(now) {
			return exceptions.NewUserError("Scheduled Call Time cannot be in the past.")
		}
	case models.EventCompleted:
		if ev.EndsOn.IsZero() {
			return exceptions.NewUserError("Completed Call must have an end time.")
		}
		if ev.EndsOn.Greater(now) {
			return exceptions.NewUserError("Completed Call End Time cannot be in the future.")
		}
	}
	return nil
}

func (c *Calendar) validateMeetingEvent(ev *models.Event, meeting *models.Meeting, scope *Scope) error {
	if ev.StartsOn.IsZero() {
		return exceptions.NewUserError("Meeting start time is required.")
	}
	now := c.now()
	switch meeting.Status {
	case models.MeetingScheduled:
		if !scope.AllowsPast() && ev.StartsOn.Lower(now) {
			return exceptions.NewUserError("Scheduled Meeting cannot be in the past.")
		}
	case models.MeetingCompleted:
		if ev.StartsOn.Greater(now) {
			return exceptions.NewUserError("Completed Meeting cannot be in the future.")
		}
	}
	return nil
}

// validateToDoEvent validates the event of a todo. Dates are compared in
// the calendar location and today is always allowed.
func (c *Calendar) validateToDoEvent(ev *models.Event, todo *models.ToDo, scope *Scope) error {
	if ev.StartsOn.IsZero() {
		return exceptions.NewUserError("ToDo due date is required.")
	}
	due := c.LocalDate(ev.StartsOn)
	today := c.Today()
	switch todo.Status {
	case models.ToDoOpen:
		if !scope.AllowsPast() && due.Lower(today) {
			return exceptions.NewUserError("Open ToDo cannot have a past due date.")
		}
	case models.ToDoClosed:
		if due.Greater(today) {
			return exceptions.NewUserError("Completed ToDo cannot be in the future.")
		}
	}
	return nil
}
