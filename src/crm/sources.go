// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package crm

import (
	"context"

	"github.com/hexya-erp/crm/src/calendar"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/pkg/errors"
)

// Follow-up types
const (
	FollowupTypeCall    = "Call"
	FollowupTypeMeeting = "Meeting"
)

// validateCall checks that a scheduled call has a start time in the future
func (s *Service) validateCall(call *models.Call, scope *calendar.Scope) error {
	if call.Status != models.CallScheduled {
		return nil
	}
	if call.Start.IsZero() {
		return exceptions.NewUserError("Please select a Call Start Time for Scheduled calls.")
	}
	if !scope.AllowsPast() && call.Start.Lower(s.calendar.Now()) {
		return exceptions.NewUserError("Scheduled Call Time cannot be in the past.")
	}
	return nil
}

// saveCall validates and persists the given call, then updates its
// reminders, its lead follow-up and its calendar event.
func (s *Service) saveCall(ctx context.Context, env models.Environment, call *models.Call, scope *calendar.Scope) error {
	if call.Status == "" {
		call.Status = models.CallScheduled
	}
	if err := s.validateCall(call, scope); err != nil {
		return err
	}
	if call.Status == models.CallCompleted {
		followup := models.LeadFollowup{
			DateAndTime: call.Start,
			Status:      call.CompletedStatus,
			Type:        FollowupTypeCall,
			Notes:       call.CompletedNotes,
		}
		if err := s.syncFollowup(env, call.CallFor, call.LeadName, &call.LeadFollowupRow, followup); err != nil {
			return err
		}
	}
	if _, err := upsert(call.ID, env.GetCall, env.CreateCall, env.UpdateCall, call); err != nil {
		return errors.Wrap(err, "unable to save call")
	}
	if _, err := s.reminders.Reconcile(ctx, env, call); err != nil {
		return err
	}
	ref := call.Reference()
	if scope.IsSuppressed(calendar.Forward, ref) {
		return nil
	}
	ev, err := s.linkedEvent(env, ref)
	if err != nil {
		return err
	}
	s.calendar.FillFromCall(ev, call)
	if call.Status == models.CallCompleted {
		ev.Status = models.EventCompleted
	}
	return s.writeLinkedEvent(ctx, env, ev, scope)
}

// validateMeeting checks the time range of a meeting
func (s *Service) validateMeeting(meeting *models.Meeting, scope *calendar.Scope) error {
	if meeting.From.IsZero() {
		return exceptions.NewUserError("Please select Meeting Start Time.")
	}
	if !meeting.To.IsZero() && !meeting.To.Greater(meeting.From) {
		return exceptions.NewUserError("Meeting End Time must be after Start Time.")
	}
	if meeting.Status == models.MeetingScheduled && !scope.AllowsPast() && meeting.From.Lower(s.calendar.Now()) {
		return exceptions.NewUserError("Scheduled Meeting Start Time cannot be in the past.")
	}
	return nil
}

// saveMeeting validates and persists the given meeting, then updates its
// reminders, its lead follow-up and its calendar event.
func (s *Service) saveMeeting(ctx context.Context, env models.Environment, meeting *models.Meeting, scope *calendar.Scope) error {
	if meeting.Status == "" {
		meeting.Status = models.MeetingScheduled
	}
	if err := s.validateMeeting(meeting, scope); err != nil {
		return err
	}
	if meeting.Status == models.MeetingCompleted {
		followup := models.LeadFollowup{
			DateAndTime: meeting.From,
			Status:      meeting.CompletedStatus,
			Type:        FollowupTypeMeeting,
			Notes:       meeting.CompletedNotes,
		}
		if err := s.syncFollowup(env, meeting.MeetFor, meeting.LeadName, &meeting.LeadFollowupRow, followup); err != nil {
			return err
		}
	}
	if _, err := upsert(meeting.ID, env.GetMeeting, env.CreateMeeting, env.UpdateMeeting, meeting); err != nil {
		return errors.Wrap(err, "unable to save meeting")
	}
	if _, err := s.reminders.Reconcile(ctx, env, meeting); err != nil {
		return err
	}
	ref := meeting.Reference()
	if scope.IsSuppressed(calendar.Forward, ref) {
		return nil
	}
	ev, err := s.linkedEvent(env, ref)
	if err != nil {
		return err
	}
	s.calendar.FillFromMeeting(ev, meeting)
	if meeting.Status == models.MeetingCompleted {
		ev.Status = models.EventCompleted
	}
	return s.writeLinkedEvent(ctx, env, ev, scope)
}

// saveToDo persists the given todo and updates its calendar event
func (s *Service) saveToDo(ctx context.Context, env models.Environment, todo *models.ToDo, scope *calendar.Scope) error {
	if todo.Status == "" {
		todo.Status = models.ToDoOpen
	}
	if _, err := upsert(todo.ID, env.GetToDo, env.CreateToDo, env.UpdateToDo, todo); err != nil {
		return errors.Wrap(err, "unable to save todo")
	}
	ref := todo.Reference()
	if scope.IsSuppressed(calendar.Forward, ref) {
		return nil
	}
	ev, err := s.linkedEvent(env, ref)
	if err != nil {
		return err
	}
	s.calendar.FillFromToDo(ev, todo)
	return s.writeLinkedEvent(ctx, env, ev, scope)
}

// linkedEvent returns the event linked to ref, or a new event if there is none.
func (s *Service) linkedEvent(env models.Environment, ref models.Reference) (*models.Event, error) {
	ev, err := env.FindEventByReference(ref)
	switch {
	case models.IsNotFound(err):
		return new(models.Event), nil
	case err != nil:
		return nil, errors.Wrapf(err, "unable to find event of %s", ref)
	}
	return ev, nil
}

// writeLinkedEvent saves an event filled from its source record. The
// event is not validated and not synced back into its source.
func (s *Service) writeLinkedEvent(ctx context.Context, env models.Environment, ev *models.Event, scope *calendar.Scope) error {
	release := scope.Suppress(calendar.Reverse, ev.Reference())
	defer release()
	return s.saveEvent(ctx, env, ev, scope, false)
}

// syncFollowup creates or updates the follow-up row of a completed call or
// meeting in the history of its lead. row holds the id of the follow-up
// row of the source record and is set when a new row is created.
func (s *Service) syncFollowup(env models.Environment, linkedTo, leadID string, row *string, data models.LeadFollowup) error {
	if linkedTo != models.LeadLink || leadID == "" {
		return nil
	}
	if _, err := loadReferenced(models.NewReference(models.LeadLink, leadID), env.GetLead); err != nil {
		return err
	}
	data.Lead = leadID
	if *row != "" {
		existing, err := env.GetLeadFollowup(*row)
		switch {
		case err == nil && existing.Lead == leadID:
			data.ID = existing.ID
			data.Sequence = existing.Sequence
			return errors.Wrap(env.UpdateLeadFollowup(&data), "unable to update lead follow-up")
		case err != nil && !models.IsNotFound(err):
			return errors.Wrap(err, "unable to load lead follow-up")
		}
		log.Warn("Linked follow-up row not found, creating a new one", "lead", leadID, "row", *row)
	}
	if err := env.CreateLeadFollowup(&data); err != nil {
		return errors.Wrap(err, "unable to create lead follow-up")
	}
	*row = data.ID
	return nil
}
