// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package crm

import (
	"context"

	"github.com/hexya-erp/crm/src/calendar"
	"github.com/hexya-erp/crm/src/models"
	"github.com/pkg/errors"
)

// saveEvent persists the given event and copies its changes into the
// record it is linked to, unless this is suppressed in scope.
func (s *Service) saveEvent(ctx context.Context, env models.Environment, ev *models.Event, scope *calendar.Scope, validate bool) error {
	if ev.Status == "" {
		ev.Status = models.EventOpen
	}
	if validate {
		if err := s.calendar.ValidateEvent(env, ev, scope); err != nil {
			return err
		}
	}
	if _, err := upsert(ev.ID, env.GetEvent, env.CreateEvent, env.UpdateEvent, ev); err != nil {
		return errors.Wrap(err, "unable to save event")
	}
	ref := ev.Reference()
	if ref.IsZero() || scope.IsSuppressed(calendar.Reverse, ref) {
		return nil
	}
	release := scope.Suppress(calendar.Forward, ref)
	defer release()
	log.Debug("Syncing event into its record", "event", ev.ID, "reference", ref)
	switch ref.Kind {
	case models.KindCall:
		call, err := loadReferenced(ref, env.GetCall)
		if err != nil {
			return err
		}
		s.calendar.ApplyToCall(call, ev)
		return s.saveCall(ctx, env, call, scope)
	case models.KindMeeting:
		meeting, err := loadReferenced(ref, env.GetMeeting)
		if err != nil {
			return err
		}
		s.calendar.ApplyToMeeting(meeting, ev)
		return s.saveMeeting(ctx, env, meeting, scope)
	case models.KindToDo:
		todo, err := loadReferenced(ref, env.GetToDo)
		if err != nil {
			return err
		}
		s.calendar.ApplyToToDo(todo, ev)
		return s.saveToDo(ctx, env, todo, scope)
	}
	return nil
}
