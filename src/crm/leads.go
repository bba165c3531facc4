// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package crm

import (
	"context"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/tools/nbutils"
	"github.com/pkg/errors"
)

// Lead score weights
const (
	scoreEmail   = 10
	scorePhone   = 10
	scoreCompany = 5
	scoreGSTIN   = 5
	scoreMax     = scoreEmail + scorePhone + scoreCompany + scoreGSTIN
)

// LeadScore returns the completeness score of the given lead, as a
// percentage.
func LeadScore(lead *models.Lead) int {
	var score int
	if lead.Email != "" {
		score += scoreEmail
	}
	if lead.Phone != "" {
		score += scorePhone
	}
	if lead.CompanyName != "" {
		score += scoreCompany
	}
	if lead.GSTIN != "" {
		score += scoreGSTIN
	}
	return nbutils.Percentage(score, scoreMax)
}

// SaveLead creates or updates the given lead. Its score is computed and
// a row is appended to its pipeline timeline when its workflow state
// changes.
func (s *Service) SaveLead(ctx context.Context, lead *models.Lead, opts SaveOptions) error {
	rec := *lead
	rec.Score = LeadScore(&rec)
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var old *models.Lead
		if rec.ID != "" {
			var err error
			old, err = env.GetLead(rec.ID)
			if err != nil && !models.IsNotFound(err) {
				return errors.Wrap(err, "unable to load lead")
			}
		}
		if old == nil {
			return errors.Wrap(env.CreateLead(&rec), "unable to create lead")
		}
		if err := env.UpdateLead(&rec); err != nil {
			return errors.Wrap(err, "unable to update lead")
		}
		if old.WorkflowState == "" || old.WorkflowState == rec.WorkflowState {
			return nil
		}
		log.Debug("Lead workflow state changed", "lead", rec.ID, "from", old.WorkflowState, "to", rec.WorkflowState)
		return errors.Wrap(env.CreateLeadTimeline(&models.LeadTimeline{
			Lead:        rec.ID,
			StateFrom:   old.WorkflowState,
			StateTo:     rec.WorkflowState,
			DateAndTime: s.calendar.Now(),
			ChangeBy:    opts.ChangedBy,
		}), "unable to append lead timeline")
	})
	if err != nil {
		return err
	}
	*lead = rec
	return nil
}

// GetLead returns the lead with the given id with its follow-up and
// timeline histories.
func (s *Service) GetLead(ctx context.Context, id string) (*models.Lead, []*models.LeadFollowup, []*models.LeadTimeline, error) {
	var (
		lead      *models.Lead
		followups []*models.LeadFollowup
		timelines []*models.LeadTimeline
	)
	err := s.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		if lead, err = env.GetLead(id); err != nil {
			return err
		}
		if followups, err = env.LeadFollowups(id); err != nil {
			return err
		}
		timelines, err = env.LeadTimelines(id)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return lead, followups, timelines, nil
}
