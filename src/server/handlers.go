// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"net/http"

	"github.com/hexya-erp/crm/src/models"
)

func (s *Server) saveCall(c *Context) {
	var call models.Call
	if !c.BindBody(&call) {
		return
	}
	if err := s.service.SaveCall(c.Request.Context(), &call, c.SaveOptions()); err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (s *Server) getCall(c *Context) {
	call, err := s.service.GetCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (s *Server) saveMeeting(c *Context) {
	var meeting models.Meeting
	if !c.BindBody(&meeting) {
		return
	}
	if err := s.service.SaveMeeting(c.Request.Context(), &meeting, c.SaveOptions()); err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (s *Server) getMeeting(c *Context) {
	meeting, err := s.service.GetMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (s *Server) saveToDo(c *Context) {
	var todo models.ToDo
	if !c.BindBody(&todo) {
		return
	}
	if err := s.service.SaveToDo(c.Request.Context(), &todo, c.SaveOptions()); err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) getToDo(c *Context) {
	todo, err := s.service.GetToDo(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) saveEvent(c *Context) {
	var ev models.Event
	if !c.BindBody(&ev) {
		return
	}
	if err := s.service.SaveEvent(c.Request.Context(), &ev, c.SaveOptions()); err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) getEvent(c *Context) {
	ev, err := s.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) saveLead(c *Context) {
	var lead models.Lead
	if !c.BindBody(&lead) {
		return
	}
	if err := s.service.SaveLead(c.Request.Context(), &lead, c.SaveOptions()); err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// leadResponse is a lead with its histories
type leadResponse struct {
	*models.Lead
	Followups []*models.LeadFollowup `json:"followup_details"`
	Timeline  []*models.LeadTimeline `json:"pipeline_timeline"`
}

func (s *Server) getLead(c *Context) {
	lead, followups, timelines, err := s.service.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, leadResponse{
		Lead:      lead,
		Followups: followups,
		Timeline:  timelines,
	})
}

// listReminders returns the reminder entries of the record given by the
// reference_type and reference_id query parameters.
func (s *Server) listReminders(c *Context) {
	kind, err := models.ParseKind(c.Query("reference_type"))
	if err != nil {
		c.RespondError(err)
		return
	}
	ref := models.NewReference(kind, c.Query("reference_id"))
	if ref.ID == "" {
		c.abortWithError(http.StatusBadRequest, ExceptionBadRequest, "missing reference_id parameter", "")
		return
	}
	entries, err := s.service.RemindersFor(c.Request.Context(), ref)
	if err != nil {
		c.RespondError(err)
		return
	}
	if entries == nil {
		entries = []*models.ReminderQueue{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) forceSend(c *Context) {
	entry, err := s.service.ForceSend(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) callFeed(c *Context) {
	start, end, ok := c.Range()
	if !ok {
		return
	}
	entries, err := s.service.CallFeed(c.Request.Context(), start, end)
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) meetingFeed(c *Context) {
	start, end, ok := c.Range()
	if !ok {
		return
	}
	entries, err := s.service.MeetingFeed(c.Request.Context(), start, end)
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) eventFeed(c *Context) {
	start, end, ok := c.Range()
	if !ok {
		return
	}
	entries, err := s.service.EventFeed(c.Request.Context(), start, end)
	if err != nil {
		c.RespondError(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
