// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

/*
Package calendar maps Calls, Meetings and ToDos onto calendar Events and
back.

Each source record is mirrored by at most one Event, linked through the
Event's reference fields. The functions of this package only transform
records in memory, the orchestration of the writes is done by the crm
package.
*/
package calendar

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/logging"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("calendar")
}

// Event colors
const (
	ColorScheduled = "#FBC02D"
	ColorCompleted = "#0DB260"
	ColorDefault   = "#FFFFFF"
	// ColorCallCompleted is the color of completed calls in the call feed
	ColorCallCompleted = "#0F8A4D"
)

// A Calendar converts records into calendar events and back, displaying
// times in its Location.
type Calendar struct {
	Location *time.Location
	now      func() dates.DateTime
}

// New returns a Calendar displaying times in loc. now is the clock used
// to check that records are not scheduled in the past. If nil, dates.Now
// is used.
func New(loc *time.Location, now func() dates.DateTime) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = dates.Now
	}
	return &Calendar{
		Location: loc,
		now:      now,
	}
}

// Now returns the current time of this Calendar's clock
func (c *Calendar) Now() dates.DateTime {
	return c.now()
}

// Today returns the current date in this Calendar's location
func (c *Calendar) Today() dates.Date {
	return c.now().In(c.Location).ToDate()
}

// LocalDate returns the date of dt in this Calendar's location
func (c *Calendar) LocalDate(dt dates.DateTime) dates.Date {
	return dt.In(c.Location).ToDate()
}

// StartOfDay returns the instant of midnight of the given date in this
// Calendar's location.
func (c *Calendar) StartOfDay(d dates.Date) dates.DateTime {
	if d.IsZero() {
		return dates.DateTime{}
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.Location)
	return dates.DateTime{Time: local.UTC()}
}

// Subject returns the event subject of a record with the given title
// starting at start, i.e. the title followed by the local time of day.
func (c *Calendar) Subject(title string, start dates.DateTime) string {
	if start.IsZero() {
		return title
	}
	return fmt.Sprintf("%s - %s", title, start.In(c.Location).TimeOfDay())
}

// TitleFromSubject returns the title part of an event subject
func TitleFromSubject(subject string) string {
	if i := strings.Index(subject, "-"); i >= 0 {
		subject = subject[:i]
	}
	return strings.TrimSpace(subject)
}

// eventColor returns the color of an event with the given status
func eventColor(status models.EventStatus) string {
	switch status {
	case models.EventOpen:
		return ColorScheduled
	case models.EventCompleted, models.EventClosed:
		return ColorCompleted
	}
	return ColorScheduled
}

// CallDescription returns the HTML description of the event of a call
func CallDescription(call *models.Call) string {
	return fmt.Sprintf("<b>Call For:</b> %s<br><b>Purpose:</b> %s<br><b>Agenda:</b><br>%s",
		html.EscapeString(call.CallFor), html.EscapeString(call.Purpose), html.EscapeString(call.Agenda))
}

// MeetingDescription returns the HTML description of the event of a meeting
func MeetingDescription(meeting *models.Meeting) string {
	return fmt.Sprintf("<b>Meeting Venue:</b> %s<br><b>Location:</b> %s<br><b>Host:</b> %s",
		html.EscapeString(meeting.Venue), html.EscapeString(meeting.Location), html.EscapeString(meeting.Host))
}

// MeetingParticipants returns the event participants of a meeting, that
// is its host followed by its participants.
func MeetingParticipants(meeting *models.Meeting) types.StringList {
	res := types.StringList{meeting.Host}
	res = append(res, meeting.Participants...)
	return res.Clean()
}

// FillFromCall updates ev so that it mirrors the given call.
func (c *Calendar) FillFromCall(ev *models.Event, call *models.Call) {
	ev.SetReference(call.Reference())
	ev.Subject = c.Subject(call.Title, call.Start)
	ev.Category = models.CategoryCall
	ev.EventType = models.EventTypePrivate
	ev.StartsOn = call.Start
	ev.EndsOn = call.End
	ev.AllDay = false
	ev.Status = CallEventStatus(call.Status)
	ev.Color = eventColor(ev.Status)
	ev.Description = CallDescription(call)
}

// FillFromMeeting updates ev so that it mirrors the given meeting.
func (c *Calendar) FillFromMeeting(ev *models.Event, meeting *models.Meeting) {
	ev.SetReference(meeting.Reference())
	ev.Subject = c.Subject(meeting.Title, meeting.From)
	ev.Category = models.CategoryMeeting
	ev.EventType = models.EventTypePrivate
	ev.StartsOn = meeting.From
	ev.EndsOn = meeting.To
	ev.AllDay = false
	ev.Status = MeetingEventStatus(meeting.Status)
	ev.Color = eventColor(ev.Status)
	ev.Description = MeetingDescription(meeting)
	ev.Participants = MeetingParticipants(meeting)
}

// FillFromToDo updates ev so that it mirrors the given todo. The event
// spans the whole due date.
func (c *Calendar) FillFromToDo(ev *models.Event, todo *models.ToDo) {
	ev.SetReference(todo.Reference())
	ev.Subject = todo.Description
	ev.Category = models.CategoryGeneric
	ev.EventType = models.EventTypePrivate
	ev.StartsOn = c.StartOfDay(todo.Date)
	ev.EndsOn = dates.DateTime{}
	ev.AllDay = true
	ev.Status = ToDoEventStatus(todo.Status)
	ev.Color = eventColor(ev.Status)
	ev.Priority = todo.Priority
	ev.Description = html.EscapeString(todo.Description)
}

// ApplyToCall updates call from the data of its event
func (c *Calendar) ApplyToCall(call *models.Call, ev *models.Event) {
	if title := TitleFromSubject(ev.Subject); title != "" {
		call.Title = title
	}
	call.Start = ev.StartsOn
	call.End = ev.EndsOn
	call.Status = CallStatusFromEvent(ev.Status)
}

// ApplyToMeeting updates meeting from the data of its event
func (c *Calendar) ApplyToMeeting(meeting *models.Meeting, ev *models.Event) {
	if title := TitleFromSubject(ev.Subject); title != "" {
		meeting.Title = title
	}
	meeting.From = ev.StartsOn
	meeting.To = ev.EndsOn
	meeting.Status = MeetingStatusFromEvent(ev.Status)
}

// ApplyToToDo updates todo from the data of its event
func (c *Calendar) ApplyToToDo(todo *models.ToDo, ev *models.Event) {
	if title := TitleFromSubject(ev.Subject); title != "" {
		todo.Description = title
	}
	todo.Date = c.LocalDate(ev.StartsOn)
	todo.Priority = ev.Priority
	todo.Status = ToDoStatusFromEvent(ev.Status)
}
