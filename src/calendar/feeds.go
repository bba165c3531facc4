// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import (
	"fmt"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/pkg/errors"
)

// isoLayout is the layout of times sent to calendar views
const isoLayout = "2006-01-02T15:04:05-07:00"

// A FeedEntry is an item of a call or meeting calendar view
type FeedEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	AllDay bool   `json:"allDay"`
	Color  string `json:"color"`
}

// An EventFeedEntry is an item of the events calendar view
type EventFeedEntry struct {
	Name      string               `json:"name"`
	Subject   string               `json:"subject"`
	Category  models.EventCategory `json:"event_category"`
	EventType string               `json:"event_type"`
	StartsOn  string               `json:"starts_on"`
	EndsOn    string               `json:"ends_on"`
	Color     string               `json:"color"`
}

var (
	callFeedColors = map[models.CallStatus]string{
		models.CallScheduled: ColorScheduled,
		models.CallCompleted: ColorCallCompleted,
	}
	meetingFeedColors = map[models.MeetingStatus]string{
		models.MeetingScheduled: ColorScheduled,
		models.MeetingCompleted: ColorCompleted,
	}
)

// iso returns dt formatted with the offset of the calendar location
func (c *Calendar) iso(dt dates.DateTime) string {
	if dt.IsZero() {
		return ""
	}
	return dt.In(c.Location).Format(isoLayout)
}

// feedEntry returns the FeedEntry of a record with the given values.
// Calls and meetings are timed: only records without start are all day.
func (c *Calendar) feedEntry(id, title string, start, end dates.DateTime, color string) FeedEntry {
	if title == "" {
		title = id
	}
	switch {
	case !start.IsZero() && !end.IsZero():
		title = fmt.Sprintf("%s (%s - %s)", title, start.In(c.Location).TimeOfDay(), end.In(c.Location).TimeOfDay())
	case !start.IsZero():
		title = fmt.Sprintf("%s (%s)", title, start.In(c.Location).TimeOfDay())
	}
	return FeedEntry{
		ID:     id,
		Title:  title,
		Start:  c.iso(start),
		End:    c.iso(end),
		AllDay: start.IsZero(),
		Color:  color,
	}
}

// CallFeed returns the calendar view entries of the calls overlapping
// the [start, end] range.
func (c *Calendar) CallFeed(env models.Environment, start, end dates.DateTime) ([]FeedEntry, error) {
	calls, err := env.CallsInRange(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list calls")
	}
	res := make([]FeedEntry, 0, len(calls))
	for _, call := range calls {
		color, ok := callFeedColors[call.Status]
		if !ok {
			color = ColorDefault
		}
		res = append(res, c.feedEntry(call.ID, call.Title, call.Start, call.End, color))
	}
	return res, nil
}

// MeetingFeed returns the calendar view entries of the meetings
// overlapping the [start, end] range.
func (c *Calendar) MeetingFeed(env models.Environment, start, end dates.DateTime) ([]FeedEntry, error) {
	meetings, err := env.MeetingsInRange(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list meetings")
	}
	res := make([]FeedEntry, 0, len(meetings))
	for _, meeting := range meetings {
		color, ok := meetingFeedColors[meeting.Status]
		if !ok {
			color = ColorDefault
		}
		res = append(res, c.feedEntry(meeting.ID, meeting.Title, meeting.From, meeting.To, color))
	}
	return res, nil
}

// EventFeed returns the entries of the events overlapping the [start, end]
// range. Times are given in the calendar location. Events without end
// finish at their start, and the end of events spanning several days is
// moved one day later since calendar views expect an exclusive end.
func (c *Calendar) EventFeed(env models.Environment, start, end dates.DateTime) ([]EventFeedEntry, error) {
	events, err := env.EventsInRange(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list events")
	}
	res := make([]EventFeedEntry, 0, len(events))
	for _, ev := range events {
		endsOn := ev.EndsOn
		if endsOn.IsZero() {
			endsOn = ev.StartsOn
		}
		if c.LocalDate(endsOn).Greater(c.LocalDate(ev.StartsOn)) {
			endsOn = endsOn.AddDate(0, 0, 1)
		}
		res = append(res, EventFeedEntry{
			Name:      ev.ID,
			Subject:   ev.Subject,
			Category:  ev.Category,
			EventType: ev.EventType,
			StartsOn:  ev.StartsOn.In(c.Location).String(),
			EndsOn:    endsOn.In(c.Location).String(),
			Color:     ev.Color,
		})
	}
	return res, nil
}
