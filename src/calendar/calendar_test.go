// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	. "github.com/smartystreets/goconvey/convey"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

// newTestCalendar returns a Calendar in IST whose clock is fixed at now (UTC)
func newTestCalendar(now string) *Calendar {
	dt := dates.ParseDateTime(now)
	return New(ist, func() dates.DateTime { return dt })
}

func mustParseDate(value string) dates.Date {
	d, err := dates.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestStatusMapping(t *testing.T) {
	Convey("Testing status mapping tables", t, func() {
		Convey("Source statuses map to event statuses", func() {
			So(CallEventStatus(models.CallScheduled), ShouldEqual, models.EventOpen)
			So(CallEventStatus(models.CallCompleted), ShouldEqual, models.EventCompleted)
			So(MeetingEventStatus(models.MeetingScheduled), ShouldEqual, models.EventOpen)
			So(MeetingEventStatus(models.MeetingCompleted), ShouldEqual, models.EventCompleted)
			So(ToDoEventStatus(models.ToDoOpen), ShouldEqual, models.EventOpen)
			So(ToDoEventStatus(models.ToDoClosed), ShouldEqual, models.EventClosed)
			So(CallEventStatus(""), ShouldEqual, models.EventOpen)
		})
		Convey("Event statuses map back to source statuses", func() {
			So(CallStatusFromEvent(models.EventCompleted), ShouldEqual, models.CallCompleted)
			So(CallStatusFromEvent(models.EventCancelled), ShouldEqual, models.CallScheduled)
			So(MeetingStatusFromEvent(models.EventCompleted), ShouldEqual, models.MeetingCompleted)
			So(MeetingStatusFromEvent(models.EventOpen), ShouldEqual, models.MeetingScheduled)
			So(ToDoStatusFromEvent(models.EventClosed), ShouldEqual, models.ToDoClosed)
			So(ToDoStatusFromEvent(models.EventCompleted), ShouldEqual, models.ToDoOpen)
		})
	})
}

func TestEventBuilders(t *testing.T) {
	Convey("Testing event builders", t, func() {
		cal := newTestCalendar("2025-06-10 00:00:00")
		Convey("Subjects carry the local start time", func() {
			So(cal.Subject("Demo", dates.ParseDateTime("2025-06-10 04:30:00")), ShouldEqual, "Demo - 10:00 AM")
			So(cal.Subject("Demo", dates.ParseDateTime("2025-06-10 10:15:00")), ShouldEqual, "Demo - 03:45 PM")
			So(cal.Subject("Demo", dates.DateTime{}), ShouldEqual, "Demo")
		})
		Convey("Titles are extracted from subjects", func() {
			So(TitleFromSubject("Demo - 10:00 AM"), ShouldEqual, "Demo")
			So(TitleFromSubject("  Demo  "), ShouldEqual, "Demo")
			So(TitleFromSubject("Pre-sales call - 10:00 AM"), ShouldEqual, "Pre")
			So(TitleFromSubject(""), ShouldEqual, "")
		})
		Convey("Filling an event from a call", func() {
			call := &models.Call{
				ID:      "call1",
				Title:   "Demo",
				CallFor: "Lead",
				Purpose: "Pricing & terms",
				Agenda:  "<discount>",
				Start:   dates.ParseDateTime("2025-06-10 04:30:00"),
				End:     dates.ParseDateTime("2025-06-10 05:00:00"),
				Status:  models.CallScheduled,
			}
			var ev models.Event
			cal.FillFromCall(&ev, call)
			So(ev.Reference(), ShouldResemble, models.NewReference(models.KindCall, "call1"))
			So(ev.Subject, ShouldEqual, "Demo - 10:00 AM")
			So(ev.Category, ShouldEqual, models.CategoryCall)
			So(ev.EventType, ShouldEqual, models.EventTypePrivate)
			So(ev.AllDay, ShouldBeFalse)
			So(ev.Status, ShouldEqual, models.EventOpen)
			So(ev.Color, ShouldEqual, ColorScheduled)
			So(ev.StartsOn.Equal(call.Start), ShouldBeTrue)
			So(ev.EndsOn.Equal(call.End), ShouldBeTrue)
			So(ev.Description, ShouldEqual, "<b>Call For:</b> Lead<br><b>Purpose:</b> Pricing &amp; terms<br><b>Agenda:</b><br>&lt;discount&gt;")
			Convey("Completing the call updates status and color", func() {
				call.Status = models.CallCompleted
				cal.FillFromCall(&ev, call)
				So(ev.Status, ShouldEqual, models.EventCompleted)
				So(ev.Color, ShouldEqual, ColorCompleted)
			})
		})
		Convey("Filling an event from a meeting", func() {
			meeting := &models.Meeting{
				ID:           "meet1",
				Title:        "Review",
				Venue:        "Office",
				Location:     "Pune",
				Host:         "host@example.com",
				Participants: types.StringList{"a@example.com", " ", "b@example.com"},
				From:         dates.ParseDateTime("2025-06-10 08:30:00"),
				To:           dates.ParseDateTime("2025-06-10 09:30:00"),
				Status:       models.MeetingScheduled,
			}
			var ev models.Event
			cal.FillFromMeeting(&ev, meeting)
			So(ev.Subject, ShouldEqual, "Review - 02:00 PM")
			So(ev.Category, ShouldEqual, models.CategoryMeeting)
			So(ev.Participants, ShouldResemble, types.StringList{"host@example.com", "a@example.com", "b@example.com"})
			So(ev.Description, ShouldEqual, "<b>Meeting Venue:</b> Office<br><b>Location:</b> Pune<br><b>Host:</b> host@example.com")
		})
		Convey("Filling an event from a todo", func() {
			todo := &models.ToDo{
				ID:          "todo1",
				Description: "Send quote",
				Date:        mustParseDate("2025-06-10"),
				Priority:    "High",
				Status:      models.ToDoOpen,
			}
			var ev models.Event
			cal.FillFromToDo(&ev, todo)
			So(ev.Category, ShouldEqual, models.CategoryGeneric)
			So(ev.AllDay, ShouldBeTrue)
			So(ev.StartsOn.String(), ShouldEqual, "2025-06-09 18:30:00")
			So(ev.EndsOn.IsZero(), ShouldBeTrue)
			So(ev.Priority, ShouldEqual, "High")
			Convey("Applying the event back restores the local date", func() {
				var back models.ToDo
				cal.ApplyToToDo(&back, &ev)
				So(back.Date.String(), ShouldEqual, "2025-06-10")
				So(back.Description, ShouldEqual, "Send quote")
				So(back.Priority, ShouldEqual, "High")
				So(back.Status, ShouldEqual, models.ToDoOpen)
			})
		})
		Convey("Applying an event to a call and a meeting", func() {
			ev := &models.Event{
				Subject:  "Renamed - 11:00 AM",
				StartsOn: dates.ParseDateTime("2025-06-10 05:30:00"),
				EndsOn:   dates.ParseDateTime("2025-06-10 06:00:00"),
				Status:   models.EventCompleted,
			}
			call := &models.Call{Title: "Old"}
			cal.ApplyToCall(call, ev)
			So(call.Title, ShouldEqual, "Renamed")
			So(call.Start.Equal(ev.StartsOn), ShouldBeTrue)
			So(call.End.Equal(ev.EndsOn), ShouldBeTrue)
			So(call.Status, ShouldEqual, models.CallCompleted)
			meeting := &models.Meeting{Title: "Old"}
			ev.Subject = ""
			ev.Status = models.EventOpen
			cal.ApplyToMeeting(meeting, ev)
			So(meeting.Title, ShouldEqual, "Old")
			So(meeting.From.Equal(ev.StartsOn), ShouldBeTrue)
			So(meeting.Status, ShouldEqual, models.MeetingScheduled)
		})
	})
}

func TestScope(t *testing.T) {
	Convey("Testing sync scopes", t, func() {
		ref := models.NewReference(models.KindCall, "call1")
		scope := NewScope(false)
		So(scope.IsSuppressed(Forward, ref), ShouldBeFalse)
		release := scope.Suppress(Forward, ref)
		So(scope.IsSuppressed(Forward, ref), ShouldBeTrue)
		So(scope.IsSuppressed(Reverse, ref), ShouldBeFalse)
		So(scope.IsSuppressed(Forward, models.NewReference(models.KindCall, "call2")), ShouldBeFalse)
		release2 := scope.Suppress(Forward, ref)
		release()
		So(scope.IsSuppressed(Forward, ref), ShouldBeTrue)
		release2()
		So(scope.IsSuppressed(Forward, ref), ShouldBeFalse)
		So(scope.AllowsPast(), ShouldBeFalse)
		So(NewScope(true).AllowsPast(), ShouldBeTrue)
		var nilScope *Scope
		So(nilScope.IsSuppressed(Reverse, ref), ShouldBeFalse)
		So(nilScope.AllowsPast(), ShouldBeFalse)
		So(Forward.String(), ShouldEqual, "forward")
	})
}

func validate(store *models.MemStore, cal *Calendar, ev *models.Event, scope *Scope) error {
	return store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
		return cal.ValidateEvent(env, ev, scope)
	})
}

func shouldBeUserError(actual interface{}, expected ...interface{}) string {
	err, _ := actual.(error)
	uErr, ok := exceptions.AsUserError(err)
	if !ok {
		return fmt.Sprintf("Expected a UserError, got: %v", actual)
	}
	return ShouldEqual(uErr.Message, expected[0])
}

func TestValidateEvent(t *testing.T) {
	Convey("Testing event validation", t, func() {
		store := models.NewMemStore()
		cal := newTestCalendar("2025-06-10 12:00:00")
		Convey("Unlinked events are always valid", func() {
			So(validate(store, cal, &models.Event{Subject: "Free"}, nil), ShouldBeNil)
		})
		Convey("Call events use their own status", func() {
			ev := &models.Event{
				ReferenceType: models.KindCall,
				ReferenceID:   "call1",
				Status:        models.EventOpen,
			}
			So(validate(store, cal, ev, nil), shouldBeUserError, "Call start time is required.")
			ev.StartsOn = dates.ParseDateTime("2025-06-10 11:00:00")
			So(validate(store, cal, ev, nil), shouldBeUserError, "Scheduled Call Time cannot be in the past.")
			So(validate(store, cal, ev, NewScope(true)), ShouldBeNil)
			ev.StartsOn = dates.ParseDateTime("2025-06-10 13:00:00")
			So(validate(store, cal, ev, nil), ShouldBeNil)
			ev.EndsOn = dates.ParseDateTime("2025-06-10 12:30:00")
			So(validate(store, cal, ev, nil), shouldBeUserError, "Call start time cannot be after end time.")
			ev.Status = models.EventCompleted
			ev.StartsOn = dates.ParseDateTime("2025-06-10 10:00:00")
			ev.EndsOn = dates.DateTime{}
			So(validate(store, cal, ev, nil), shouldBeUserError, "Completed Call must have an end time.")
			ev.EndsOn = dates.ParseDateTime("2025-06-10 12:30:00")
			So(validate(store, cal, ev, NewScope(true)), shouldBeUserError, "Completed Call End Time cannot be in the future.")
			ev.EndsOn = dates.ParseDateTime("2025-06-10 11:00:00")
			So(validate(store, cal, ev, nil), ShouldBeNil)
		})
		Convey("Meeting events use the status of the meeting", func() {
			meeting := &models.Meeting{Title: "Review", Status: models.MeetingScheduled}
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				return env.CreateMeeting(meeting)
			}), ShouldBeNil)
			ev := &models.Event{
				ReferenceType: models.KindMeeting,
				ReferenceID:   meeting.ID,
				Status:        models.EventCompleted,
			}
			So(validate(store, cal, ev, nil), shouldBeUserError, "Meeting start time is required.")
			ev.StartsOn = dates.ParseDateTime("2025-06-09 12:00:00")
			So(validate(store, cal, ev, nil), shouldBeUserError, "Scheduled Meeting cannot be in the past.")
			So(validate(store, cal, ev, NewScope(true)), ShouldBeNil)
			meeting.Status = models.MeetingCompleted
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				return env.UpdateMeeting(meeting)
			}), ShouldBeNil)
			So(validate(store, cal, ev, nil), ShouldBeNil)
			ev.StartsOn = dates.ParseDateTime("2025-06-11 12:00:00")
			So(validate(store, cal, ev, nil), shouldBeUserError, "Completed Meeting cannot be in the future.")
		})
		Convey("Events of missing records are rejected", func() {
			ev := &models.Event{
				ReferenceType: models.KindMeeting,
				ReferenceID:   "missing",
				StartsOn:      dates.ParseDateTime("2025-06-11 12:00:00"),
			}
			So(validate(store, cal, ev, nil), shouldBeUserError, "Meeting missing not found")
		})
		Convey("ToDo events compare local dates", func() {
			todo := &models.ToDo{Description: "Send quote", Date: mustParseDate("2025-06-10"), Status: models.ToDoOpen}
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				return env.CreateToDo(todo)
			}), ShouldBeNil)
			ev := &models.Event{
				ReferenceType: models.KindToDo,
				ReferenceID:   todo.ID,
				Status:        models.EventOpen,
				AllDay:        true,
			}
			So(validate(store, cal, ev, nil), shouldBeUserError, "ToDo due date is required.")
			Convey("An open todo due yesterday is rejected", func() {
				ev.StartsOn = cal.StartOfDay(mustParseDate("2025-06-09"))
				So(validate(store, cal, ev, nil), shouldBeUserError, "Open ToDo cannot have a past due date.")
				So(validate(store, cal, ev, NewScope(true)), ShouldBeNil)
			})
			Convey("An open todo due today is accepted", func() {
				ev.StartsOn = cal.StartOfDay(mustParseDate("2025-06-10"))
				So(validate(store, cal, ev, nil), ShouldBeNil)
			})
			Convey("A closed todo cannot be due in the future", func() {
				todo.Status = models.ToDoClosed
				So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
					return env.UpdateToDo(todo)
				}), ShouldBeNil)
				ev.StartsOn = cal.StartOfDay(mustParseDate("2025-06-11"))
				So(validate(store, cal, ev, nil), shouldBeUserError, "Completed ToDo cannot be in the future.")
				ev.StartsOn = cal.StartOfDay(mustParseDate("2025-06-10"))
				So(validate(store, cal, ev, nil), ShouldBeNil)
			})
		})
	})
}
