// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import (
	"context"
	"testing"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeeds(t *testing.T) {
	Convey("Testing calendar feeds", t, func() {
		store := models.NewMemStore()
		cal := newTestCalendar("2025-06-01 00:00:00")
		So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
			for _, call := range []*models.Call{
				{ID: "c1", Title: "Demo", Status: models.CallScheduled,
					Start: dates.ParseDateTime("2025-06-10 04:30:00"), End: dates.ParseDateTime("2025-06-10 05:00:00")},
				{ID: "c2", Status: models.CallCompleted, Start: dates.ParseDateTime("2025-06-11 04:30:00")},
				{ID: "c3", Title: "Late", Status: models.CallScheduled,
					Start: dates.ParseDateTime("2025-06-12 18:00:00"), End: dates.ParseDateTime("2025-06-12 19:00:00")},
				{ID: "c4", Title: "Someday", Status: models.CallScheduled},
			} {
				if err := env.CreateCall(call); err != nil {
					return err
				}
			}
			if err := env.CreateMeeting(&models.Meeting{ID: "m1", Title: "Review", Status: models.MeetingCompleted,
				From: dates.ParseDateTime("2025-06-10 08:30:00"), To: dates.ParseDateTime("2025-06-10 09:30:00")}); err != nil {
				return err
			}
			for _, ev := range []*models.Event{
				{ID: "e1", Subject: "Single", Category: models.CategoryGeneric, Color: ColorScheduled,
					StartsOn: dates.ParseDateTime("2025-06-10 04:30:00")},
				{ID: "e2", Subject: "Trip", Category: models.CategoryGeneric, Color: ColorCompleted,
					StartsOn: dates.ParseDateTime("2025-06-10 04:30:00"), EndsOn: dates.ParseDateTime("2025-06-11 04:30:00")},
			} {
				if err := env.CreateEvent(ev); err != nil {
					return err
				}
			}
			return nil
		}), ShouldBeNil)
		start := dates.ParseDateTime("2025-06-01 00:00:00")
		end := dates.ParseDateTime("2025-06-30 00:00:00")
		Convey("Call feed", func() {
			var entries []FeedEntry
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				var err error
				entries, err = cal.CallFeed(env, start, end)
				return err
			}), ShouldBeNil)
			So(entries, ShouldHaveLength, 4)
			So(entries[0], ShouldResemble, FeedEntry{
				ID:     "c4",
				Title:  "Someday",
				AllDay: true,
				Color:  ColorScheduled,
			})
			So(entries[1], ShouldResemble, FeedEntry{
				ID:     "c1",
				Title:  "Demo (10:00 AM - 10:30 AM)",
				Start:  "2025-06-10T10:00:00+05:30",
				End:    "2025-06-10T10:30:00+05:30",
				AllDay: false,
				Color:  ColorScheduled,
			})
			So(entries[2].Title, ShouldEqual, "c2 (10:00 AM)")
			So(entries[2].AllDay, ShouldBeFalse)
			So(entries[2].Color, ShouldEqual, ColorCallCompleted)
			So(entries[3].Title, ShouldEqual, "Late (11:30 PM - 12:30 AM)")
			So(entries[3].AllDay, ShouldBeFalse)
		})
		Convey("Meeting feed", func() {
			var entries []FeedEntry
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				var err error
				entries, err = cal.MeetingFeed(env, start, end)
				return err
			}), ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Title, ShouldEqual, "Review (02:00 PM - 03:00 PM)")
			So(entries[0].AllDay, ShouldBeFalse)
			So(entries[0].Start, ShouldEqual, "2025-06-10T14:00:00+05:30")
			So(entries[0].Color, ShouldEqual, ColorCompleted)
		})
		Convey("Event feed", func() {
			var entries []EventFeedEntry
			So(store.ExecuteInNewEnvironment(context.Background(), func(env models.Environment) error {
				var err error
				entries, err = cal.EventFeed(env, start, end)
				return err
			}), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			byName := map[string]EventFeedEntry{}
			for _, e := range entries {
				byName[e.Name] = e
			}
			So(byName["e1"].StartsOn, ShouldEqual, "2025-06-10 10:00:00")
			So(byName["e1"].EndsOn, ShouldEqual, "2025-06-10 10:00:00")
			So(byName["e2"].EndsOn, ShouldEqual, "2025-06-12 10:00:00")
			So(byName["e2"].Color, ShouldEqual, ColorCompleted)
		})
	})
}
