// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"testing"
	"time"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderer(t *testing.T) {
	Convey("Testing reminder rendering", t, func() {
		kolkata := time.FixedZone("IST", 5*3600+1800)
		renderer := Renderer{BaseURL: "https://crm.example.com/", Location: kolkata}
		Convey("Meetings use their own labels and default title", func() {
			meeting := &models.Meeting{
				ID:     "M-1",
				From:   dates.ParseDateTime("2025-06-10 10:00:00"),
				Status: models.MeetingScheduled,
				Venue:  "HQ <3rd floor>",
				Host:   "boss@example.com",
			}
			msg, err := renderer.RenderMeeting(meeting, []string{"a@example.com"})
			So(err, ShouldBeNil)
			So(msg.Subject, ShouldEqual, "Reminder: Meeting at 2025-06-10 15:30:00")
			So(msg.HTML, ShouldContainSubstring, "Scheduled meet")
			So(msg.HTML, ShouldContainSubstring, "03:30 PM")
			So(msg.HTML, ShouldContainSubstring, "10-06-2025")
			So(msg.HTML, ShouldContainSubstring, "HQ &lt;3rd floor&gt;")
			So(msg.HTML, ShouldContainSubstring, "https://crm.example.com/app/meeting/M-1")
		})
		Convey("Calls without title get a default one and no link without base URL", func() {
			call := &models.Call{ID: "C-1", Start: dates.ParseDateTime("2025-06-10 10:00:00"), Status: models.CallScheduled}
			msg, err := Renderer{}.RenderCall(call, []string{"a@example.com"})
			So(err, ShouldBeNil)
			So(msg.HTML, ShouldContainSubstring, "Scheduled Call")
			So(msg.HTML, ShouldNotContainSubstring, "/app/calls/")
			So(msg.Subject, ShouldEqual, "Reminder: Call at 2025-06-10 10:00:00")
		})
	})
}
