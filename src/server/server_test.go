// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/crm/src/calendar"
	"github.com/hexya-erp/crm/src/crm"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/reminders"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func performRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(UserHeader, "admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newTestServer() *Server {
	gin.SetMode(gin.ReleaseMode)
	now := dates.ParseDateTime("2025-06-10 09:30:00")
	clock := func() dates.DateTime { return now }
	store := models.NewMemStore()
	reg := prometheus.NewRegistry()
	observer, err := reminders.NewPrometheusObserver("crm_reminders", reg)
	if err != nil {
		panic(err)
	}
	engine := reminders.NewEngine(store,
		reminders.StaticSettings{Recipients: []string{"sales@example.com"}},
		reminders.LogNotifier{},
		reminders.WithClock(clock),
		reminders.WithObserver(observer))
	cal := calendar.New(time.FixedZone("IST", 5*3600+30*60), clock)
	return New(crm.NewService(store, engine, cal), reg)
}

func decode(w *httptest.ResponseRecorder, obj interface{}) {
	So(json.Unmarshal(w.Body.Bytes(), obj), ShouldBeNil)
}

const callBody = `{
	"title": "Demo",
	"call_start_time": "2025-06-10 10:00:00",
	"call_end_time": "2025-06-10 10:30:00",
	"outgoing_call_status": "Scheduled",
	"enable_reminder": true
}`

func TestServer(t *testing.T) {
	Convey("Testing the HTTP API", t, func() {
		srv := newTestServer()
		Convey("Saving and reading a call", func() {
			w := performRequest(srv, http.MethodPost, "/api/calls", callBody)
			So(w.Code, ShouldEqual, http.StatusOK)
			var call models.Call
			decode(w, &call)
			So(call.ID, ShouldNotBeBlank)
			So(call.Start.String(), ShouldEqual, "2025-06-10 10:00:00")

			w = performRequest(srv, http.MethodGet, "/api/calls/"+call.ID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var saved models.Call
			decode(w, &saved)
			So(saved.Title, ShouldEqual, "Demo")

			Convey("Its reminder can be listed and force sent", func() {
				w := performRequest(srv, http.MethodGet, fmt.Sprintf("/api/reminders?reference_type=Calls&reference_id=%s", call.ID), "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []models.ReminderQueue
				decode(w, &entries)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Status, ShouldEqual, models.ReminderPending)
				So(entries[0].TriggerAt.String(), ShouldEqual, "2025-06-10 09:45:00")

				w = performRequest(srv, http.MethodPost, "/api/reminders/"+entries[0].ID+"/force_send", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry models.ReminderQueue
				decode(w, &entry)
				So(entry.Status, ShouldEqual, models.ReminderSent)

				w = performRequest(srv, http.MethodPost, "/api/reminders/"+entries[0].ID+"/force_send", "")
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var resp ResponseError
				decode(w, &resp)
				So(resp.Error.Message, ShouldEqual, "Reminder already sent")
				So(resp.Error.ExceptionType, ShouldEqual, ExceptionUser)

				w = performRequest(srv, http.MethodGet, "/metrics", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "crm_reminders_deliveries_total")
			})
			Convey("It appears in the calendar feeds", func() {
				w := performRequest(srv, http.MethodGet, "/api/calendar/calls?start=2025-06-01&end=2025-06-30", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []calendar.FeedEntry
				decode(w, &entries)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Title, ShouldEqual, "Demo (03:30 PM - 04:00 PM)")

				w = performRequest(srv, http.MethodGet, "/api/calendar/events?start=2025-06-01T00:00:00%2B05:30&end=2025-06-30T00:00:00%2B05:30", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var events []calendar.EventFeedEntry
				decode(w, &events)
				So(events, ShouldHaveLength, 1)
				So(events[0].Subject, ShouldEqual, "Demo - 03:30 PM")
			})
		})
		Convey("Validation errors are sent with status 422", func() {
			body := strings.Replace(callBody, "2025-06-10 10:00:00", "2025-06-10 09:00:00", 1)
			w := performRequest(srv, http.MethodPost, "/api/calls", body)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			var resp ResponseError
			decode(w, &resp)
			So(resp.Error.Message, ShouldEqual, "Scheduled Call Time cannot be in the past.")
			Convey("unless the call is dragged in a calendar", func() {
				w := performRequest(srv, http.MethodPost, "/api/calls?drag=1", body)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
		Convey("Invalid requests", func() {
			w := performRequest(srv, http.MethodPost, "/api/calls", "{not json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			w = performRequest(srv, http.MethodGet, "/api/calls/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			w = performRequest(srv, http.MethodGet, "/api/calendar/calls?start=2025-06-01", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			w = performRequest(srv, http.MethodGet, "/api/reminders?reference_type=Invoice&reference_id=1", "")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})
		Convey("Saving a lead returns its score", func() {
			w := performRequest(srv, http.MethodPost, "/api/leads", `{"lead_name": "Acme", "email_id": "a@example.com", "workflow_state": "New"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var lead models.Lead
			decode(w, &lead)
			So(lead.Score, ShouldEqual, 33)
			body := fmt.Sprintf(`{"id": %q, "lead_name": "Acme", "email_id": "a@example.com", "workflow_state": "Contacted"}`, lead.ID)
			So(performRequest(srv, http.MethodPost, "/api/leads", body).Code, ShouldEqual, http.StatusOK)
			w = performRequest(srv, http.MethodGet, "/api/leads/"+lead.ID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				ID       string                `json:"id"`
				Timeline []models.LeadTimeline `json:"pipeline_timeline"`
			}
			decode(w, &resp)
			So(resp.ID, ShouldEqual, lead.ID)
			So(resp.Timeline, ShouldHaveLength, 1)
			So(resp.Timeline[0].ChangeBy, ShouldEqual, "admin")
		})
	})
}
