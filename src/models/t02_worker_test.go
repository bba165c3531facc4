// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWorkerLoop(t *testing.T) {
	Convey("Testing the worker loop", t, func() {
		var runs int32
		var cancelled int32
		RegisterWorker(NewWorkerFunction(func(ctx context.Context) {
			atomic.AddInt32(&runs, 1)
		}, 10*time.Millisecond))
		RegisterWorker(NewWorkerFunction(func(ctx context.Context) {
			<-ctx.Done()
			atomic.StoreInt32(&cancelled, 1)
		}, 10*time.Millisecond))
		RunWorkerLoop()
		So(RunWorkerLoop, ShouldPanic)
		time.Sleep(100 * time.Millisecond)
		StopWorkerLoop()
		So(atomic.LoadInt32(&runs), ShouldBeGreaterThan, 0)
		So(atomic.LoadInt32(&cancelled), ShouldEqual, 1)
		So(StopWorkerLoop, ShouldPanic)
	})
}

func TestAdapters(t *testing.T) {
	Convey("Testing database adapters", t, func() {
		params := ConnectionParams{
			Host:     "db.local",
			User:     "crm",
			Password: "secret",
			DBName:   "crm",
			SSLMode:  "disable",
		}
		Convey("Postgres", func() {
			adapter := adapters["postgres"]
			So(adapter.connectionString(params), ShouldEqual, "dbname=crm sslmode=disable user=crm password=secret host=db.local")
			So(adapter.createIndexSQL(EventTable, eventTableDef.indexes[0]), ShouldEqual,
				`CREATE UNIQUE INDEX crm_event_reference_uniq ON "crm_event" ("reference_type", "reference_id") WHERE reference_id <> ''`)
		})
		Convey("MySQL", func() {
			adapter := adapters["mysql"]
			dsn := adapter.connectionString(params)
			So(dsn, ShouldStartWith, "crm:secret@tcp(db.local:3306)/crm?")
			So(dsn, ShouldContainSubstring, "parseTime=true")
			So(dsn, ShouldContainSubstring, "clientFoundRows=true")
			So(adapter.createIndexSQL(EventTable, eventTableDef.indexes[0]), ShouldEqual,
				"CREATE INDEX crm_event_reference_uniq ON `crm_event` (`reference_type`, `reference_id`)")
			So(adapter.createIndexSQL(ReminderQueueTable, reminderQueueTableDef.indexes[0]), ShouldEqual,
				"CREATE INDEX crm_reminder_queue_due_idx ON `crm_reminder_queue` (`status`, `trigger_at`)")
		})
	})
}
