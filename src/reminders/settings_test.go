// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfigSettings(t *testing.T) {
	Convey("Testing settings read from the configuration", t, func() {
		Reset(viper.Reset)
		Convey("Unset default lead minutes should be nil", func() {
			So(ConfigSettings{}.ReminderSettings().DefaultLeadMinutes, ShouldBeNil)
		})
		Convey("Zero default lead minutes should be kept", func() {
			viper.Set("Reminders.DefaultLeadMinutes", 0)
			def := ConfigSettings{}.ReminderSettings().DefaultLeadMinutes
			So(def, ShouldNotBeNil)
			So(*def, ShouldEqual, 0)
		})
		Convey("Recipients should be deduplicated and validated", func() {
			viper.Set("Reminders.Recipients", []string{"a@example.com", "A@example.com ", "not an address", "b@example.com"})
			So(ConfigSettings{}.ReminderSettings().Recipients, ShouldResemble, []string{"a@example.com", "b@example.com"})
		})
	})
}

func TestPrometheusObserver(t *testing.T) {
	Convey("Testing prometheus metrics", t, func() {
		reg := prometheus.NewRegistry()
		obs, err := NewPrometheusObserver("", reg)
		So(err, ShouldBeNil)
		obs.RecordEnqueue("Calls")
		obs.RecordDelivery("Calls", time.Second, nil)
		obs.RecordDelivery("Calls", time.Second, errTest)
		obs.RecordSweep(time.Second, 3)
		So(testutil.ToFloat64(obs.enqueued.WithLabelValues("Calls")), ShouldEqual, 1)
		So(testutil.ToFloat64(obs.deliveries.WithLabelValues("Calls", "failed")), ShouldEqual, 1)
		So(testutil.ToFloat64(obs.dueEntries), ShouldEqual, 3)
		Convey("Registering twice should reuse the existing collectors", func() {
			again, err := NewPrometheusObserver("", reg)
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(again.enqueued.WithLabelValues("Calls")), ShouldEqual, 1)
		})
		Convey("A nil observer is a no-op", func() {
			var nilObs *PrometheusObserver
			So(func() { nilObs.RecordEnqueue("Calls") }, ShouldNotPanic)
		})
	})
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("test error")
