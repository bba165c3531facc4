// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package types

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStringList(t *testing.T) {
	Convey("Testing StringList", t, func() {
		Convey("Parsing should trim and drop empty items", func() {
			So(ParseStringList(" a@x.com, ,b@x.com,"), ShouldResemble, StringList{"a@x.com", "b@x.com"})
			So(ParseStringList(""), ShouldBeNil)
		})
		Convey("Value should join cleaned items", func() {
			val, err := StringList{"a", " ", "b "}.Value()
			So(err, ShouldBeNil)
			So(val, ShouldEqual, "a,b")
		})
		Convey("Scanning", func() {
			var sl StringList
			So(sl.Scan([]byte("a,b")), ShouldBeNil)
			So(sl, ShouldResemble, StringList{"a", "b"})
			So(sl.Scan(nil), ShouldBeNil)
			So(sl, ShouldBeNil)
			So(sl.Scan(12), ShouldNotBeNil)
		})
		Convey("Copy should not share memory", func() {
			orig := StringList{"a", "b"}
			cp := orig.Copy()
			cp[0] = "z"
			So(orig[0], ShouldEqual, "a")
		})
	})
}
