// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package nbutils

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPercentage(t *testing.T) {
	Convey("Testing percentage", t, func() {
		So(Percentage(0, 30), ShouldEqual, 0)
		So(Percentage(10, 30), ShouldEqual, 33)
		So(Percentage(20, 30), ShouldEqual, 67)
		So(Percentage(25, 30), ShouldEqual, 83)
		So(Percentage(30, 30), ShouldEqual, 100)
		So(Percentage(1, 8), ShouldEqual, 13)
		So(Percentage(5, 0), ShouldEqual, 0)
	})
}
