// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package nbutils

import (
	"fmt"

	"github.com/cockroachdb/apd/v2"
)

var ctx = apd.Context{
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfUp,
	Precision:   128,
}

// Percentage returns part/total as a whole percentage, halves rounded up.
// It returns 0 if total is not positive.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	res := apd.New(0, 0)
	if _, err := ctx.Quo(res, apd.New(int64(part)*100, 0), apd.New(int64(total), 0)); err != nil {
		panic(fmt.Errorf("error while computing percentage %d/%d: %s", part, total, err))
	}
	if _, err := ctx.RoundToIntegralValue(res, res); err != nil {
		panic(fmt.Errorf("error while computing percentage %d/%d: %s", part, total, err))
	}
	pct, err := res.Int64()
	if err != nil {
		panic(fmt.Errorf("error while computing percentage %d/%d: %s", part, total, err))
	}
	return int(pct)
}
