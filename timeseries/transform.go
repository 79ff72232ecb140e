// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timeseries

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/tradecal"
)

// NaNMethod selects how the NaN-handling transformations treat gaps
type NaNMethod string

const (
	Fill NaNMethod = "fill"
	Drop NaNMethod = "drop"
)

// ToReturns converts a value series into a simple return series; the first
// observation becomes zero
func (ts *TimeSeries) ToReturns() *TimeSeries {
	values := make([]float64, len(ts.Values))
	copy(values[1:], PctChange(ts.Values))
	return ts.derive(dataframe.Return, cloneDates(ts.Dates), values)
}

// ToLogReturns converts a value series into a log return series; the first
// observation becomes zero
func (ts *TimeSeries) ToLogReturns() *TimeSeries {
	values := make([]float64, len(ts.Values))
	copy(values[1:], LogChange(ts.Values))
	return ts.derive(dataframe.Return, cloneDates(ts.Dates), values)
}

// ToDiff converts a value series into period-to-period differences over the
// given number of periods; the first observation becomes zero
func (ts *TimeSeries) ToDiff(periods int) *TimeSeries {
	values := make([]float64, len(ts.Values))
	for idx := range values {
		if idx < periods {
			values[idx] = math.NaN()
		} else {
			values[idx] = ts.Values[idx] - ts.Values[idx-periods]
		}
	}
	if len(values) > 0 {
		values[0] = 0
	}
	return ts.derive(dataframe.Return, cloneDates(ts.Dates), values)
}

// ToLog converts a value series into cumulative log returns relative to the
// first observation
func (ts *TimeSeries) ToLog() *TimeSeries {
	values := make([]float64, len(ts.Values))
	for idx, v := range ts.Values {
		values[idx] = math.Log(v / ts.Values[0])
	}
	return ts.derive(dataframe.Return, cloneDates(ts.Dates), values)
}

// FromLog reverses ToLog, exponentiating a cumulative log return series back
// into a value series
func (ts *TimeSeries) FromLog() *TimeSeries {
	values := make([]float64, len(ts.Values))
	for idx, v := range ts.Values {
		values[idx] = math.Exp(v)
	}
	return ts.derive(dataframe.Price, cloneDates(ts.Dates), values)
}

// ToCumulative compounds a return series into a cumulative value series
// starting at 1.0. A series not already tagged as returns is converted
// first.
func (ts *TimeSeries) ToCumulative() *TimeSeries {
	src := ts
	if ts.Kind != dataframe.Return {
		src = ts.ToReturns()
	}

	values := make([]float64, len(src.Values))
	cum := 1.0
	for idx, r := range src.Values {
		cum *= 1 + r
		values[idx] = cum
	}
	if len(values) > 0 {
		first := values[0]
		for idx := range values {
			values[idx] /= first
		}
	}

	return ts.derive(dataframe.Price, cloneDates(ts.Dates), values)
}

// ToDrawdowns converts a value series into its drawdown series
func (ts *TimeSeries) ToDrawdowns() *TimeSeries {
	return ts.derive(dataframe.Drawdown, cloneDates(ts.Dates), Drawdowns(ts.Values))
}

// Resample reduces the series to one observation per calendar period,
// keeping the last observation in each period and dating it at the period
// end. B-prefixed frequency codes adjust period ends onto the business-day
// calendar.
func (ts *TimeSeries) Resample(freq string, cfg tradecal.Config) (*TimeSeries, error) {
	var dates []time.Time
	var values []float64

	for idx, d := range ts.Dates {
		label, err := periodLabel(d, freq, cfg)
		if err != nil {
			return nil, err
		}
		if len(dates) > 0 && dates[len(dates)-1].Equal(label) {
			values[len(values)-1] = ts.Values[idx]
			continue
		}
		dates = append(dates, label)
		values = append(values, ts.Values[idx])
	}

	return ts.derive(ts.Kind, dates, values), nil
}

// ResampleToBusinessPeriodEnds reduces the series to the business period end
// dates between its first and last observation while leaving the stub dates
// at both ends in place. Values are taken from the nearest available
// observation.
func (ts *TimeSeries) ResampleToBusinessPeriodEnds(freq string, cfg tradecal.Config) (*TimeSeries, error) {
	first := ts.FirstDate()
	last := ts.LastDate()

	dates := []time.Time{first}
	for d := first; d.Before(last); {
		calEnd, err := tradecal.PeriodEnd(d, freq)
		if err != nil {
			return nil, err
		}
		end, err := tradecal.AdjustedPeriodEnd(d, freq, cfg)
		if err != nil {
			return nil, err
		}
		if end.After(first) && end.Before(last) {
			dates = append(dates, end)
		}
		d = calEnd.AddDate(0, 0, 1)
	}
	dates = append(dates, last)

	values := make([]float64, len(dates))
	for idx, d := range dates {
		values[idx] = ts.Values[nearestIndex(ts.Dates, d)]
	}

	return ts.derive(ts.Kind, dates, values), nil
}

// ValueNaNHandle cleans gaps in a value series by forward-filling or
// dropping them
func (ts *TimeSeries) ValueNaNHandle(method NaNMethod) (*TimeSeries, error) {
	switch method {
	case Fill:
		values := make([]float64, len(ts.Values))
		last := math.NaN()
		for idx, v := range ts.Values {
			if !math.IsNaN(v) {
				last = v
			}
			values[idx] = last
		}
		return ts.derive(ts.Kind, cloneDates(ts.Dates), values), nil
	case Drop:
		return ts.dropNaNRows(), nil
	}

	return nil, fmt.Errorf("%w: NaN method must be fill or drop", ErrConstruction)
}

// ReturnNaNHandle cleans gaps in a return series by zero-filling or dropping
// them
func (ts *TimeSeries) ReturnNaNHandle(method NaNMethod) (*TimeSeries, error) {
	switch method {
	case Fill:
		return ts.derive(ts.Kind, cloneDates(ts.Dates), zeroNaN(ts.Values)), nil
	case Drop:
		return ts.dropNaNRows(), nil
	}

	return nil, fmt.Errorf("%w: NaN method must be fill or drop", ErrConstruction)
}

// RunningAdjustment applies a continuous annualized fee (negative) or
// premium (positive) to the series' returns and recompounds it into a value
// series
func (ts *TimeSeries) RunningAdjustment(adjustment float64, daysInYear int) *TimeSeries {
	var returns []float64
	if ts.Kind == dataframe.Return {
		returns = dropNaN(ts.Values[1:])
	} else {
		returns = dropNaN(PctChange(ts.Values))
	}

	dates := cloneDates(ts.Dates)
	values := make([]float64, 0, len(returns)+1)
	values = append(values, ts.Values[0])

	prev := ts.Dates[0]
	for idx, r := range returns {
		d := ts.Dates[idx+1]
		values = append(values,
			values[len(values)-1]*(1+r+adjustment*float64(daysBetween(prev, d))/float64(daysInYear)))
		prev = d
	}

	return ts.derive(dataframe.Price, dates, values)
}

// AlignToBusinessDays reindexes the series onto the business days of its own
// span; dates without an observation become NaN gaps and observations on
// non-business days are dropped
func (ts *TimeSeries) AlignToBusinessDays(cfg tradecal.Config) (*TimeSeries, error) {
	cal, err := tradecal.New(ts.FirstDate().Year(), ts.LastDate().Year(), cfg)
	if err != nil {
		return nil, err
	}

	dates := cal.BusinessDays(ts.FirstDate(), ts.LastDate())
	values := make([]float64, len(dates))
	for idx, d := range dates {
		if obsIdx := indexOfDate(ts.Dates, d); obsIdx != -1 {
			values[idx] = ts.Values[obsIdx]
		} else {
			values[idx] = math.NaN()
		}
	}

	return ts.derive(ts.Kind, dates, values), nil
}

// Chain splices an older series onto the front of a newer one, scaling the
// older values so the two agree at the newer series' first date. A fee may
// be applied to the older series before scaling. The newer series' first
// date must be present in the older series.
func Chain(front, back *TimeSeries, oldFee float64) (*TimeSeries, error) {
	old := front
	if oldFee != 0 {
		old = front.RunningAdjustment(oldFee, 365)
	}

	pivot := back.FirstDate()
	pivotIdx := indexOfDate(old.Dates, pivot)
	if pivotIdx == -1 {
		return nil, fmt.Errorf("%w: chain pivot %s not present in front series",
			dataframe.ErrDateIndexNotAligned, pivot.Format("2006-01-02"))
	}

	scale := back.Values[0] / old.Values[pivotIdx]

	dates := make([]time.Time, 0, pivotIdx+back.Length())
	values := make([]float64, 0, pivotIdx+back.Length())
	for idx := 0; idx < pivotIdx; idx++ {
		dates = append(dates, old.Dates[idx])
		values = append(values, old.Values[idx]*scale)
	}
	dates = append(dates, back.Dates...)
	values = append(values, back.Values...)

	return back.derive(back.Kind, dates, values), nil
}

func (ts *TimeSeries) dropNaNRows() *TimeSeries {
	dates := make([]time.Time, 0, len(ts.Dates))
	values := make([]float64, 0, len(ts.Values))
	for idx, v := range ts.Values {
		if !math.IsNaN(v) {
			dates = append(dates, ts.Dates[idx])
			values = append(values, v)
		}
	}
	return ts.derive(ts.Kind, dates, values)
}

// periodLabel resolves the resample bin label for a date, adjusting onto the
// business-day calendar for B-prefixed frequency codes
func periodLabel(d time.Time, freq string, cfg tradecal.Config) (time.Time, error) {
	if strings.HasPrefix(strings.ToUpper(freq), "B") {
		return tradecal.AdjustedPeriodEnd(d, freq, cfg)
	}
	return tradecal.PeriodEnd(d, freq)
}

func nearestIndex(dates []time.Time, d time.Time) int {
	idx := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(d) })
	if idx == len(dates) {
		return len(dates) - 1
	}
	if idx == 0 {
		return 0
	}
	if d.Sub(dates[idx-1]) <= dates[idx].Sub(d) {
		return idx - 1
	}
	return idx
}

func cloneDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}
