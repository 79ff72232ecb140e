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
	"sort"
	"time"

	"github.com/penny-vault/pv-timeseries/tradecal"
)

// DateRange selects a sub-span of a series. MonthsOffset, when positive,
// overrides From/To and anchors the range MonthsOffset calendar months back
// from the last observation. Zero-value From/To default to the series' own
// first/last date.
type DateRange struct {
	MonthsOffset int
	From         time.Time
	To           time.Time
}

// whole reports whether the range covers the full series
func (rng DateRange) whole() bool {
	return rng.MonthsOffset == 0 && rng.From.IsZero() && rng.To.IsZero()
}

// ResolveRange converts a DateRange into a concrete (start, end) pair of
// dates present in the ascending date index. A boundary that falls on a date
// without an observation is snapped onto the index: start walks backward and
// end walks forward one calendar day at a time. Bounds outside the index span
// return ErrRange.
func ResolveRange(dates []time.Time, rng DateRange) (time.Time, time.Time, error) {
	if len(dates) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: empty date index", ErrRange)
	}

	first := dates[0]
	last := dates[len(dates)-1]

	if rng.whole() {
		return first, last, nil
	}

	var start, end time.Time
	switch {
	case rng.MonthsOffset != 0:
		if rng.MonthsOffset < 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: months offset must be positive", ErrRange)
		}
		start = tradecal.AddMonths(last, -rng.MonthsOffset)
		end = last
		if start.Before(first) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %d month offset reaches before series start %s",
				ErrRange, rng.MonthsOffset, first.Format("2006-01-02"))
		}
	default:
		start = first
		end = last
		if !rng.From.IsZero() {
			start = normalize(rng.From)
			if start.Before(first) {
				return time.Time{}, time.Time{}, fmt.Errorf("%w: from date %s before series start %s",
					ErrRange, start.Format("2006-01-02"), first.Format("2006-01-02"))
			}
		}
		if !rng.To.IsZero() {
			end = normalize(rng.To)
			if end.After(last) {
				return time.Time{}, time.Time{}, fmt.Errorf("%w: to date %s after series end %s",
					ErrRange, end.Format("2006-01-02"), last.Format("2006-01-02"))
			}
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: inverted bounds %s > %s",
				ErrRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}

	// snap boundaries onto dates actually present in the index; non-trading
	// days are silently absorbed
	for !dateInIndex(dates, start) {
		start = start.AddDate(0, 0, -1)
	}
	for !dateInIndex(dates, end) {
		end = end.AddDate(0, 0, 1)
	}

	return start, end, nil
}

func dateInIndex(dates []time.Time, d time.Time) bool {
	idx := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(d) })
	return idx < len(dates) && dates[idx].Equal(d)
}

// indexOfDate returns the position of d in the ascending index, or -1
func indexOfDate(dates []time.Time, d time.Time) int {
	idx := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(d) })
	if idx < len(dates) && dates[idx].Equal(d) {
		return idx
	}
	return -1
}

// TimeFactor computes the annualization factor for count observations over
// [start, end]: count divided by the span in average calendar years. A fixed
// override greater than zero short-circuits the computation. A zero or
// negative span is a caller error rather than a silent infinity.
func TimeFactor(start, end time.Time, count int, fixed float64) (float64, error) {
	if fixed > 0 {
		return fixed, nil
	}

	fraction := float64(daysBetween(start, end)) / 365.25
	if fraction <= 0 {
		return 0, fmt.Errorf("%w: cannot annualize over a span of %s to %s",
			ErrRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return float64(count) / fraction, nil
}

// resolveRange locates the resolved range as index positions, inclusive
func (ts *TimeSeries) resolveRange(rng DateRange) (int, int, error) {
	start, end, err := ResolveRange(ts.Dates, rng)
	if err != nil {
		return 0, 0, err
	}

	return indexOfDate(ts.Dates, start), indexOfDate(ts.Dates, end), nil
}

// timeFactor annualizes over the index range [startIdx, endIdx]
func (ts *TimeSeries) timeFactor(startIdx, endIdx int, fixed float64) (float64, error) {
	return TimeFactor(ts.Dates[startIdx], ts.Dates[endIdx], endIdx-startIdx+1, fixed)
}
