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

package tradecal

import (
	"fmt"
	"strings"
	"time"
)

// AddMonths offsets a date by calendar months, clamping the day-of-month to
// the end of the target month (Jan 31 + 1 month = Feb 28/29, never Mar 2).
func AddMonths(d time.Time, months int) time.Time {
	d = normalize(d)

	total := int(d.Month()) - 1 + months
	year := d.Year() + total/12
	monthIdx := total % 12
	if monthIdx < 0 {
		monthIdx += 12
		year--
	}
	month := time.Month(monthIdx + 1)

	day := d.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return date(year, month, day)
}

func daysInMonth(year int, month time.Month) int {
	return date(year, month+1, 1).AddDate(0, 0, -1).Day()
}

// Offset adds months calendar months to the date. When adjust is true the
// result is walked one day at a time, forward when following is true and
// backward otherwise, until it lands on a business day of the resolved
// calendar.
func Offset(d time.Time, months int, adjust, following bool, cfg Config) (time.Time, error) {
	d = normalize(d)
	newDate := AddMonths(d, months)

	if !adjust {
		return newDate, nil
	}

	startYear := d.Year()
	endYear := newDate.Year()
	if endYear < startYear {
		startYear, endYear = endYear, startYear
	}

	cal, err := New(startYear, endYear, cfg)
	if err != nil {
		return time.Time{}, err
	}

	step := 1
	if !following {
		step = -1
	}
	for !cal.IsBusinessDay(newDate) {
		newDate = newDate.AddDate(0, 0, step)
	}

	return newDate, nil
}

// PreviousBusinessDay finds the most recent business day strictly before the
// given date.
func PreviousBusinessDay(d time.Time, cfg Config) (time.Time, error) {
	return Offset(d.AddDate(0, 0, -1), 0, true, false, cfg)
}

// OffsetBusinessDays bumps a date by business days instead of calendar days.
// The date is first snapped onto the calendar, backward when n <= 0 and
// forward otherwise, then moved n entries through the business-day list.
//
// The candidate window is sized with the 372/250 calendar-to-business-day
// heuristic padded by one year; because that heuristic can under-generate
// for very large offsets the window is doubled and the lookup retried until
// the target index falls inside it.
func OffsetBusinessDays(d time.Time, n int, cfg Config) (time.Time, error) {
	d = normalize(d)

	pad := n * 372 / 250
	if pad < 0 {
		pad = -pad
	}
	pad += 365

	for {
		var windowStart, windowEnd time.Time
		if n <= 0 {
			windowStart = d.AddDate(0, 0, -pad)
			windowEnd = d
		} else {
			windowStart = d
			windowEnd = d.AddDate(0, 0, pad)
		}

		cal, err := New(windowStart.Year(), windowEnd.Year(), cfg)
		if err != nil {
			return time.Time{}, err
		}
		bdays := cal.BusinessDays(windowStart, windowEnd)

		snapped := d
		for !cal.IsBusinessDay(snapped) {
			if n <= 0 {
				snapped = snapped.AddDate(0, 0, -1)
			} else {
				snapped = snapped.AddDate(0, 0, 1)
			}
		}

		idx := -1
		for ii, bday := range bdays {
			if bday.Equal(snapped) {
				idx = ii
				break
			}
		}

		target := idx + n
		if idx != -1 && target >= 0 && target < len(bdays) {
			return bdays[target], nil
		}

		pad *= 2
	}
}

// PeriodEnd returns the calendar period end containing the date for the
// given frequency code. Codes follow the usual offset aliases: M/BM month
// end, Q/BQ quarter end, A/BA/Y/BY year end, D/B daily (identity). The
// business-day variants are adjusted onto the calendar by the caller.
func PeriodEnd(d time.Time, freq string) (time.Time, error) {
	d = normalize(d)

	switch strings.TrimPrefix(strings.ToUpper(freq), "B") {
	case "D", "":
		return d, nil
	case "M":
		return date(d.Year(), d.Month()+1, 1).AddDate(0, 0, -1), nil
	case "Q":
		quarterEndMonth := ((d.Month()-1)/3)*3 + 3
		return date(d.Year(), quarterEndMonth+1, 1).AddDate(0, 0, -1), nil
	case "A", "Y":
		return date(d.Year(), time.December, 31), nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrUnsupportedFrequency, freq)
}

// AdjustedPeriodEnd resolves the business-day period end for the date: the
// calendar period end walked backward onto the nearest business day.
func AdjustedPeriodEnd(d time.Time, freq string, cfg Config) (time.Time, error) {
	end, err := PeriodEnd(d, freq)
	if err != nil {
		return time.Time{}, err
	}
	return Offset(end, 0, true, false, cfg)
}
