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

// holidaysForCountry generates the public holidays of one calendar year for
// the given ISO 3166-1 alpha-2 country code.
func holidaysForCountry(country string, year int) ([]time.Time, error) {
	switch strings.ToUpper(country) {
	case "SE":
		return swedenHolidays(year), nil
	case "US":
		return unitedStatesHolidays(year), nil
	case "GB":
		return greatBritainHolidays(year), nil
	case "DE":
		return germanyHolidays(year), nil
	case "NO":
		return norwayHolidays(year), nil
	case "DK":
		return denmarkHolidays(year), nil
	case "FR":
		return franceHolidays(year), nil
	case "FI":
		return finlandHolidays(year), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCalendar, country)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// easterSunday implements the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

// nthWeekday returns the nth (1-based) occurrence of the weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := date(year, month, 1)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+7*(n-1))
}

// lastWeekday returns the final occurrence of the weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := date(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// observedUS shifts Saturday holidays to the preceding Friday and Sunday
// holidays to the following Monday.
func observedUS(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// observedGB rolls weekend holidays forward to the next weekday.
func observedGB(d time.Time) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// midsummerEve is the Friday between June 19 and June 25.
func midsummerEve(year int) time.Time {
	d := date(year, time.June, 19)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func swedenHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		date(year, time.January, 1),
		date(year, time.January, 6),
		easter.AddDate(0, 0, -2), // Good Friday
		easter.AddDate(0, 0, 1),  // Easter Monday
		date(year, time.May, 1),
		easter.AddDate(0, 0, 39), // Ascension Day
		date(year, time.June, 6),
		midsummerEve(year),
		date(year, time.December, 24),
		date(year, time.December, 25),
		date(year, time.December, 26),
		date(year, time.December, 31),
	}
}

func unitedStatesHolidays(year int) []time.Time {
	days := []time.Time{
		observedUS(date(year, time.January, 1)),
		nthWeekday(year, time.January, time.Monday, 3),  // MLK Day
		nthWeekday(year, time.February, time.Monday, 3), // Washington's Birthday
		lastWeekday(year, time.May, time.Monday),        // Memorial Day
		observedUS(date(year, time.July, 4)),
		nthWeekday(year, time.September, time.Monday, 1), // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),   // Columbus Day
		observedUS(date(year, time.November, 11)),
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		observedUS(date(year, time.December, 25)),
	}
	if year >= 2021 {
		days = append(days, observedUS(date(year, time.June, 19)))
	}
	return days
}

func greatBritainHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		observedGB(date(year, time.January, 1)),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		nthWeekday(year, time.May, time.Monday, 1),
		lastWeekday(year, time.May, time.Monday),
		lastWeekday(year, time.August, time.Monday),
		observedGB(date(year, time.December, 25)),
		observedGB(date(year, time.December, 26)),
	}
}

func germanyHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		date(year, time.January, 1),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		date(year, time.May, 1),
		easter.AddDate(0, 0, 39),
		easter.AddDate(0, 0, 50), // Whit Monday
		date(year, time.October, 3),
		date(year, time.December, 25),
		date(year, time.December, 26),
	}
}

func norwayHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		date(year, time.January, 1),
		easter.AddDate(0, 0, -3), // Maundy Thursday
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		date(year, time.May, 1),
		date(year, time.May, 17),
		easter.AddDate(0, 0, 39),
		easter.AddDate(0, 0, 50),
		date(year, time.December, 25),
		date(year, time.December, 26),
	}
}

func denmarkHolidays(year int) []time.Time {
	easter := easterSunday(year)
	days := []time.Time{
		date(year, time.January, 1),
		easter.AddDate(0, 0, -3),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		easter.AddDate(0, 0, 39),
		easter.AddDate(0, 0, 50),
		date(year, time.December, 25),
		date(year, time.December, 26),
	}
	if year < 2024 {
		// Store Bededag, abolished as a public holiday from 2024
		days = append(days, easter.AddDate(0, 0, 26))
	}
	return days
}

func franceHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		date(year, time.January, 1),
		easter.AddDate(0, 0, 1),
		date(year, time.May, 1),
		date(year, time.May, 8),
		easter.AddDate(0, 0, 39),
		easter.AddDate(0, 0, 50),
		date(year, time.July, 14),
		date(year, time.August, 15),
		date(year, time.November, 1),
		date(year, time.November, 11),
		date(year, time.December, 25),
	}
}

func finlandHolidays(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		date(year, time.January, 1),
		date(year, time.January, 6),
		easter.AddDate(0, 0, -2),
		easter.AddDate(0, 0, 1),
		date(year, time.May, 1),
		easter.AddDate(0, 0, 39),
		midsummerEve(year),
		date(year, time.December, 6),
		date(year, time.December, 24),
		date(year, time.December, 25),
		date(year, time.December, 26),
	}
}
