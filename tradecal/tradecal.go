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

// Package tradecal builds business-day calendars from per-country holiday
// rules and offsets dates against them. Calendars are immutable values; all
// configuration is passed explicitly through Config.
package tradecal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrUnsupportedCalendar  = errors.New("unsupported calendar country code")
	ErrUnsupportedFrequency = errors.New("unsupported frequency code")
)

// Config selects the holiday calendars used when resolving business days.
// Custom holidays are merged into the first country's calendar only.
type Config struct {
	Countries      []string
	CustomHolidays []time.Time
}

// DefaultConfig returns the Swedish calendar used when no explicit
// configuration is provided.
func DefaultConfig() Config {
	return Config{Countries: []string{"SE"}}
}

// ConfigFromViper builds a Config from the application configuration keys
// calendar.countries and calendar.custom_holidays (ISO 8601 date strings).
func ConfigFromViper() (Config, error) {
	cfg := Config{
		Countries: viper.GetStringSlice("calendar.countries"),
	}
	if len(cfg.Countries) == 0 {
		cfg.Countries = []string{"SE"}
	}

	for _, dateStr := range viper.GetStringSlice("calendar.custom_holidays") {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return Config{}, fmt.Errorf("could not parse custom holiday %q: %w", dateStr, err)
		}
		cfg.CustomHolidays = append(cfg.CustomHolidays, d)
	}

	return cfg, nil
}

func (cfg Config) cacheKey(startYear, endYear int) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%d:%d:%s", startYear, endYear, strings.Join(cfg.Countries, ","))
	for _, d := range cfg.CustomHolidays {
		sb.WriteByte(':')
		sb.WriteString(d.Format("2006-01-02"))
	}
	return sb.String()
}

// Calendar is an immutable set of holiday dates usable as a business-day
// predicate over the year span it was generated for.
type Calendar struct {
	StartYear int
	EndYear   int

	holidays map[int]struct{}
}

var calendarCache *lru.Cache

func init() {
	var err error
	calendarCache, err = lru.New(128)
	if err != nil {
		log.Panic().Err(err).Msg("could not create calendar cache")
	}
}

// New generates a calendar covering the inclusive year span
// [startYear-1, endYear+1]; the padding absorbs month-offset rollovers.
// Unknown country codes return ErrUnsupportedCalendar.
func New(startYear, endYear int, cfg Config) (*Calendar, error) {
	startYear--
	endYear++
	if startYear == endYear {
		endYear++
	}

	if len(cfg.Countries) == 0 {
		cfg.Countries = []string{"SE"}
	}

	key := cfg.cacheKey(startYear, endYear)
	if cached, ok := calendarCache.Get(key); ok {
		return cached.(*Calendar), nil
	}

	cal := &Calendar{
		StartYear: startYear,
		EndYear:   endYear,
		holidays:  make(map[int]struct{}, 16*(endYear-startYear)),
	}

	for idx, country := range cfg.Countries {
		for year := startYear; year <= endYear; year++ {
			days, err := holidaysForCountry(country, year)
			if err != nil {
				return nil, err
			}
			for _, d := range days {
				cal.holidays[dayNumber(d)] = struct{}{}
			}
		}
		// custom holidays extend the first country's calendar only
		if idx == 0 {
			for _, d := range cfg.CustomHolidays {
				cal.holidays[dayNumber(normalize(d))] = struct{}{}
			}
		}
	}

	calendarCache.Add(key, cal)
	return cal, nil
}

// IsBusinessDay returns true when the date is a weekday that is not a
// holiday in the calendar.
func (cal *Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	_, holiday := cal.holidays[dayNumber(normalize(d))]
	return !holiday
}

// BusinessDays lists every business day in [start, end] in ascending order.
func (cal *Calendar) BusinessDays(start, end time.Time) []time.Time {
	start = normalize(start)
	end = normalize(end)

	days := make([]time.Time, 0, 260*(end.Year()-start.Year()+1))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if cal.IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// HolidayList returns the holiday dates in ascending order. Primarily a
// diagnostic aid.
func (cal *Calendar) HolidayList() []time.Time {
	days := make([]time.Time, 0, len(cal.holidays))
	for num := range cal.holidays {
		days = append(days, fromDayNumber(num))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// normalize strips any time-of-day component; all calendar math is done on
// UTC midnights.
func normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func dayNumber(d time.Time) int {
	return int(d.Unix() / 86400)
}

func fromDayNumber(num int) time.Time {
	return time.Unix(int64(num)*86400, 0).UTC()
}
