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

// Package timeseries models a single date-indexed value or return series and
// computes performance and risk statistics over it. All metric methods accept
// a DateRange that is resolved against the dates actually present in the
// series; transformations return new series rather than mutating the
// receiver.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
)

var (
	ErrConstruction             = errors.New("invalid timeseries construction")
	ErrRange                    = errors.New("date range not satisfiable")
	ErrNonPositiveValue         = errors.New("non-positive boundary value")
	ErrUnsupportedInterpolation = errors.New("unsupported quantile interpolation")
)

// TimeSeries is a strictly ascending, date-unique sequence of float64
// observations tagged with a label, currency and value kind. Dates carry no
// time-of-day component.
type TimeSeries struct {
	Label    string
	Currency string
	Kind     dataframe.ValueKind

	Dates  []time.Time
	Values []float64
}

// New validates and creates a TimeSeries. Dates must be strictly increasing
// and unique, values must be finite, and both slices must have equal nonzero
// length.
func New(label, currency string, kind dataframe.ValueKind, dates []time.Time, values []float64) (*TimeSeries, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no observations", ErrConstruction)
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("%w: %d dates for %d values", ErrConstruction, len(dates), len(values))
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency %q is not an ISO 4217 code", ErrConstruction, currency)
	}

	normalized := make([]time.Time, len(dates))
	for idx, d := range dates {
		normalized[idx] = normalize(d)
		if idx > 0 && !normalized[idx-1].Before(normalized[idx]) {
			return nil, fmt.Errorf("%w: dates not strictly increasing at %s", ErrConstruction,
				normalized[idx].Format("2006-01-02"))
		}
	}

	vals := make([]float64, len(values))
	for idx, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at %s", ErrConstruction,
				normalized[idx].Format("2006-01-02"))
		}
		vals[idx] = v
	}

	return &TimeSeries{
		Label:    label,
		Currency: currency,
		Kind:     kind,
		Dates:    normalized,
		Values:   vals,
	}, nil
}

// derive builds a series from already-owned slices without re-validating
// finiteness; transformations may legitimately introduce NaN gaps which the
// NaN-handling methods clean up.
func (ts *TimeSeries) derive(kind dataframe.ValueKind, dates []time.Time, values []float64) *TimeSeries {
	return &TimeSeries{
		Label:    ts.Label,
		Currency: ts.Currency,
		Kind:     kind,
		Dates:    dates,
		Values:   values,
	}
}

// Clone creates a deep copy of the series
func (ts *TimeSeries) Clone() *TimeSeries {
	dates := make([]time.Time, len(ts.Dates))
	values := make([]float64, len(ts.Values))
	copy(dates, ts.Dates)
	copy(values, ts.Values)
	return ts.derive(ts.Kind, dates, values)
}

// Length returns the number of observations
func (ts *TimeSeries) Length() int {
	return len(ts.Dates)
}

// FirstDate returns the date of the first observation
func (ts *TimeSeries) FirstDate() time.Time {
	if len(ts.Dates) == 0 {
		return time.Time{}
	}
	return ts.Dates[0]
}

// LastDate returns the date of the last observation
func (ts *TimeSeries) LastDate() time.Time {
	if len(ts.Dates) == 0 {
		return time.Time{}
	}
	return ts.Dates[len(ts.Dates)-1]
}

// SpanOfDays returns the number of calendar days between the first and last
// observation
func (ts *TimeSeries) SpanOfDays() int {
	return daysBetween(ts.FirstDate(), ts.LastDate())
}

// YearFrac returns the span of the series in average calendar years
func (ts *TimeSeries) YearFrac() float64 {
	return float64(ts.SpanOfDays()) / 365.25
}

// PeriodsInAYear returns the average number of observations per year
func (ts *TimeSeries) PeriodsInAYear() float64 {
	return float64(ts.Length()) / ts.YearFrac()
}

// DataFrame returns a single-column dataframe view of the series; the
// returned frame shares backing arrays with the series.
func (ts *TimeSeries) DataFrame() *dataframe.DataFrame {
	return &dataframe.DataFrame{
		Dates: ts.Dates,
		Cols:  []dataframe.Column{{Label: ts.Label, Kind: ts.Kind}},
		Vals:  [][]float64{ts.Values},
	}
}

// Table renders the series as an ASCII table
func (ts *TimeSeries) Table() string {
	return ts.DataFrame().Table()
}

func normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
