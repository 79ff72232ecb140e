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

// Package frame aligns multiple timeseries onto a shared date-indexed table
// and computes cross-series statistics over it: beta, Jensen's alpha,
// tracking error, information and capture ratios, EWMA volatilities and
// correlation, and portfolio combination.
package frame

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/timeseries"
	"github.com/rs/zerolog/log"
)

// MergeMethod selects the join semantics of Merge
type MergeMethod string

const (
	Outer MergeMethod = "outer"
	Inner MergeMethod = "inner"
)

// ColumnRef selects a column of the shared table either by position or by
// its tagged (label, kind) identity. The zero value refers to the first
// column.
type ColumnRef struct {
	position int
	label    string
	kind     dataframe.ValueKind
	tagged   bool
}

// ByPosition refers to the column at the given index
func ByPosition(position int) ColumnRef {
	return ColumnRef{position: position}
}

// ByColumn refers to the column with the given label and kind
func ByColumn(label string, kind dataframe.ValueKind) ColumnRef {
	return ColumnRef{label: label, kind: kind, tagged: true}
}

// resolve converts the reference into a concrete column index
func (ref ColumnRef) resolve(table *dataframe.DataFrame) (int, error) {
	if ref.tagged {
		colIdx := table.ColIndex(dataframe.Column{Label: ref.label, Kind: ref.kind})
		if colIdx == -1 {
			return 0, fmt.Errorf("%w: no column %s (%s)", dataframe.ErrDimension, ref.label, ref.kind)
		}
		return colIdx, nil
	}
	if ref.position < 0 || ref.position >= table.ColCount() {
		return 0, fmt.Errorf("%w: column %d of %d", dataframe.ErrDimension, ref.position, table.ColCount())
	}
	return ref.position, nil
}

// Frame owns an ordered list of constituent timeseries and a shared table
// formed by merging them on date. Weights, when set, parallel the
// constituents and feed MakePortfolio; they need not sum to one.
type Frame struct {
	Constituents []*timeseries.TimeSeries
	Weights      []float64

	table *dataframe.DataFrame
}

// New validates the constituents and builds the outer-merged shared table.
// Labels must be unique across constituents.
func New(constituents ...*timeseries.TimeSeries) (*Frame, error) {
	if len(constituents) == 0 {
		return nil, fmt.Errorf("%w: a frame needs at least one constituent", timeseries.ErrConstruction)
	}

	frame := &Frame{Constituents: constituents}
	if err := validateLabels(constituents); err != nil {
		return nil, err
	}
	if err := frame.Merge(Outer); err != nil {
		return nil, err
	}

	return frame, nil
}

func validateLabels(constituents []*timeseries.TimeSeries) error {
	seen := make(map[string]struct{}, len(constituents))
	for _, ts := range constituents {
		if _, ok := seen[ts.Label]; ok {
			return fmt.Errorf("%w: duplicate label %s", dataframe.ErrDimension, ts.Label)
		}
		seen[ts.Label] = struct{}{}
	}
	return nil
}

// DataFrame returns the shared table; it is owned by the frame and callers
// must not modify it
func (f *Frame) DataFrame() *dataframe.DataFrame {
	return f.table
}

// ItemCount returns the number of constituents
func (f *Frame) ItemCount() int {
	return len(f.Constituents)
}

// Labels returns the constituent labels in column order
func (f *Frame) Labels() []string {
	labels := make([]string, len(f.Constituents))
	for idx, ts := range f.Constituents {
		labels[idx] = ts.Label
	}
	return labels
}

// FirstDate returns the first date of the shared table
func (f *Frame) FirstDate() time.Time {
	return f.table.Start()
}

// LastDate returns the last date of the shared table
func (f *Frame) LastDate() time.Time {
	return f.table.End()
}

// YearFrac returns the span of the shared table in average calendar years
func (f *Frame) YearFrac() float64 {
	return float64(f.LastDate().Sub(f.FirstDate()).Hours()) / 24 / 365.25
}

// PeriodsInAYear returns the average number of table rows per year
func (f *Frame) PeriodsInAYear() float64 {
	return float64(f.table.Len()) / f.YearFrac()
}

// CalcRange resolves a date range against the shared table's date index
func (f *Frame) CalcRange(rng timeseries.DateRange) (time.Time, time.Time, error) {
	return timeseries.ResolveRange(f.table.Dates, rng)
}

// Merge rebuilds the shared table from the constituents. Outer keeps the
// union of all dates with NaN gaps; Inner keeps only dates present in every
// constituent and truncates each constituent to that intersection, a
// destructive side effect on the children. A merge yielding no rows leaves
// the previous table in place and fails.
func (f *Frame) Merge(how MergeMethod) error {
	var dates []time.Time
	switch how {
	case Outer:
		dates = unionDates(f.Constituents)
	case Inner:
		dates = intersectDates(f.Constituents)
	default:
		return fmt.Errorf("%w: merge method must be outer or inner", timeseries.ErrConstruction)
	}

	if len(dates) == 0 {
		return fmt.Errorf("%w: %s merge produced an empty table", dataframe.ErrDateIndexNotAligned, how)
	}

	cols := make([]dataframe.Column, len(f.Constituents))
	vals := make([][]float64, len(f.Constituents))
	for colIdx, ts := range f.Constituents {
		cols[colIdx] = dataframe.Column{Label: ts.Label, Kind: ts.Kind}
		colVals := make([]float64, len(dates))
		for rowIdx, d := range dates {
			if obsIdx := dateIndex(ts.Dates, d); obsIdx != -1 {
				colVals[rowIdx] = ts.Values[obsIdx]
			} else {
				colVals[rowIdx] = math.NaN()
			}
		}
		vals[colIdx] = colVals
	}

	table, err := dataframe.New(dates, cols, vals)
	if err != nil {
		return err
	}
	f.table = table

	if how == Inner {
		for colIdx, ts := range f.Constituents {
			values := make([]float64, len(dates))
			copy(values, vals[colIdx])
			ts.Dates = cloneDates(dates)
			ts.Values = values
		}
	}

	return nil
}

// AddSeries appends a constituent and rebuilds the shared table
func (f *Frame) AddSeries(ts *timeseries.TimeSeries) error {
	if err := validateLabels(append(append([]*timeseries.TimeSeries{}, f.Constituents...), ts)); err != nil {
		return err
	}
	f.Constituents = append(f.Constituents, ts)
	return f.Merge(Outer)
}

// DeleteSeries removes the constituent with the given label and rebuilds the
// shared table
func (f *Frame) DeleteSeries(label string) error {
	for idx, ts := range f.Constituents {
		if ts.Label == label {
			if len(f.Constituents) == 1 {
				return fmt.Errorf("%w: cannot delete the last constituent", timeseries.ErrConstruction)
			}
			f.Constituents = append(f.Constituents[:idx], f.Constituents[idx+1:]...)
			return f.Merge(Outer)
		}
	}
	return fmt.Errorf("%w: no constituent labelled %s", dataframe.ErrDimension, label)
}

// TruncateSide selects which end(s) of the span Truncate trims
type TruncateSide string

const (
	Before TruncateSide = "before"
	After  TruncateSide = "after"
	Both   TruncateSide = "both"
)

// Truncate trims the shared table and every constituent to [startCut,
// endCut], honoring only the bound(s) the side selector names. A zero-value
// bound defaults to the tightest common span: the latest constituent first
// date or the earliest constituent last date. Inverted bounds fail before
// any constituent is touched. Constituents that still disagree on their
// span afterward are tolerated with a warning.
func (f *Frame) Truncate(startCut, endCut time.Time, where TruncateSide) error {
	var trimStart, trimEnd bool
	switch where {
	case Before:
		trimStart = true
	case After:
		trimEnd = true
	case Both:
		trimStart, trimEnd = true, true
	default:
		return fmt.Errorf("%w: truncate side must be before, after or both", timeseries.ErrConstruction)
	}

	if startCut.IsZero() {
		for _, ts := range f.Constituents {
			if ts.FirstDate().After(startCut) {
				startCut = ts.FirstDate()
			}
		}
	}
	if endCut.IsZero() {
		endCut = f.Constituents[0].LastDate()
		for _, ts := range f.Constituents[1:] {
			if ts.LastDate().Before(endCut) {
				endCut = ts.LastDate()
			}
		}
	}

	if trimStart && trimEnd && endCut.Before(startCut) {
		return fmt.Errorf("%w: truncate bounds %s to %s are inverted", timeseries.ErrRange,
			startCut.Format("2006-01-02"), endCut.Format("2006-01-02"))
	}

	for _, ts := range f.Constituents {
		lo := 0
		hi := len(ts.Dates)
		if trimStart {
			lo = sort.Search(len(ts.Dates), func(i int) bool { return !ts.Dates[i].Before(startCut) })
		}
		if trimEnd {
			hi = sort.Search(len(ts.Dates), func(i int) bool { return ts.Dates[i].After(endCut) })
		}
		ts.Dates = ts.Dates[lo:hi]
		ts.Values = ts.Values[lo:hi]
	}
	if err := f.Merge(Outer); err != nil {
		return err
	}

	for _, ts := range f.Constituents[1:] {
		if !ts.FirstDate().Equal(f.Constituents[0].FirstDate()) {
			log.Warn().Str("Label", ts.Label).Time("FirstDate", ts.FirstDate()).
				Msg("constituent not truncated to common start date")
		}
		if !ts.LastDate().Equal(f.Constituents[0].LastDate()) {
			log.Warn().Str("Label", ts.Label).Time("LastDate", ts.LastDate()).
				Msg("constituent not truncated to common end date")
		}
	}

	return nil
}

// Series extracts the referenced column as an independent timeseries
func (f *Frame) Series(ref ColumnRef) (*timeseries.TimeSeries, error) {
	colIdx, err := ref.resolve(f.table)
	if err != nil {
		return nil, err
	}

	src := f.Constituents[colIdx]
	values := make([]float64, f.table.Len())
	copy(values, f.table.Vals[colIdx])
	return &timeseries.TimeSeries{
		Label:    src.Label,
		Currency: src.Currency,
		Kind:     f.table.Cols[colIdx].Kind,
		Dates:    cloneDates(f.table.Dates),
		Values:   values,
	}, nil
}

func unionDates(constituents []*timeseries.TimeSeries) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, ts := range constituents {
		for _, d := range ts.Dates {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func intersectDates(constituents []*timeseries.TimeSeries) []time.Time {
	var dates []time.Time
	for _, d := range constituents[0].Dates {
		inAll := true
		for _, ts := range constituents[1:] {
			if dateIndex(ts.Dates, d) == -1 {
				inAll = false
				break
			}
		}
		if inAll {
			dates = append(dates, d)
		}
	}
	return dates
}

// dateIndex returns the position of d in the ascending date index, or -1
func dateIndex(dates []time.Time, d time.Time) int {
	idx := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(d) })
	if idx < len(dates) && dates[idx].Equal(d) {
		return idx
	}
	return -1
}

func cloneDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}
