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

package frame

import (
	"fmt"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/timeseries"
	"github.com/penny-vault/pv-timeseries/tradecal"
)

// ValueToRet converts every constituent to simple returns and returns a new
// frame; the receiver is untouched
func (f *Frame) ValueToRet() (*Frame, error) {
	converted := make([]*timeseries.TimeSeries, len(f.Constituents))
	for idx, ts := range f.Constituents {
		converted[idx] = ts.ToReturns()
	}
	return New(converted...)
}

// ToCumulative compounds every constituent into a cumulative value series
// starting at 1.0 and returns a new frame
func (f *Frame) ToCumulative() (*Frame, error) {
	converted := make([]*timeseries.TimeSeries, len(f.Constituents))
	for idx, ts := range f.Constituents {
		converted[idx] = ts.ToCumulative()
	}
	return New(converted...)
}

// Resample reduces every constituent to one observation per calendar period
// and returns a new frame
func (f *Frame) Resample(freq string, cfg tradecal.Config) (*Frame, error) {
	converted := make([]*timeseries.TimeSeries, len(f.Constituents))
	for idx, ts := range f.Constituents {
		resampled, err := ts.Resample(freq, cfg)
		if err != nil {
			return nil, err
		}
		converted[idx] = resampled
	}
	return New(converted...)
}

// ResampleToBusinessPeriodEnds reduces every constituent to business period
// end dates, keeping each constituent's own stub dates, and returns a new
// frame
func (f *Frame) ResampleToBusinessPeriodEnds(freq string, cfg tradecal.Config) (*Frame, error) {
	converted := make([]*timeseries.TimeSeries, len(f.Constituents))
	for idx, ts := range f.Constituents {
		resampled, err := ts.ResampleToBusinessPeriodEnds(freq, cfg)
		if err != nil {
			return nil, err
		}
		converted[idx] = resampled
	}
	return New(converted...)
}

// Relative computes the cumulative relative return of the long column over
// the short column as a new series labelled "LONG_over_SHORT". With baseZero
// the result is the plain difference; otherwise 1.0 is added as a capital
// base so volatility statistics remain meaningful.
func (f *Frame) Relative(long, short ColumnRef, baseZero bool) (*timeseries.TimeSeries, error) {
	longIdx, err := long.resolve(f.table)
	if err != nil {
		return nil, err
	}
	shortIdx, err := short.resolve(f.table)
	if err != nil {
		return nil, err
	}

	base := 0.0
	if !baseZero {
		base = 1.0
	}

	values := make([]float64, f.table.Len())
	for rowIdx := range values {
		values[rowIdx] = base + f.table.Vals[longIdx][rowIdx] - f.table.Vals[shortIdx][rowIdx]
	}

	src := f.Constituents[longIdx]
	return &timeseries.TimeSeries{
		Label:    fmt.Sprintf("%s_over_%s", f.table.Cols[longIdx].Label, f.table.Cols[shortIdx].Label),
		Currency: src.Currency,
		Kind:     dataframe.RelativeReturn,
		Dates:    cloneDates(f.table.Dates),
		Values:   values,
	}, nil
}
