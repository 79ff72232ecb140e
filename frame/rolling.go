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
	"math"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/timeseries"
	"gonum.org/v1/gonum/stat"
)

// rollingPair resolves two column references and validates the rolling
// window against the number of derived returns
func (f *Frame) rollingPair(first, second ColumnRef, observations int) (int, int, error) {
	firstIdx, err := first.resolve(f.table)
	if err != nil {
		return 0, 0, err
	}
	secondIdx, err := second.resolve(f.table)
	if err != nil {
		return 0, 0, err
	}
	if observations < 2 || observations > f.table.Len()-1 {
		return 0, 0, fmt.Errorf("%w: rolling window of %d observations over %d returns",
			dataframe.ErrDimension, observations, f.table.Len()-1)
	}
	return firstIdx, secondIdx, nil
}

// RollingInfoRatio computes the information ratio of the long column against
// the short column over a sliding window of relative returns
func (f *Frame) RollingInfoRatio(long, short ColumnRef, observations int, periodsInAYearFixed float64) (*timeseries.TimeSeries, error) {
	longIdx, shortIdx, err := f.rollingPair(long, short, observations)
	if err != nil {
		return nil, err
	}

	timeFactor := periodsInAYearFixed
	if timeFactor <= 0 {
		timeFactor = f.PeriodsInAYear()
	}

	returns := f.relativeReturns(longIdx, shortIdx, 0, f.table.Len()-1)
	count := len(returns) - observations + 1
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		window := returns[idx : idx+observations]
		sum := 0.0
		for _, r := range window {
			sum += r
		}
		vol := math.Sqrt(stat.Variance(window, nil)) * math.Sqrt(timeFactor)
		values[idx] = sum / vol
	}

	return f.derivedPair(longIdx, shortIdx, " / ", dataframe.InformationRatio, values), nil
}

// RollingBeta computes the asset's beta against the market over a sliding
// window of simple returns
func (f *Frame) RollingBeta(asset, market ColumnRef, observations int) (*timeseries.TimeSeries, error) {
	assetIdx, marketIdx, err := f.rollingPair(asset, market, observations)
	if err != nil {
		return nil, err
	}

	assetReturns := timeseries.PctChange(f.table.Vals[assetIdx])
	marketReturns := timeseries.PctChange(f.table.Vals[marketIdx])

	count := len(assetReturns) - observations + 1
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		assetWindow := assetReturns[idx : idx+observations]
		marketWindow := marketReturns[idx : idx+observations]
		values[idx] = stat.Covariance(assetWindow, marketWindow, nil) / stat.Variance(marketWindow, nil)
	}

	return f.derivedPair(assetIdx, marketIdx, " / ", dataframe.Beta, values), nil
}

// RollingCorr computes the Pearson correlation of two columns' simple
// returns over a sliding window
func (f *Frame) RollingCorr(first, second ColumnRef, observations int) (*timeseries.TimeSeries, error) {
	firstIdx, secondIdx, err := f.rollingPair(first, second, observations)
	if err != nil {
		return nil, err
	}

	firstReturns := timeseries.PctChange(f.table.Vals[firstIdx])
	secondReturns := timeseries.PctChange(f.table.Vals[secondIdx])

	count := len(firstReturns) - observations + 1
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		values[idx] = stat.Correlation(firstReturns[idx:idx+observations], secondReturns[idx:idx+observations], nil)
	}

	return f.derivedPair(firstIdx, secondIdx, "_VS_", dataframe.RollingCorr, values), nil
}

// derivedPair wraps a rolling result whose first output lands at the first
// full window's end date
func (f *Frame) derivedPair(longIdx, shortIdx int, sep string, kind dataframe.ValueKind, values []float64) *timeseries.TimeSeries {
	src := f.Constituents[longIdx]
	return &timeseries.TimeSeries{
		Label:    f.table.Cols[longIdx].Label + sep + f.table.Cols[shortIdx].Label,
		Currency: src.Currency,
		Kind:     kind,
		Dates:    cloneDates(f.table.Dates[f.table.Len()-len(values):]),
		Values:   values,
	}
}
