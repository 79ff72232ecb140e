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

// CaptureRatioKind selects which capture ratio to compute
type CaptureRatioKind string

const (
	CaptureUp   CaptureRatioKind = "up"
	CaptureDown CaptureRatioKind = "down"
	CaptureBoth CaptureRatioKind = "both"
)

// allReturnKinds reports whether every column of the shared table is tagged
// as a return series
func (f *Frame) allReturnKinds() bool {
	for _, col := range f.table.Cols {
		if col.Kind != dataframe.Return {
			return false
		}
	}
	return true
}

// logValues converts a value column into cumulative log returns relative to
// its first observation
func logValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for idx, v := range values {
		out[idx] = math.Log(v / values[0])
	}
	return out
}

// rangeBounds resolves a date range into inclusive row bounds of the shared
// table
func (f *Frame) rangeBounds(rng timeseries.DateRange) (int, int, error) {
	start, end, err := timeseries.ResolveRange(f.table.Dates, rng)
	if err != nil {
		return 0, 0, err
	}
	return dateIndex(f.table.Dates, start), dateIndex(f.table.Dates, end), nil
}

// rangeTimeFactor annualizes the base column's non-NaN observation count
// over the resolved span
func (f *Frame) rangeTimeFactor(baseIdx, startIdx, endIdx int, fixed float64) (float64, error) {
	if fixed > 0 {
		return fixed, nil
	}

	count := 0
	for _, v := range f.table.Vals[baseIdx][startIdx : endIdx+1] {
		if !math.IsNaN(v) {
			count++
		}
	}
	return timeseries.TimeFactor(f.table.Dates[startIdx], f.table.Dates[endIdx], count, 0)
}

// Beta computes the asset's sensitivity to the market as sample covariance
// over market variance. Price columns are converted to cumulative log
// returns first; a frame holding only return columns is used as-is.
func (f *Frame) Beta(asset, market ColumnRef) (float64, error) {
	assetIdx, err := asset.resolve(f.table)
	if err != nil {
		return 0, err
	}
	marketIdx, err := market.resolve(f.table)
	if err != nil {
		return 0, err
	}

	assetVals := f.table.Vals[assetIdx]
	marketVals := f.table.Vals[marketIdx]
	if !f.allReturnKinds() {
		assetVals = logValues(assetVals)
		marketVals = logValues(marketVals)
	}

	return stat.Covariance(assetVals, marketVals, nil) / stat.Variance(marketVals, nil), nil
}

// JensenAlpha computes the asset's average return above the CAPM prediction
// given its beta and the market return. Spans longer than a year use
// annualized geometric returns; shorter spans use simple returns.
func (f *Frame) JensenAlpha(asset, market ColumnRef, riskfreeRate float64) (float64, error) {
	assetIdx, err := asset.resolve(f.table)
	if err != nil {
		return 0, err
	}
	marketIdx, err := market.resolve(f.table)
	if err != nil {
		return 0, err
	}

	var assetRet, marketRet float64
	assetVals := f.table.Vals[assetIdx]
	marketVals := f.table.Vals[marketIdx]

	if f.allReturnKinds() {
		assetRet = stat.Mean(assetVals, nil)
		marketRet = stat.Mean(marketVals, nil)
	} else {
		assetRet = f.cagrOrSimple(assetVals)
		marketRet = f.cagrOrSimple(marketVals)
		assetVals = logValues(assetVals)
		marketVals = logValues(marketVals)
	}

	beta := stat.Covariance(assetVals, marketVals, nil) / stat.Variance(marketVals, nil)
	return assetRet - riskfreeRate - beta*(marketRet-riskfreeRate), nil
}

func (f *Frame) cagrOrSimple(values []float64) float64 {
	growth := values[len(values)-1] / values[0]
	if yearFrac := f.YearFrac(); yearFrac > 1 {
		return math.Pow(growth, 1/yearFrac) - 1
	}
	return growth - 1
}

// TrackingError computes, for every column, the annualized standard
// deviation of the return difference against the base column; the base's own
// entry is zero. Results follow column order.
func (f *Frame) TrackingError(base ColumnRef, rng timeseries.DateRange, periodsInAYearFixed float64) ([]float64, error) {
	baseIdx, startIdx, endIdx, timeFactor, err := f.relativeSetup(base, rng, periodsInAYearFixed)
	if err != nil {
		return nil, err
	}

	out := make([]float64, f.table.ColCount())
	for colIdx := range f.table.Cols {
		if colIdx == baseIdx {
			continue
		}
		returns := f.relativeReturns(colIdx, baseIdx, startIdx, endIdx)
		out[colIdx] = math.Sqrt(stat.Variance(returns, nil)) * math.Sqrt(timeFactor)
	}
	return out, nil
}

// InfoRatio computes, for every column, the annualized mean relative return
// against the base column divided by the tracking error; the base's own
// entry is zero. Results follow column order.
func (f *Frame) InfoRatio(base ColumnRef, rng timeseries.DateRange, periodsInAYearFixed float64) ([]float64, error) {
	baseIdx, startIdx, endIdx, timeFactor, err := f.relativeSetup(base, rng, periodsInAYearFixed)
	if err != nil {
		return nil, err
	}

	out := make([]float64, f.table.ColCount())
	for colIdx := range f.table.Cols {
		if colIdx == baseIdx {
			continue
		}
		returns := f.relativeReturns(colIdx, baseIdx, startIdx, endIdx)
		ret := stat.Mean(returns, nil) * timeFactor
		vol := math.Sqrt(stat.Variance(returns, nil)) * math.Sqrt(timeFactor)
		out[colIdx] = ret / vol
	}
	return out, nil
}

// CaptureRatio computes, for every column, the ratio of annualized
// compounded growth of the column vs the base during periods the base went
// up (down, or up over down for both); the base's own entry is zero.
func (f *Frame) CaptureRatio(ratio CaptureRatioKind, base ColumnRef, rng timeseries.DateRange, periodsInAYearFixed float64) ([]float64, error) {
	baseIdx, startIdx, endIdx, timeFactor, err := f.relativeSetup(base, rng, periodsInAYearFixed)
	if err != nil {
		return nil, err
	}

	baseReturns := timeseries.PctChange(f.table.Vals[baseIdx][startIdx : endIdx+1])

	out := make([]float64, f.table.ColCount())
	for colIdx := range f.table.Cols {
		if colIdx == baseIdx {
			continue
		}
		colReturns := timeseries.PctChange(f.table.Vals[colIdx][startIdx : endIdx+1])

		switch ratio {
		case CaptureUp:
			out[colIdx] = partitionedGrowthRatio(colReturns, baseReturns, timeFactor, true)
		case CaptureDown:
			out[colIdx] = partitionedGrowthRatio(colReturns, baseReturns, timeFactor, false)
		case CaptureBoth:
			up := partitionedGrowthRatio(colReturns, baseReturns, timeFactor, true)
			down := partitionedGrowthRatio(colReturns, baseReturns, timeFactor, false)
			out[colIdx] = up / down
		default:
			return nil, fmt.Errorf("%w: capture ratio must be up, down or both", timeseries.ErrConstruction)
		}
	}
	return out, nil
}

// partitionedGrowthRatio compares annualized compounded growth of the column
// vs the base over the periods where the base return sign matches
func partitionedGrowthRatio(colReturns, baseReturns []float64, timeFactor float64, up bool) float64 {
	var colPart, basePart []float64
	for idx, baseRet := range baseReturns {
		if (up && baseRet > 0) || (!up && baseRet < 0) {
			colPart = append(colPart, colReturns[idx])
			basePart = append(basePart, baseRet)
		}
	}
	return annualizedGrowth(colPart, timeFactor) / annualizedGrowth(basePart, timeFactor)
}

func annualizedGrowth(returns []float64, timeFactor float64) float64 {
	prod := 1.0
	for _, r := range returns {
		prod *= 1 + r
	}
	return math.Pow(prod, 1/(float64(len(returns))/timeFactor)) - 1
}

// relativeSetup resolves the base column, the range bounds and the
// annualization factor shared by the relative metrics
func (f *Frame) relativeSetup(base ColumnRef, rng timeseries.DateRange, fixed float64) (int, int, int, float64, error) {
	baseIdx, err := base.resolve(f.table)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	startIdx, endIdx, err := f.rangeBounds(rng)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	timeFactor, err := f.rangeTimeFactor(baseIdx, startIdx, endIdx, fixed)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return baseIdx, startIdx, endIdx, timeFactor, nil
}

// relativeReturns computes the period returns of the capital-based relative
// series 1 + long - short over the row bounds
func (f *Frame) relativeReturns(longIdx, shortIdx, startIdx, endIdx int) []float64 {
	relative := make([]float64, endIdx-startIdx+1)
	for idx := range relative {
		relative[idx] = 1 + f.table.Vals[longIdx][startIdx+idx] - f.table.Vals[shortIdx][startIdx+idx]
	}
	return timeseries.PctChange(relative)
}

// CorrelMatrix computes the pairwise Pearson correlation of the columns'
// simple returns; the result follows column order with a unit diagonal
func (f *Frame) CorrelMatrix() [][]float64 {
	returns := make([][]float64, f.table.ColCount())
	for colIdx := range f.table.Cols {
		returns[colIdx] = timeseries.PctChange(f.table.Vals[colIdx])
	}

	matrix := make([][]float64, len(returns))
	for i := range returns {
		matrix[i] = make([]float64, len(returns))
		matrix[i][i] = 1
		for j := 0; j < i; j++ {
			corr := stat.Correlation(returns[i], returns[j], nil)
			matrix[i][j] = corr
			matrix[j][i] = corr
		}
	}
	return matrix
}
