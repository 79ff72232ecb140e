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
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/timeseries"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Optimizer computes portfolio weights from an aligned return matrix, one
// row of returns per constituent. Risk-parity and mean-variance solvers
// implement this contract externally; the frame only validates the result.
type Optimizer interface {
	Optimize(dates []time.Time, returns [][]float64) ([]float64, error)
}

// EqualWeights assigns every constituent the same weight summing to one
func (f *Frame) EqualWeights() []float64 {
	weights := make([]float64, f.ItemCount())
	for idx := range weights {
		weights[idx] = 1.0 / float64(f.ItemCount())
	}
	return weights
}

// InverseVolWeights weights each constituent proportionally to the inverse
// of its whole-sample return volatility, normalized to sum to one
func (f *Frame) InverseVolWeights() ([]float64, error) {
	weights := make([]float64, f.ItemCount())
	for idx, returns := range f.returnMatrix() {
		sigma := math.Sqrt(stat.Variance(returns, nil))
		if sigma == 0 || math.IsNaN(sigma) {
			return nil, fmt.Errorf("%w: constituent %s has no return dispersion",
				dataframe.ErrDimension, f.table.Cols[idx].Label)
		}
		weights[idx] = 1 / sigma
	}
	total := floats.Sum(weights)
	for idx := range weights {
		weights[idx] /= total
	}
	return weights, nil
}

// OptimizeWeights delegates weight calculation to an external optimizer and
// validates the returned vector's length and finiteness
func (f *Frame) OptimizeWeights(optimizer Optimizer) ([]float64, error) {
	weights, err := optimizer.Optimize(cloneDates(f.table.Dates), f.returnMatrix())
	if err != nil {
		return nil, err
	}
	if len(weights) != f.ItemCount() {
		return nil, fmt.Errorf("%w: optimizer returned %d weights for %d constituents",
			dataframe.ErrDimension, len(weights), f.ItemCount())
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: optimizer returned a non-finite weight", dataframe.ErrDimension)
		}
	}
	return weights, nil
}

// MakePortfolio folds the constituents into one basket series by weighting
// their per-period returns and compounding the result from 1.0. The frame's
// Weights must be set and match the constituent count.
func (f *Frame) MakePortfolio(name string) (*timeseries.TimeSeries, error) {
	if len(f.Weights) != f.ItemCount() {
		return nil, fmt.Errorf("%w: %d weights for %d constituents",
			dataframe.ErrDimension, len(f.Weights), f.ItemCount())
	}

	returns := f.returnMatrix()
	values := make([]float64, f.table.Len())
	cum := 1.0
	values[0] = cum
	for rowIdx := 1; rowIdx < f.table.Len(); rowIdx++ {
		weighted := 0.0
		for colIdx, w := range f.Weights {
			weighted += w * returns[colIdx][rowIdx-1]
		}
		cum *= 1 + weighted
		values[rowIdx] = cum
	}

	return &timeseries.TimeSeries{
		Label:    name,
		Currency: f.Constituents[0].Currency,
		Kind:     dataframe.Price,
		Dates:    cloneDates(f.table.Dates),
		Values:   values,
	}, nil
}

// returnMatrix derives one row of simple returns per column; columns
// already tagged as returns contribute their values past the first row
// unchanged
func (f *Frame) returnMatrix() [][]float64 {
	returns := make([][]float64, f.table.ColCount())
	for colIdx, col := range f.table.Cols {
		if col.Kind == dataframe.Return {
			row := make([]float64, f.table.Len()-1)
			copy(row, f.table.Vals[colIdx][1:])
			returns[colIdx] = row
		} else {
			returns[colIdx] = timeseries.PctChange(f.table.Vals[colIdx])
		}
	}
	return returns
}
