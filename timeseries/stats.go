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
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Interpolation selects how Quantile resolves a probability that falls
// between two order statistics.
type Interpolation string

const (
	Lower    Interpolation = "lower"
	Higher   Interpolation = "higher"
	Nearest  Interpolation = "nearest"
	Linear   Interpolation = "linear"
	Midpoint Interpolation = "midpoint"
)

// PctChange computes simple period returns; output length is one less than
// the input. NaN inputs propagate into the adjacent returns.
func PctChange(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for idx := range out {
		out[idx] = values[idx+1]/values[idx] - 1
	}
	return out
}

// LogChange computes log period returns; output length is one less than the
// input.
func LogChange(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for idx := range out {
		out[idx] = math.Log(values[idx+1] / values[idx])
	}
	return out
}

// Quantile computes the q quantile (0 <= q <= 1) of the values with the
// requested interpolation between order statistics. NaN values are dropped
// before ranking.
func Quantile(values []float64, q float64, interpolation Interpolation) (float64, error) {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return math.NaN(), nil
	}

	sorted := make([]float64, len(clean))
	copy(sorted, clean)
	sort.Float64s(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))

	switch interpolation {
	case Lower:
		return sorted[lo], nil
	case Higher:
		return sorted[hi], nil
	case Nearest:
		// half indices resolve to the even neighbor
		return sorted[int(math.RoundToEven(h))], nil
	case Midpoint:
		return (sorted[lo] + sorted[hi]) / 2, nil
	case Linear:
		return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo]), nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnsupportedInterpolation, interpolation)
}

// CVaRFromReturns computes downside Conditional Value-at-Risk as the mean of
// the worst ceil((1-level)*N) returns.
func CVaRFromReturns(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	tail := int(math.Ceil((1 - level) * float64(len(sorted))))
	if tail < 1 {
		tail = 1
	}

	return stat.Mean(sorted[:tail], nil)
}

// CVaRDownCalc computes downside CVaR directly from a window of values,
// deriving simple returns first. NaN values are zeroed before the return
// computation so a gap contributes a flat period rather than poisoning the
// tail average.
func CVaRDownCalc(values []float64, level float64) float64 {
	return CVaRFromReturns(PctChange(zeroNaN(values)), level)
}

// VaRDownCalc computes downside Value-at-Risk directly from a window of
// values as the (1-level) quantile of their simple returns.
func VaRDownCalc(values []float64, level float64, interpolation Interpolation) (float64, error) {
	return Quantile(PctChange(zeroNaN(values)), 1-level, interpolation)
}

// Drawdowns converts a value sequence into a drawdown sequence: each element
// is value/running-max - 1. NaN gaps are forward-filled first; a leading
// all-NaN prefix becomes -Inf so the running max never divides by zero.
func Drawdowns(values []float64) []float64 {
	filled := make([]float64, len(values))
	last := math.NaN()
	for idx, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		if math.IsNaN(last) {
			filled[idx] = math.Inf(-1)
		} else {
			filled[idx] = last
		}
	}

	out := make([]float64, len(filled))
	runningMax := math.Inf(-1)
	for idx, v := range filled {
		if v > runningMax {
			runningMax = v
		}
		out[idx] = v/runningMax - 1
	}
	return out
}

// sampleStd is the ddof=1 standard deviation of the values
func sampleStd(values []float64) float64 {
	return math.Sqrt(stat.Variance(values, nil))
}

// populationMoment computes the nth central moment without bias correction
func populationMoment(values []float64, n float64) float64 {
	mean := stat.Mean(values, nil)
	sum := 0.0
	for _, v := range values {
		sum += math.Pow(v-mean, n)
	}
	return sum / float64(len(values))
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func zeroNaN(values []float64) []float64 {
	out := make([]float64, len(values))
	for idx, v := range values {
		if math.IsNaN(v) {
			out[idx] = 0
		} else {
			out[idx] = v
		}
	}
	return out
}
