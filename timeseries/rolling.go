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

	"github.com/penny-vault/pv-timeseries/dataframe"
	"gonum.org/v1/gonum/stat"
)

// checkWindow validates a rolling window size against the number of
// observations it will slide over
func checkWindow(observations, available int) error {
	if observations < 2 || observations > available {
		return fmt.Errorf("%w: rolling window of %d observations over %d available",
			dataframe.ErrDimension, observations, available)
	}
	return nil
}

// RollingVol computes annualized volatility over a sliding window of simple
// returns; output starts at the first date with a full window
func (ts *TimeSeries) RollingVol(observations int, periodsInAYearFixed float64) (*TimeSeries, error) {
	returns := PctChange(ts.Values)
	if err := checkWindow(observations, len(returns)); err != nil {
		return nil, err
	}

	timeFactor := periodsInAYearFixed
	if timeFactor <= 0 {
		timeFactor = ts.PeriodsInAYear()
	}

	count := len(returns) - observations + 1
	dates := cloneDates(ts.Dates[len(ts.Dates)-count:])
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		values[idx] = sampleStd(returns[idx:idx+observations]) * math.Sqrt(timeFactor)
	}

	return ts.derive(dataframe.RollingVol, dates, values), nil
}

// RollingReturn computes the sum of simple returns over a sliding window
func (ts *TimeSeries) RollingReturn(observations int) (*TimeSeries, error) {
	returns := PctChange(ts.Values)
	if err := checkWindow(observations, len(returns)); err != nil {
		return nil, err
	}

	count := len(returns) - observations + 1
	dates := cloneDates(ts.Dates[len(ts.Dates)-count:])
	values := make([]float64, count)

	rollSum := 0.0
	for idx := 0; idx < observations; idx++ {
		rollSum += returns[idx]
	}
	values[0] = rollSum
	for idx := 1; idx < count; idx++ {
		rollSum += returns[idx+observations-1] - returns[idx-1]
		values[idx] = rollSum
	}

	return ts.derive(dataframe.RollingReturn, dates, values), nil
}

// RollingVaRDown computes downside Value-at-Risk over a sliding window of
// values
func (ts *TimeSeries) RollingVaRDown(level float64, observations int, interpolation Interpolation) (*TimeSeries, error) {
	if err := checkWindow(observations, len(ts.Values)); err != nil {
		return nil, err
	}

	count := len(ts.Values) - observations + 1
	dates := cloneDates(ts.Dates[observations-1:])
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		v, err := VaRDownCalc(ts.Values[idx:idx+observations], level, interpolation)
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}

	return ts.derive(dataframe.RollingVaR, dates, values), nil
}

// RollingCVaRDown computes downside Conditional Value-at-Risk over a sliding
// window of values
func (ts *TimeSeries) RollingCVaRDown(level float64, observations int) (*TimeSeries, error) {
	if err := checkWindow(observations, len(ts.Values)); err != nil {
		return nil, err
	}

	count := len(ts.Values) - observations + 1
	dates := cloneDates(ts.Dates[observations-1:])
	values := make([]float64, count)
	for idx := 0; idx < count; idx++ {
		values[idx] = CVaRDownCalc(ts.Values[idx:idx+observations], level)
	}

	return ts.derive(dataframe.RollingCVaR, dates, values), nil
}

// EWMAVolatility computes the recursive exponentially weighted volatility of
// the series' log returns. The recursion is seeded with the sample standard
// deviation of the first dayChunk-1 returns. Zero lmbda and dayChunk select
// the 0.94 / 11 defaults.
func (ts *TimeSeries) EWMAVolatility(lmbda float64, dayChunk, deltaDegreesOfFreedom int, rng DateRange, periodsInAYearFixed float64) (*TimeSeries, error) {
	if lmbda == 0 {
		lmbda = 0.94
	}
	if dayChunk == 0 {
		dayChunk = 11
	}

	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return nil, err
	}
	timeFactor, err := ts.timeFactor(startIdx, endIdx, periodsInAYearFixed)
	if err != nil {
		return nil, err
	}

	returns := LogChange(ts.Values[startIdx : endIdx+1])
	if dayChunk-1 > len(returns) {
		return nil, fmt.Errorf("%w: day chunk of %d over %d returns",
			dataframe.ErrDimension, dayChunk, len(returns))
	}

	values := make([]float64, len(returns)+1)
	values[0] = stdDDOF(returns[:dayChunk-1], deltaDegreesOfFreedom) * math.Sqrt(timeFactor)
	for idx, r := range returns {
		values[idx+1] = ewmaStep(r, values[idx], timeFactor, lmbda)
	}

	return ts.derive(dataframe.EWMA, cloneDates(ts.Dates[startIdx:endIdx+1]), values), nil
}

// ewmaStep advances an EWMA volatility state by one return observation
func ewmaStep(ret, prev, timeFactor, lmbda float64) float64 {
	return math.Sqrt(ret*ret*timeFactor*(1-lmbda) + prev*prev*lmbda)
}

// stdDDOF computes the standard deviation with the given degrees-of-freedom
// adjustment (0 for population, 1 for sample)
func stdDDOF(values []float64, ddof int) float64 {
	mean := stat.Mean(values, nil)
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)-ddof))
}
