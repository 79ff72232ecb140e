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
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ValueRet computes the simple return over the range
func (ts *TimeSeries) ValueRet(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}
	if ts.Values[startIdx] == 0 {
		return 0, fmt.Errorf("%w: start value is zero at %s", ErrNonPositiveValue,
			ts.Dates[startIdx].Format("2006-01-02"))
	}

	return ts.Values[endIdx]/ts.Values[startIdx] - 1, nil
}

// LogRet computes the log return over the range
func (ts *TimeSeries) LogRet(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}
	if ts.Values[startIdx] == 0 {
		return 0, fmt.Errorf("%w: start value is zero at %s", ErrNonPositiveValue,
			ts.Dates[startIdx].Format("2006-01-02"))
	}

	return math.Log(ts.Values[endIdx] / ts.Values[startIdx]), nil
}

// GeoRet computes the geometric annualized return (CAGR) over the range.
// Zero or negative boundary values cannot be compounded and return
// ErrNonPositiveValue.
func (ts *TimeSeries) GeoRet(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	if ts.Values[startIdx] <= 0 || ts.Values[endIdx] <= 0 {
		return 0, fmt.Errorf("%w: geometric return requires positive boundary values", ErrNonPositiveValue)
	}

	fraction := float64(daysBetween(ts.Dates[startIdx], ts.Dates[endIdx])) / 365.25
	if fraction <= 0 {
		return 0, fmt.Errorf("%w: cannot annualize over a zero-day span", ErrRange)
	}

	return math.Pow(ts.Values[endIdx]/ts.Values[startIdx], 1/fraction) - 1, nil
}

// ArithmeticRet computes the annualized arithmetic mean of log returns
func (ts *TimeSeries) ArithmeticRet(rng DateRange, periodsInAYearFixed float64) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}
	timeFactor, err := ts.timeFactor(startIdx, endIdx, periodsInAYearFixed)
	if err != nil {
		return 0, err
	}

	return stat.Mean(LogChange(ts.Values[startIdx:endIdx+1]), nil) * timeFactor, nil
}

// Vol computes the annualized sample standard deviation of simple returns
func (ts *TimeSeries) Vol(rng DateRange, periodsInAYearFixed float64) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}
	timeFactor, err := ts.timeFactor(startIdx, endIdx, periodsInAYearFixed)
	if err != nil {
		return 0, err
	}

	return sampleStd(PctChange(ts.Values[startIdx:endIdx+1])) * math.Sqrt(timeFactor), nil
}

// DownsideDeviation computes the annualized root-mean-square of returns that
// fall below the per-period minimum accepted return. The divisor is the full
// return count in range, not only the number of shortfalls.
func (ts *TimeSeries) DownsideDeviation(minAcceptedReturn float64, rng DateRange, periodsInAYearFixed float64) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := PctChange(ts.Values[startIdx : endIdx+1])
	howMany := float64(len(returns))

	timeFactor := periodsInAYearFixed
	if timeFactor <= 0 {
		timeFactor, err = TimeFactor(ts.Dates[startIdx], ts.Dates[endIdx], len(returns), 0)
		if err != nil {
			return 0, err
		}
	}

	sumSquares := 0.0
	for _, r := range returns {
		if dev := r - minAcceptedReturn/timeFactor; dev < 0 {
			sumSquares += dev * dev
		}
	}

	return math.Sqrt(sumSquares/howMany) * math.Sqrt(timeFactor), nil
}

// RetVolRatio computes the Sharpe-like ratio of geometric return less the
// riskfree rate over annualized volatility
func (ts *TimeSeries) RetVolRatio(riskfreeRate float64, rng DateRange) (float64, error) {
	geoRet, err := ts.GeoRet(rng)
	if err != nil {
		return 0, err
	}
	vol, err := ts.Vol(rng, 0)
	if err != nil {
		return 0, err
	}

	return (geoRet - riskfreeRate) / vol, nil
}

// SortinoRatio computes geometric return less the riskfree rate over
// downside deviation with a zero minimum accepted return
func (ts *TimeSeries) SortinoRatio(riskfreeRate float64, rng DateRange) (float64, error) {
	geoRet, err := ts.GeoRet(rng)
	if err != nil {
		return 0, err
	}
	downside, err := ts.DownsideDeviation(0, rng, 0)
	if err != nil {
		return 0, err
	}

	return (geoRet - riskfreeRate) / downside, nil
}

// ZScore computes how many standard deviations the latest return in range
// lies from the mean return
func (ts *TimeSeries) ZScore(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := PctChange(ts.Values[startIdx : endIdx+1])
	if len(returns) == 0 {
		return math.NaN(), nil
	}

	return (returns[len(returns)-1] - stat.Mean(returns, nil)) / sampleStd(returns), nil
}

// Skew computes the biased Fisher skewness of simple returns in range
func (ts *TimeSeries) Skew(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := dropNaN(PctChange(ts.Values[startIdx : endIdx+1]))
	m2 := populationMoment(returns, 2)
	m3 := populationMoment(returns, 3)
	return m3 / math.Pow(m2, 1.5), nil
}

// Kurtosis computes the biased Fisher (excess) kurtosis of simple returns in
// range
func (ts *TimeSeries) Kurtosis(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := dropNaN(PctChange(ts.Values[startIdx : endIdx+1]))
	m2 := populationMoment(returns, 2)
	m4 := populationMoment(returns, 4)
	return m4/(m2*m2) - 3, nil
}

// PositiveShare computes the share of simple returns at or above zero
func (ts *TimeSeries) PositiveShare(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := PctChange(ts.Values[startIdx : endIdx+1])
	if len(returns) == 0 {
		return math.NaN(), nil
	}

	pos := 0
	for _, r := range returns {
		if r >= 0 {
			pos++
		}
	}
	return float64(pos) / float64(len(returns)), nil
}

// Worst computes the most negative compounded change over a rolling window
// of the given number of return observations
func (ts *TimeSeries) Worst(observations int, rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	returns := PctChange(ts.Values[startIdx : endIdx+1])
	if observations < 1 || observations > len(returns) {
		return 0, fmt.Errorf("%w: window of %d observations over %d returns",
			dataframe.ErrDimension, observations, len(returns))
	}

	rollSum := 0.0
	for idx := 0; idx < observations; idx++ {
		rollSum += returns[idx]
	}
	worst := rollSum
	for idx := observations; idx < len(returns); idx++ {
		rollSum += returns[idx] - returns[idx-observations]
		if rollSum < worst {
			worst = rollSum
		}
	}

	return worst, nil
}

// VaRDown computes downside Value-at-Risk as the (1-level) quantile of
// simple returns in range
func (ts *TimeSeries) VaRDown(level float64, interpolation Interpolation, rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	return Quantile(PctChange(ts.Values[startIdx:endIdx+1]), 1-level, interpolation)
}

// CVaRDown computes downside Conditional Value-at-Risk over the range
func (ts *TimeSeries) CVaRDown(level float64, rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	return CVaRFromReturns(PctChange(ts.Values[startIdx:endIdx+1]), level), nil
}

// VolFromVaR computes the annualized volatility implied by the downside VaR
// under a normal-returns assumption. With driftAdjust the mean return is
// removed before scaling.
func (ts *TimeSeries) VolFromVaR(level float64, interpolation Interpolation, driftAdjust bool, rng DateRange, periodsInAYearFixed float64) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}
	timeFactor, err := ts.timeFactor(startIdx, endIdx, periodsInAYearFixed)
	if err != nil {
		return 0, err
	}

	varDown, err := ts.VaRDown(level, interpolation, rng)
	if err != nil {
		return 0, err
	}

	zScore := distuv.UnitNormal.Quantile(level)
	if driftAdjust {
		returns := PctChange(ts.Values[startIdx : endIdx+1])
		drift := 0.0
		for _, r := range returns {
			drift += r
		}
		drift /= float64(len(returns) + 1)
		return (-math.Sqrt(timeFactor) / zScore) * (varDown - drift), nil
	}

	return -math.Sqrt(timeFactor) * varDown / zScore, nil
}

// MaxDrawdown computes the largest peak-to-trough decline over the range
func (ts *TimeSeries) MaxDrawdown(rng DateRange) (float64, error) {
	startIdx, endIdx, err := ts.resolveRange(rng)
	if err != nil {
		return 0, err
	}

	maxDrawdown, _ := maxDrawdownWithIndex(ts.Values[startIdx : endIdx+1])
	return maxDrawdown, nil
}

// MaxDrawdownDate returns the date of the deepest drawdown trough
func (ts *TimeSeries) MaxDrawdownDate() time.Time {
	_, troughIdx := maxDrawdownWithIndex(ts.Values)
	return ts.Dates[troughIdx]
}

// MaxDrawdownCalYear computes the worst drawdown within any single calendar
// year
func (ts *TimeSeries) MaxDrawdownCalYear() float64 {
	worst := math.Inf(1)
	yearStart := 0
	for idx := 1; idx <= len(ts.Dates); idx++ {
		if idx == len(ts.Dates) || ts.Dates[idx].Year() != ts.Dates[yearStart].Year() {
			dd, _ := maxDrawdownWithIndex(ts.Values[yearStart:idx])
			if dd < worst {
				worst = dd
			}
			yearStart = idx
		}
	}
	return worst
}

// DrawdownReport describes the deepest drawdown of a series
type DrawdownReport struct {
	MaxDrawdown           float64
	StartOfDrawdown       time.Time
	DateOfBottom          time.Time
	DaysFromStartToBottom int
	AverageFallPerDay     float64
}

// DrawdownDetails locates the deepest drawdown, its trough date and the most
// recent prior date at which the series was at a high watermark
func (ts *TimeSeries) DrawdownDetails() DrawdownReport {
	maxDrawdown, troughIdx := maxDrawdownWithIndex(ts.Values)

	drawdowns := Drawdowns(ts.Values)
	startIdx := troughIdx
	for idx := troughIdx; idx >= 0; idx-- {
		if drawdowns[idx] == 0 {
			startIdx = idx
			break
		}
	}

	duration := daysBetween(ts.Dates[startIdx], ts.Dates[troughIdx])
	return DrawdownReport{
		MaxDrawdown:           maxDrawdown,
		StartOfDrawdown:       ts.Dates[startIdx],
		DateOfBottom:          ts.Dates[troughIdx],
		DaysFromStartToBottom: duration,
		AverageFallPerDay:     maxDrawdown / float64(duration),
	}
}

// ValueRetCalendarPeriod computes the compounded return of all observations
// falling in the given calendar year, or calendar month when month is 1-12
func (ts *TimeSeries) ValueRetCalendarPeriod(year int, month time.Month) float64 {
	returns := PctChange(ts.Values)

	compounded := 1.0
	matched := false
	for idx, r := range returns {
		d := ts.Dates[idx+1]
		if d.Year() != year {
			continue
		}
		if month != 0 && d.Month() != month {
			continue
		}
		compounded *= 1 + r
		matched = true
	}

	if !matched {
		return math.NaN()
	}
	return compounded - 1
}

// maxDrawdownWithIndex returns min(value/running-max)-1 and the index of the
// trough
func maxDrawdownWithIndex(values []float64) (float64, int) {
	runningMax := math.Inf(-1)
	minRatio := math.Inf(1)
	minIdx := 0
	for idx, v := range values {
		if v > runningMax {
			runningMax = v
		}
		if ratio := v / runningMax; ratio < minRatio {
			minRatio = ratio
			minIdx = idx
		}
	}
	return minRatio - 1, minIdx
}
