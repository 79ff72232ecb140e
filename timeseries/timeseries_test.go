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

package timeseries_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/timeseries"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// dailySeries builds a price series on consecutive calendar days
func dailySeries(start time.Time, values ...float64) *timeseries.TimeSeries {
	dates := make([]time.Time, len(values))
	for idx := range values {
		dates[idx] = start.AddDate(0, 0, idx)
	}
	ts, err := timeseries.New("TEST", "SEK", dataframe.Price, dates, values)
	Expect(err).To(BeNil())
	return ts
}

// priceFromReturns compounds simple returns into a price series on the given
// dates; the first return must be zero
func priceFromReturns(dates []time.Time, returns []float64) *timeseries.TimeSeries {
	values := make([]float64, len(returns))
	values[0] = 1.0
	for idx := 1; idx < len(returns); idx++ {
		values[idx] = values[idx-1] * (1 + returns[idx])
	}
	ts, err := timeseries.New("TEST", "SEK", dataframe.Price, dates, values)
	Expect(err).To(BeNil())
	return ts
}

func yearEndDates(firstYear, lastYear int) []time.Time {
	dates := make([]time.Time, 0, lastYear-firstYear+1)
	for year := firstYear; year <= lastYear; year++ {
		dates = append(dates, day(year, time.December, 31))
	}
	return dates
}

func monthEndDates(year int) []time.Time {
	dates := make([]time.Time, 12)
	for month := time.January; month <= time.December; month++ {
		dates[month-1] = day(year, month, 1).AddDate(0, 1, -1)
	}
	return dates
}

var _ = Describe("TimeSeries construction", func() {
	Context("when input is malformed", func() {
		It("rejects empty input", func() {
			_, err := timeseries.New("A", "SEK", dataframe.Price, nil, nil)
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})

		It("rejects mismatched lengths", func() {
			_, err := timeseries.New("A", "SEK", dataframe.Price,
				[]time.Time{day(2023, time.January, 2)}, []float64{1, 2})
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})

		It("rejects a malformed currency code", func() {
			_, err := timeseries.New("A", "KRONOR", dataframe.Price,
				[]time.Time{day(2023, time.January, 2)}, []float64{1})
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})

		It("rejects non-increasing dates", func() {
			_, err := timeseries.New("A", "SEK", dataframe.Price,
				[]time.Time{day(2023, time.January, 3), day(2023, time.January, 3)},
				[]float64{1, 2})
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})

		It("rejects non-finite values", func() {
			_, err := timeseries.New("A", "SEK", dataframe.Price,
				[]time.Time{day(2023, time.January, 2), day(2023, time.January, 3)},
				[]float64{1, math.NaN()})
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})
	})

	Context("when input is valid", func() {
		var ts *timeseries.TimeSeries

		BeforeEach(func() {
			var err error
			ts, err = timeseries.New("FUND", "SEK", dataframe.Price,
				[]time.Time{day(2022, time.July, 1), day(2023, time.July, 1)},
				[]float64{1.0, 1.1})
			Expect(err).To(BeNil())
		})

		It("normalizes dates to midnight UTC", func() {
			withClock, err := timeseries.New("FUND", "SEK", dataframe.Price,
				[]time.Time{time.Date(2023, time.July, 1, 17, 30, 0, 0, time.UTC)},
				[]float64{1.0})
			Expect(err).To(BeNil())
			Expect(withClock.Dates[0]).To(Equal(day(2023, time.July, 1)))
		})

		It("reports span and frequency", func() {
			Expect(ts.Length()).To(Equal(2))
			Expect(ts.FirstDate()).To(Equal(day(2022, time.July, 1)))
			Expect(ts.LastDate()).To(Equal(day(2023, time.July, 1)))
			Expect(ts.SpanOfDays()).To(Equal(365))
			Expect(ts.YearFrac()).To(BeNumerically("~", 365.0/365.25, 1e-9))
		})

		It("clones deeply", func() {
			clone := ts.Clone()
			clone.Values[0] = 99
			Expect(ts.Values[0]).To(Equal(1.0))
		})
	})
})

var _ = Describe("ResolveRange", func() {
	var dates []time.Time

	BeforeEach(func() {
		dates = monthEndDates(2023)
	})

	It("covers the whole series for a zero-value range", func() {
		start, end, err := timeseries.ResolveRange(dates, timeseries.DateRange{})
		Expect(err).To(BeNil())
		Expect(start).To(Equal(day(2023, time.January, 31)))
		Expect(end).To(Equal(day(2023, time.December, 31)))
	})

	It("snaps the start backward onto the index", func() {
		start, end, err := timeseries.ResolveRange(dates, timeseries.DateRange{
			From: day(2023, time.March, 15),
		})
		Expect(err).To(BeNil())
		Expect(start).To(Equal(day(2023, time.February, 28)))
		Expect(end).To(Equal(day(2023, time.December, 31)))
	})

	It("snaps the end forward onto the index", func() {
		start, end, err := timeseries.ResolveRange(dates, timeseries.DateRange{
			To: day(2023, time.June, 10),
		})
		Expect(err).To(BeNil())
		Expect(start).To(Equal(day(2023, time.January, 31)))
		Expect(end).To(Equal(day(2023, time.June, 30)))
	})

	It("anchors a months offset at the last observation", func() {
		start, end, err := timeseries.ResolveRange(dates, timeseries.DateRange{MonthsOffset: 3})
		Expect(err).To(BeNil())
		Expect(start).To(Equal(day(2023, time.September, 30)))
		Expect(end).To(Equal(day(2023, time.December, 31)))
	})

	It("fails when the months offset reaches before the series", func() {
		_, _, err := timeseries.ResolveRange(dates, timeseries.DateRange{MonthsOffset: 12})
		Expect(err).To(MatchError(timeseries.ErrRange))
	})

	It("fails on bounds outside the index span", func() {
		_, _, err := timeseries.ResolveRange(dates, timeseries.DateRange{
			From: day(2022, time.December, 1),
		})
		Expect(err).To(MatchError(timeseries.ErrRange))

		_, _, err = timeseries.ResolveRange(dates, timeseries.DateRange{
			To: day(2024, time.January, 15),
		})
		Expect(err).To(MatchError(timeseries.ErrRange))
	})

	It("fails on inverted bounds", func() {
		_, _, err := timeseries.ResolveRange(dates, timeseries.DateRange{
			From: day(2023, time.August, 31),
			To:   day(2023, time.March, 31),
		})
		Expect(err).To(MatchError(timeseries.ErrRange))
	})
})

var _ = Describe("TimeFactor", func() {
	It("annualizes the observation count over the span", func() {
		factor, err := timeseries.TimeFactor(day(2023, time.January, 31), day(2023, time.December, 31), 12, 0)
		Expect(err).To(BeNil())
		Expect(factor).To(BeNumerically("~", 13.12275, 1e-5))
	})

	It("short-circuits on a fixed override", func() {
		factor, err := timeseries.TimeFactor(day(2023, time.January, 31), day(2023, time.December, 31), 12, 252)
		Expect(err).To(BeNil())
		Expect(factor).To(Equal(252.0))
	})

	It("fails on a zero-day span", func() {
		_, err := timeseries.TimeFactor(day(2023, time.June, 30), day(2023, time.June, 30), 1, 0)
		Expect(err).To(MatchError(timeseries.ErrRange))
	})
})

var _ = Describe("Quantile", func() {
	values := []float64{1, 2, 3, 4, 10}

	DescribeTable("interpolation between order statistics",
		func(q float64, interpolation timeseries.Interpolation, expected float64) {
			quantile, err := timeseries.Quantile(values, q, interpolation)
			Expect(err).To(BeNil())
			Expect(quantile).To(BeNumerically("~", expected, 1e-9))
		},
		Entry("exact rank is interpolation-independent (lower)", 0.25, timeseries.Lower, 2.0),
		Entry("exact rank is interpolation-independent (linear)", 0.25, timeseries.Linear, 2.0),
		Entry("lower", 0.9, timeseries.Lower, 4.0),
		Entry("higher", 0.9, timeseries.Higher, 10.0),
		Entry("nearest", 0.9, timeseries.Nearest, 10.0),
		Entry("nearest resolves a half index to the even neighbor", 0.125, timeseries.Nearest, 1.0),
		Entry("linear", 0.9, timeseries.Linear, 7.6),
		Entry("midpoint", 0.9, timeseries.Midpoint, 7.0),
	)

	It("ignores NaN values", func() {
		quantile, err := timeseries.Quantile([]float64{3, math.NaN(), 1, 2}, 0.5, timeseries.Linear)
		Expect(err).To(BeNil())
		Expect(quantile).To(Equal(2.0))
	})

	It("rejects an unknown interpolation", func() {
		_, err := timeseries.Quantile(values, 0.5, timeseries.Interpolation("cubic"))
		Expect(err).To(MatchError(timeseries.ErrUnsupportedInterpolation))
	})
})
