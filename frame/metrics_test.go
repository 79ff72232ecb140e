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

package frame_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-timeseries/dataframe"
	"github.com/penny-vault/pv-timeseries/frame"
	"github.com/penny-vault/pv-timeseries/timeseries"
)

// returnSeries builds a Return-kind series directly from period returns
func returnSeries(label string, start time.Time, returns ...float64) *timeseries.TimeSeries {
	dates := make([]time.Time, len(returns))
	for idx := range returns {
		dates[idx] = start.AddDate(0, 0, idx)
	}
	ts, err := timeseries.New(label, "SEK", dataframe.Return, dates, returns)
	Expect(err).To(BeNil())
	return ts
}

var _ = Describe("Cross-series metrics", func() {
	var start time.Time

	BeforeEach(func() {
		start = day(2023, time.January, 2)
	})

	Context("beta", func() {
		It("doubles when log moves are exactly twice the market's", func() {
			// squares of the market values make the log returns exactly 2x
			f, err := frame.New(
				dailySeries("ASSET", start, 1, 1.21, 1.1025, 1.44),
				dailySeries("MARKET", start, 1, 1.1, 1.05, 1.2),
			)
			Expect(err).To(BeNil())

			beta, err := f.Beta(frame.ByPosition(0), frame.ByPosition(1))
			Expect(err).To(BeNil())
			Expect(beta).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("uses raw values when every column is a return series", func() {
			f, err := frame.New(
				returnSeries("ASSET", start, 0.02, -0.04, 0.06, 0.02),
				returnSeries("MARKET", start, 0.01, -0.02, 0.03, 0.01),
			)
			Expect(err).To(BeNil())

			beta, err := f.Beta(frame.ByPosition(0), frame.ByPosition(1))
			Expect(err).To(BeNil())
			Expect(beta).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("fails on an unknown column reference", func() {
			f, err := frame.New(dailySeries("ONLY", start, 1, 2, 3))
			Expect(err).To(BeNil())

			_, err = f.Beta(frame.ByColumn("MISSING", dataframe.Price), frame.ByPosition(0))
			Expect(err).To(MatchError(dataframe.ErrDimension))
		})
	})

	Context("jensen alpha", func() {
		It("vanishes when the asset is the market", func() {
			f, err := frame.New(
				dailySeries("ASSET", start, 1, 1.1, 1.05, 1.2),
				dailySeries("MARKET", start, 1, 1.1, 1.05, 1.2),
			)
			Expect(err).To(BeNil())

			alpha, err := f.JensenAlpha(frame.ByPosition(0), frame.ByPosition(1), 0.01)
			Expect(err).To(BeNil())
			Expect(alpha).To(BeNumerically("~", 0.0, 1e-12))
		})
	})

	Context("tracking error and information ratio", func() {
		It("is zero against an identical column and positive against a diverging one", func() {
			f, err := frame.New(
				dailySeries("BASE", start, 1, 1.01, 1.02, 1.03),
				dailySeries("TWIN", start, 1, 1.01, 1.02, 1.03),
				dailySeries("DIVERGE", start, 1, 1.02, 1.01, 1.05),
			)
			Expect(err).To(BeNil())

			te, err := f.TrackingError(frame.ByPosition(0), timeseries.DateRange{}, 252)
			Expect(err).To(BeNil())
			Expect(te).To(HaveLen(3))
			Expect(te[0]).To(Equal(0.0))
			Expect(te[1]).To(BeNumerically("~", 0.0, 1e-12))
			Expect(te[2]).To(BeNumerically(">", 0.0))
		})

		It("is positive for a column that steadily outperforms the base", func() {
			f, err := frame.New(
				dailySeries("BASE", start, 1, 1.01, 1.02, 1.03, 1.04),
				dailySeries("WINNER", start, 1, 1.03, 1.06, 1.09, 1.12),
			)
			Expect(err).To(BeNil())

			ir, err := f.InfoRatio(frame.ByPosition(0), timeseries.DateRange{}, 252)
			Expect(err).To(BeNil())
			Expect(ir[0]).To(Equal(0.0))
			Expect(ir[1]).To(BeNumerically(">", 0.0))
		})
	})

	Context("capture ratios", func() {
		var f *frame.Frame

		BeforeEach(func() {
			var err error
			// asset returns are exactly double the base's in both directions
			f, err = frame.New(
				seriesFromReturns("ASSET", start, 0, 0.2, -0.2, 0.2, -0.2),
				seriesFromReturns("BASE", start, 0, 0.1, -0.1, 0.1, -0.1),
			)
			Expect(err).To(BeNil())
		})

		It("captures twice the upside", func() {
			out, err := f.CaptureRatio(frame.CaptureUp, frame.ByPosition(1), timeseries.DateRange{}, 1)
			Expect(err).To(BeNil())
			Expect(out[0]).To(BeNumerically("~", 2.0, 1e-9))
			Expect(out[1]).To(Equal(0.0))
		})

		It("captures twice the downside", func() {
			out, err := f.CaptureRatio(frame.CaptureDown, frame.ByPosition(1), timeseries.DateRange{}, 1)
			Expect(err).To(BeNil())
			Expect(out[0]).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("balances the two into a ratio of one", func() {
			out, err := f.CaptureRatio(frame.CaptureBoth, frame.ByPosition(1), timeseries.DateRange{}, 1)
			Expect(err).To(BeNil())
			Expect(out[0]).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("rejects an unknown ratio kind", func() {
			_, err := f.CaptureRatio(frame.CaptureRatioKind("sideways"), frame.ByPosition(1), timeseries.DateRange{}, 1)
			Expect(err).To(MatchError(timeseries.ErrConstruction))
		})
	})

	Context("correlation matrix", func() {
		It("finds mirrored return paths perfectly anti-correlated", func() {
			f, err := frame.New(
				seriesFromReturns("UP", start, 0, 0.1, -0.1, 0.05),
				seriesFromReturns("DOWN", start, 0, -0.1, 0.1, -0.05),
			)
			Expect(err).To(BeNil())

			matrix := f.CorrelMatrix()
			Expect(matrix[0][0]).To(Equal(1.0))
			Expect(matrix[1][1]).To(Equal(1.0))
			Expect(matrix[0][1]).To(BeNumerically("~", -1.0, 1e-9))
			Expect(matrix[1][0]).To(Equal(matrix[0][1]))
		})
	})
})

var _ = Describe("EWMA risk", func() {
	var (
		start time.Time
		f     *frame.Frame
	)

	BeforeEach(func() {
		start = day(2023, time.January, 2)
		var err error
		f, err = frame.New(
			dailySeries("A", start, 1, 1.01, 1.02, 1.005, 1.015, 1.02),
			dailySeries("B", start, 1, 1.01, 1.02, 1.005, 1.015, 1.02),
		)
		Expect(err).To(BeNil())
	})

	It("seeds both volatilities from the first log returns", func() {
		report, err := f.EWMARisk(frame.ByPosition(0), frame.ByPosition(1), 0.94, 3, 0,
			timeseries.DateRange{}, 252)
		Expect(err).To(BeNil())

		Expect(report.VolFirst.Length()).To(Equal(6))
		Expect(report.VolSecond.Length()).To(Equal(6))
		Expect(report.Correlation.Length()).To(Equal(6))
		Expect(report.VolFirst.Dates).To(Equal(f.DataFrame().Dates))
		Expect(report.VolFirst.Kind).To(Equal(dataframe.EWMA))
		Expect(report.Correlation.Label).To(Equal("A_VS_B"))

		Expect(report.VolFirst.Values[0]).To(BeNumerically("~", 0.0007781, 1e-6))
		Expect(report.VolFirst.Values[1]).To(BeNumerically("~", 0.0386986, 1e-6))
		Expect(report.VolSecond.Values[0]).To(Equal(report.VolFirst.Values[0]))
		Expect(report.VolSecond.Values[5]).To(Equal(report.VolFirst.Values[5]))
	})

	It("keeps the covariance seed in per-period units", func() {
		report, err := f.EWMARisk(frame.ByPosition(0), frame.ByPosition(1), 0.94, 3, 0,
			timeseries.DateRange{}, 252)
		Expect(err).To(BeNil())

		// identical columns make the seed covariance equal the seed variance,
		// so the first correlation collapses to 1/(2*252)
		Expect(report.Correlation.Values[0]).To(BeNumerically("~", 1.0/504.0, 1e-9))
		Expect(report.Correlation.Values[1]).To(BeNumerically("~", 0.49981, 1e-4))
	})

	It("selects the standard decay and chunk when given zeros", func() {
		values := make([]float64, 30)
		v := 1.0
		for idx := range values {
			v *= 1.001
			values[idx] = v
		}
		wide, err := frame.New(
			dailySeries("A", start, values...),
			dailySeries("B", start, values...),
		)
		Expect(err).To(BeNil())

		report, err := wide.EWMARisk(frame.ByPosition(0), frame.ByPosition(1), 0, 0, 0,
			timeseries.DateRange{}, 0)
		Expect(err).To(BeNil())
		Expect(report.VolFirst.Length()).To(Equal(30))
	})

	It("rejects a day chunk larger than the available returns", func() {
		_, err := f.EWMARisk(frame.ByPosition(0), frame.ByPosition(1), 0.94, 10, 0,
			timeseries.DateRange{}, 252)
		Expect(err).To(MatchError(dataframe.ErrDimension))
	})
})

var _ = Describe("Rolling pair statistics", func() {
	var start time.Time

	BeforeEach(func() {
		start = day(2023, time.January, 2)
	})

	Context("rolling beta and correlation of identical columns", func() {
		var f *frame.Frame

		BeforeEach(func() {
			var err error
			f, err = frame.New(
				seriesFromReturns("A", start, 0, 0.01, -0.01, 0.01, -0.01, 0.01),
				seriesFromReturns("B", start, 0, 0.01, -0.01, 0.01, -0.01, 0.01),
			)
			Expect(err).To(BeNil())
		})

		It("pins every rolling beta window at one", func() {
			rolling, err := f.RollingBeta(frame.ByPosition(0), frame.ByPosition(1), 3)
			Expect(err).To(BeNil())

			Expect(rolling.Length()).To(Equal(3))
			Expect(rolling.FirstDate()).To(Equal(day(2023, time.January, 5)))
			Expect(rolling.Kind).To(Equal(dataframe.Beta))
			Expect(rolling.Label).To(Equal("A / B"))
			for _, v := range rolling.Values {
				Expect(v).To(BeNumerically("~", 1.0, 1e-9))
			}
		})

		It("pins every rolling correlation window at one", func() {
			rolling, err := f.RollingCorr(frame.ByPosition(0), frame.ByPosition(1), 3)
			Expect(err).To(BeNil())

			Expect(rolling.Length()).To(Equal(3))
			Expect(rolling.Kind).To(Equal(dataframe.RollingCorr))
			Expect(rolling.Label).To(Equal("A_VS_B"))
			for _, v := range rolling.Values {
				Expect(v).To(BeNumerically("~", 1.0, 1e-9))
			}
		})
	})

	It("keeps the rolling information ratio positive for a steady outperformer", func() {
		f, err := frame.New(
			dailySeries("WINNER", start, 1, 1.03, 1.06, 1.09, 1.12),
			dailySeries("BASE", start, 1, 1.01, 1.02, 1.03, 1.04),
		)
		Expect(err).To(BeNil())

		rolling, err := f.RollingInfoRatio(frame.ByPosition(0), frame.ByPosition(1), 2, 252)
		Expect(err).To(BeNil())

		Expect(rolling.Length()).To(Equal(3))
		Expect(rolling.FirstDate()).To(Equal(day(2023, time.January, 4)))
		Expect(rolling.Kind).To(Equal(dataframe.InformationRatio))
		Expect(rolling.Label).To(Equal("WINNER / BASE"))
		for _, v := range rolling.Values {
			Expect(v).To(BeNumerically(">", 0.0))
		}
	})

	It("rejects windows that do not fit the derived returns", func() {
		f, err := frame.New(
			dailySeries("A", start, 1, 2, 3, 4, 5),
			dailySeries("B", start, 1, 2, 3, 4, 5),
		)
		Expect(err).To(BeNil())

		_, err = f.RollingBeta(frame.ByPosition(0), frame.ByPosition(1), 1)
		Expect(err).To(MatchError(dataframe.ErrDimension))

		_, err = f.RollingCorr(frame.ByPosition(0), frame.ByPosition(1), 5)
		Expect(err).To(MatchError(dataframe.ErrDimension))
	})
})
