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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-timeseries/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on drop", func() {
			df = df.Drop(1)
			Expect(df.Len()).To(Equal(0))
		})

		It("returns the zero time for start and end", func() {
			Expect(df.Start().IsZero()).To(BeTrue())
			Expect(df.End().IsZero()).To(BeTrue())
		})
	})

	Context("with a 3x2 dataframe", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			var err error
			df, err = dataframe.New(
				[]time.Time{
					time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC),
				},
				[]dataframe.Column{
					{Label: "Col1", Kind: dataframe.Price},
					{Label: "Col2", Kind: dataframe.Return},
				},
				[][]float64{{1, 2, 3}, {4, 5, 6}},
			)
			Expect(err).To(BeNil())
		})

		It("errors when dimensions do not agree", func() {
			_, err := dataframe.New(df.Dates,
				[]dataframe.Column{{Label: "Col1", Kind: dataframe.Price}},
				[][]float64{{1, 2}})
			Expect(err).To(MatchError(dataframe.ErrDimension))
		})

		It("has expected length and column count", func() {
			Expect(df.Len()).To(Equal(3))
			Expect(df.ColCount()).To(Equal(2))
		})

		It("finds columns by label and kind", func() {
			Expect(df.ColIndex(dataframe.Column{Label: "Col2", Kind: dataframe.Return})).To(Equal(1))
			Expect(df.ColIndex(dataframe.Column{Label: "Col2", Kind: dataframe.Price})).To(Equal(-1))
			Expect(df.ColIndexByLabel("Col2")).To(Equal(1))
			Expect(df.ColIndexByLabel("missing")).To(Equal(-1))
		})

		It("copies without sharing memory", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 99
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("drops rows containing the requested value", func() {
			df = df.Drop(2)
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{1, 3}))
			Expect(df.Vals[1]).To(Equal([]float64{4, 6}))
		})

		It("drops rows containing NaN", func() {
			df.Vals[1][1] = math.NaN()
			df = df.Drop(math.NaN())
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{1, 3}))
		})

		It("returns the last row", func() {
			last := df.Last()
			Expect(last.Len()).To(Equal(1))
			Expect(last.Vals[0][0]).To(Equal(3.0))
			Expect(last.Vals[1][0]).To(Equal(6.0))
			Expect(last.Dates[0]).To(Equal(time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)))
		})

		It("inserts a column", func() {
			df, err := df.Insert(dataframe.Column{Label: "Col3", Kind: dataframe.Drawdown}, []float64{7, 8, 9})
			Expect(err).To(BeNil())
			Expect(df.ColCount()).To(Equal(3))
		})

		It("rejects a column of the wrong length", func() {
			_, err := df.Insert(dataframe.Column{Label: "Col3", Kind: dataframe.Drawdown}, []float64{7, 8})
			Expect(err).To(MatchError(dataframe.ErrDimension))
		})

		It("inserts a row after the last date", func() {
			df, err := df.InsertRow(time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC), 10, 11)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(4))
			Expect(df.Vals[0][3]).To(Equal(10.0))
		})

		It("rejects an out-of-order row", func() {
			_, err := df.InsertRow(time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC), 10, 11)
			Expect(err).To(MatchError(dataframe.ErrDateIndexNotAligned))
		})

		It("removes a column by index", func() {
			df = df.RemoveCol(0)
			Expect(df.ColCount()).To(Equal(1))
			Expect(df.Cols[0].Label).To(Equal("Col2"))
		})

		It("renders a table", func() {
			out := df.Table()
			Expect(out).To(ContainSubstring("COL1 (PRICE(CLOSE))"))
			Expect(out).To(ContainSubstring("2021-01-02"))
		})

		DescribeTable("trimming to a date range",
			func(begin, end time.Time, expectedDates int, firstVal float64) {
				trimmed := df.Trim(begin, end)
				Expect(trimmed.Len()).To(Equal(expectedDates))
				if expectedDates > 0 {
					Expect(trimmed.Vals[0][0]).To(Equal(firstVal))
				}
			},
			Entry("full range",
				time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC), 3, 1.0),
			Entry("interior range",
				time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC), 1, 2.0),
			Entry("range not on index dates",
				time.Date(2020, time.December, 25, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 2, 12, 0, 0, 0, time.UTC), 2, 1.0),
			Entry("inverted range",
				time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), 0, 0.0),
			Entry("range after data",
				time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC), 0, 0.0),
			Entry("range before data",
				time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), 0, 0.0),
		)
	})
})
