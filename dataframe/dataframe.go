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

package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// New creates a dataframe from the given parts. Every value column must have
// the same length as the date index and there must be one column descriptor
// per value column.
func New(dates []time.Time, cols []Column, vals [][]float64) (*DataFrame, error) {
	if len(cols) != len(vals) {
		return nil, fmt.Errorf("%w: %d column names for %d value columns", ErrDimension, len(cols), len(vals))
	}
	for idx, col := range vals {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("%w: column %d has %d rows, index has %d", ErrDimension, idx, len(col), len(dates))
		}
	}

	return &DataFrame{
		Dates: dates,
		Cols:  cols,
		Vals:  vals,
	}, nil
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.Cols)
}

// ColIndex returns the index of the column matching both label and kind;
// returns -1 if no column matches
func (df *DataFrame) ColIndex(col Column) int {
	for idx, val := range df.Cols {
		if col == val {
			return idx
		}
	}

	return -1
}

// ColIndexByLabel returns the index of the first column with the given
// label, regardless of kind; returns -1 if no column matches
func (df *DataFrame) ColIndexByLabel(label string) int {
	for idx, val := range df.Cols {
		if label == val.Label {
			return idx
		}
	}

	return -1
}

// Copy creates a copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		Dates: make([]time.Time, len(df.Dates)),
		Cols:  make([]Column, len(df.Cols)),
		Vals:  make([][]float64, len(df.Vals)),
	}

	copy(df2.Dates, df.Dates)
	copy(df2.Cols, df.Cols)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` in any column
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))

	for idx, rowDate := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			rowVal := col[idx]
			keep = keep && !(rowVal == val || (isNA && math.IsNaN(rowVal)))
			if !keep {
				break
			}
		}

		if keep {
			newDates = append(newDates, rowDate)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	df.Vals = newVals
	df.Dates = newDates
	return df
}

// End returns the last date in the dataframe
func (df *DataFrame) End() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}

	return df.Dates[len(df.Dates)-1]
}

// Insert adds a new column to the end of the dataframe
func (df *DataFrame) Insert(col Column, vals []float64) (*DataFrame, error) {
	if len(df.Dates) != len(vals) {
		return nil, fmt.Errorf("%w: column has %d rows, index has %d", ErrDimension, len(vals), len(df.Dates))
	}

	df.Cols = append(df.Cols, col)
	df.Vals = append(df.Vals, vals)
	return df, nil
}

// InsertRow adds a new row to the dataframe. The date must be after the last
// date in the dataframe and vals must equal the number of columns.
func (df *DataFrame) InsertRow(date time.Time, vals ...float64) (*DataFrame, error) {
	if len(df.Dates) != 0 {
		last := df.Dates[len(df.Dates)-1]
		if !last.Before(date) {
			return nil, fmt.Errorf("%w: new date %s not after last date %s", ErrDateIndexNotAligned,
				date.Format("2006-01-02"), last.Format("2006-01-02"))
		}
	}

	if len(vals) != len(df.Cols) {
		return nil, fmt.Errorf("%w: %d vals for %d columns", ErrDimension, len(vals), len(df.Cols))
	}

	df.Dates = append(df.Dates, date)
	for colIdx := range df.Cols {
		df.Vals[colIdx] = append(df.Vals[colIdx], vals[colIdx])
	}

	return df, nil
}

// Last returns a new dataframe with only the last row of the current
// dataframe
func (df *DataFrame) Last() *DataFrame {
	if df.Len() == 0 {
		return df
	}

	lastVals := make([][]float64, len(df.Cols))
	lastRow := len(df.Dates) - 1
	for idx, col := range df.Vals {
		lastVals[idx] = []float64{col[lastRow]}
	}

	return &DataFrame{
		Dates: []time.Time{df.Dates[lastRow]},
		Cols:  df.Cols,
		Vals:  lastVals,
	}
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// RemoveCol drops the column at the given index
func (df *DataFrame) RemoveCol(colIdx int) *DataFrame {
	if colIdx < 0 || colIdx >= len(df.Cols) {
		return df
	}

	df.Cols = append(df.Cols[:colIdx], df.Cols[colIdx+1:]...)
	df.Vals = append(df.Vals[:colIdx], df.Vals[colIdx+1:]...)
	return df
}

// Start returns the first date of the dataframe
func (df *DataFrame) Start() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}

	return df.Dates[0]
}

// Table prints an ASCII formatted table to a string
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>"
	}

	tableCols := make([]string, 0, len(df.Cols)+1)
	tableCols = append(tableCols, "Date")
	for _, col := range df.Cols {
		tableCols = append(tableCols, fmt.Sprintf("%s (%s)", col.Label, col.Kind))
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", df.Len())
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, rowDate := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, rowDate.Format("2006-01-02"))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive). The returned
// dataframe shares backing arrays with the receiver.
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		Dates: df.Dates,
		Cols:  df.Cols,
		Vals:  make([][]float64, len(df.Vals)),
	}

	// special case 0: requested range is invalid
	if end.Before(begin) {
		df2.Dates = []time.Time{}
		df2.Vals = [][]float64{}
		return df2
	}

	// special case 1: data frame is empty
	if df.Len() == 0 {
		copy(df2.Vals, df.Vals)
		return df2
	}

	// special case 2: requested range is outside of the data frame
	if end.Before(df.Dates[0]) || begin.After(df.Dates[len(df.Dates)-1]) {
		df2.Dates = []time.Time{}
		df2.Vals = [][]float64{}
		return df2
	}

	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})

	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})

	df2.Dates = df.Dates[beginIdx:endIdx]
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}
