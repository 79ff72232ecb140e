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
	"time"

	"github.com/penny-vault/pv-timeseries/dataframe"
)

// TableSink receives the frame's tagged column table; spreadsheet and
// structured exporters implement this outside the library
type TableSink interface {
	WriteTable(dates []time.Time, cols []dataframe.Column, vals [][]float64) error
}

// ChartSink receives one series per call for rendering; charting backends
// implement this outside the library
type ChartSink interface {
	WriteSeries(label string, dates []time.Time, values []float64, mode string) error
}

// Export hands the shared table to a tabular sink
func (f *Frame) Export(sink TableSink) error {
	return sink.WriteTable(f.table.Dates, f.table.Cols, f.table.Vals)
}

// Chart hands each column to a charting sink with the given display mode
func (f *Frame) Chart(sink ChartSink, mode string) error {
	for colIdx, col := range f.table.Cols {
		if err := sink.WriteSeries(col.Label, f.table.Dates, f.table.Vals[colIdx], mode); err != nil {
			return err
		}
	}
	return nil
}
