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
	"errors"
	"time"
)

// ValueKind tags what a column of numbers represents. Operations that
// convert a column (e.g. prices to returns) rewrite the tag along with the
// values.
type ValueKind string

const (
	Price            ValueKind = "Price(Close)"
	Return           ValueKind = "Return(Total)"
	RelativeReturn   ValueKind = "Relative return"
	Drawdown         ValueKind = "Drawdowns"
	EWMA             ValueKind = "EWMA"
	RollingVol       ValueKind = "Rolling volatility"
	RollingReturn    ValueKind = "Rolling returns"
	RollingVaR       ValueKind = "Rolling VaR"
	RollingCVaR      ValueKind = "Rolling CVaR"
	RollingCorr      ValueKind = "Rolling correlation"
	Beta             ValueKind = "Beta"
	InformationRatio ValueKind = "Information Ratio"
)

// Column identifies a column by its label and the kind of values it holds.
type Column struct {
	Label string
	Kind  ValueKind
}

// DataFrame stores a table of values organized by date
// the vals array is column major - e.g.,
// VFINX  PRIDX
// 1      4
// 2      5
// 3      6
//
// Vals[0][0] = 1
// Vals[0][1] = 2
type DataFrame struct {
	Dates []time.Time
	Cols  []Column
	Vals  [][]float64
}

var (
	ErrDateIndexNotAligned = errors.New("date index does not align")
	ErrDimension           = errors.New("dimensions do not agree")
)
