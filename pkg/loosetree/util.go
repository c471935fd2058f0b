// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package loosetree

import "github.com/fmstephe/collision-system/pkg/geom"

// A simple survey collector which will push every item into col
func SliceCollector[T comparable]() (fun func(item T, bounds geom.Rect) bool, colP *[]T) {
	col := []T{}
	colP = &col
	fun = func(item T, bounds geom.Rect) bool {
		col = *colP
		col = append(col, item)
		colP = &col
		return true
	}
	return fun, colP
}

// A survey collector which will push items into col until limit is reached
func LimitCollector[T comparable](limit int) (fun func(item T, bounds geom.Rect) bool, colP *[]T) {
	count := 0
	col := []T{}
	colP = &col

	fun = func(item T, bounds geom.Rect) bool {
		if count >= limit {
			return false
		}

		col = *colP
		col = append(col, item)
		colP = &col
		count++
		return true
	}
	return fun, colP
}
