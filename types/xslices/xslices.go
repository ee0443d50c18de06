/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package xslices provides generic slice helpers used throughout the compiler.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// Map applies fn to each element of in and returns the resulting slice.
func Map[In, Out any](in []In, fn func(In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, value := range in {
		out[ii] = fn(value)
	}
	return
}

// Iota returns a slice of count numbers, starting at start and incrementing by 1.
func Iota[T constraints.Integer | constraints.Float](start T, count int) (slice []T) {
	slice = make([]T, count)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// SliceWithValue returns a slice of the given count, with all values set to value.
func SliceWithValue[T any](count int, value T) (slice []T) {
	slice = make([]T, count)
	for ii := range slice {
		slice[ii] = value
	}
	return
}

// Last returns the last element of the slice. It panics on an empty slice, like an
// out-of-bounds index would.
func Last[T any](slice []T) T {
	return slice[len(slice)-1]
}
