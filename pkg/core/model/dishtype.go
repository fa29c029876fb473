// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// DishType specifies the closed set of dish categories which a menu
// groups its dishes by. It is persisted and serialized as a lowercase
// string.
type DishType int

// Valid values for the DishType enum.
const (
	DishTypeInvalid DishType = iota // zero value is invalid

	DishTypeMain
	DishTypeSide
	DishTypeDessert
)

// ErrUnknownDishType indicates that a given string may not be parsed
// as a valid/known dish type.
var ErrUnknownDishType = errors.New("unknown dish type")

// DishTypeError indicates an invalid DishType enum value.
type DishTypeError int

// Error implements the error interface.
func (e DishTypeError) Error() string {
	return fmt.Sprintf("invalid dish type: %d", int(e))
}

// Validate returns nil if the DishType value is valid. For invalid
// values, an instance of DishTypeError will be returned.
func (t DishType) Validate() error {
	switch t {
	case DishTypeMain, DishTypeSide, DishTypeDessert:
		return nil
	default:
		return DishTypeError(t)
	}
}

// String returns the lowercase identifier of the dish type, as stored
// in the database. Invalid dish types cause a panic.
func (t DishType) String() string {
	switch t {
	case DishTypeMain:
		return "main"
	case DishTypeSide:
		return "side"
	case DishTypeDessert:
		return "dessert"
	default:
		panic(DishTypeError(t))
	}
}

// ParseDishType parses the given string and returns a DishType.
// For invalid strings, DishTypeInvalid and ErrUnknownDishType will
// be returned.
func ParseDishType(s string) (DishType, error) {
	switch s {
	case "main":
		return DishTypeMain, nil
	case "side":
		return DishTypeSide, nil
	case "dessert":
		return DishTypeDessert, nil
	default:
		return DishTypeInvalid, ErrUnknownDishType
	}
}
