// Copyright (c) 2024-2025 The mensaweb authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"
)

// Canteen specifies the closed set of supported dining halls.
// Although this enum is numeric, it is (de)serialized as its stable
// lowercase identifier which is also used as the storage key, so
// persisted rows stay meaningful independently of the enum ordering.
type Canteen int

// Valid values for the Canteen enum.
const (
	CanteenInvalid Canteen = iota // zero value is invalid

	CanteenForum
	CanteenAcademica
	CanteenPicknick
	CanteenBonaVista
	CanteenGrillCafe
	CanteenZM2
	CanteenBasilica
	CanteenAtrium
)

// ErrUnknownCanteen indicates that a given string may not be parsed
// as a valid/known canteen identifier. The caller of ParseCanteen
// already knows the offending string and is expected to wrap this
// error with it when reporting upwards.
var ErrUnknownCanteen = errors.New("unknown canteen identifier")

// CanteenError indicates an invalid Canteen enum value, containing
// the invalid value as an integer.
type CanteenError int

// Error implements the error interface.
func (e CanteenError) Error() string {
	return fmt.Sprintf("invalid canteen: %d", int(e))
}

// AllCanteens returns every valid canteen in its enum order.
// Callers may mutate the returned slice freely.
func AllCanteens() []Canteen {
	return []Canteen{
		CanteenForum,
		CanteenAcademica,
		CanteenPicknick,
		CanteenBonaVista,
		CanteenGrillCafe,
		CanteenZM2,
		CanteenBasilica,
		CanteenAtrium,
	}
}

// Validate returns nil if the Canteen value is valid. For invalid
// values, an instance of CanteenError will be returned.
func (c Canteen) Validate() error {
	if c <= CanteenInvalid || c > CanteenAtrium {
		return CanteenError(c)
	}
	return nil
}

// Identifier returns the stable lowercase identifier of the canteen
// which is used as its storage key and wire value. Invalid canteens
// cause a panic.
func (c Canteen) Identifier() string {
	switch c {
	case CanteenForum:
		return "forum"
	case CanteenAcademica:
		return "academica"
	case CanteenPicknick:
		return "picknick"
	case CanteenBonaVista:
		return "bona-vista"
	case CanteenGrillCafe:
		return "grillcafe"
	case CanteenZM2:
		return "zm2"
	case CanteenBasilica:
		return "basilica"
	case CanteenAtrium:
		return "atrium"
	default:
		panic(CanteenError(c))
	}
}

// String returns the canteen identifier.
func (c Canteen) String() string {
	return c.Identifier()
}

// LogValue implements slog.LogValuer, resolving to the canteen
// identifier (or a numbered placeholder for invalid values, since
// log statements must not panic).
func (c Canteen) LogValue() slog.Value {
	if c.Validate() != nil {
		return slog.StringValue(CanteenError(c).Error())
	}
	return slog.StringValue(c.Identifier())
}

// ParseCanteen parses the given identifier string and returns the
// corresponding Canteen. For invalid strings, CanteenInvalid and
// ErrUnknownCanteen will be returned.
func ParseCanteen(s string) (Canteen, error) {
	switch s {
	case "forum":
		return CanteenForum, nil
	case "academica":
		return CanteenAcademica, nil
	case "picknick":
		return CanteenPicknick, nil
	case "bona-vista":
		return CanteenBonaVista, nil
	case "grillcafe":
		return CanteenGrillCafe, nil
	case "zm2":
		return CanteenZM2, nil
	case "basilica":
		return CanteenBasilica, nil
	case "atrium":
		return CanteenAtrium, nil
	default:
		return CanteenInvalid, ErrUnknownCanteen
	}
}

// MarshalText implements encoding.TextMarshaler so canteens are
// serialized as their identifiers.
func (c Canteen) MarshalText() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return []byte(c.Identifier()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Canteen) UnmarshalText(data []byte) error {
	cc, err := ParseCanteen(string(data))
	if err != nil {
		return err
	}
	*c = cc
	return nil
}
