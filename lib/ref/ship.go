// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// ShipName is a validated Urbit ship name (@p), stored without the
// leading sig: "zod", "marzod", "sampel-palnet".
//
// Ship names are server-assigned identities. Airlock code never invents
// them — they arrive in the session cookie at login and are parsed into
// this type at the boundary.
//
// ShipName is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ShipName struct {
	name string
}

// ParseShipName validates and wraps a raw ship name. A leading sig (~)
// is stripped. Each hyphen-separated segment must be lowercase ASCII
// letters; galaxies are a single three-letter segment, every other rank
// uses six-letter segments. Comet names separate their halves with a
// doubled hyphen, which appears here as an empty segment and is
// permitted between six-letter runs.
func ParseShipName(raw string) (ShipName, error) {
	name := strings.TrimPrefix(raw, "~")
	if name == "" {
		return ShipName{}, fmt.Errorf("empty ship name")
	}

	segments := strings.Split(name, "-")
	if len(segments) == 1 && len(segments[0]) == 3 {
		if !isLowerAlpha(segments[0]) {
			return ShipName{}, fmt.Errorf("ship name has invalid characters: %q", raw)
		}
		return ShipName{name: name}, nil
	}

	for index, segment := range segments {
		if segment == "" {
			// Doubled hyphen: legal only as a comet separator, never
			// at either end of the name.
			if index == 0 || index == len(segments)-1 {
				return ShipName{}, fmt.Errorf("ship name has leading or trailing hyphen: %q", raw)
			}
			continue
		}
		if len(segment) != 6 {
			return ShipName{}, fmt.Errorf("ship name segment %q must be six letters: %q", segment, raw)
		}
		if !isLowerAlpha(segment) {
			return ShipName{}, fmt.Errorf("ship name has invalid characters: %q", raw)
		}
	}

	return ShipName{name: name}, nil
}

// String returns the ship name without the sig (e.g., "sampel-palnet").
func (s ShipName) String() string { return s.name }

// Sigged returns the ship name with the leading sig (e.g., "~zod").
func (s ShipName) Sigged() string { return "~" + s.name }

// IsZero reports whether the ShipName is the zero value (uninitialized).
func (s ShipName) IsZero() bool { return s.name == "" }

// MarshalText implements encoding.TextMarshaler using the sigless form.
func (s ShipName) MarshalText() ([]byte, error) {
	if s.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero ShipName")
	}
	return []byte(s.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (s *ShipName) UnmarshalText(text []byte) error {
	parsed, err := ParseShipName(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func isLowerAlpha(s string) bool {
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
