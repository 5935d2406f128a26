// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// SubscriptionPath is a validated gall subscription path (e.g.,
// "/primary", "/updates/latest"). Paths are slash-rooted with no empty
// segments.
//
// SubscriptionPath is an immutable value type. The zero value is not
// valid; use IsZero to check.
type SubscriptionPath struct {
	path string
}

// ParseSubscriptionPath validates and wraps a raw path. The path must
// start with '/' and every segment must be non-empty, built from
// lowercase letters, digits, '.', '_', '~', and single hyphens.
func ParseSubscriptionPath(raw string) (SubscriptionPath, error) {
	if raw == "" {
		return SubscriptionPath{}, fmt.Errorf("empty subscription path")
	}
	if raw[0] != '/' {
		return SubscriptionPath{}, fmt.Errorf("subscription path must start with '/': %q", raw)
	}

	for _, segment := range strings.Split(raw[1:], "/") {
		if segment == "" {
			return SubscriptionPath{}, fmt.Errorf("subscription path has empty segment: %q", raw)
		}
		for _, c := range segment {
			switch {
			case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			case c == '.', c == '_', c == '~', c == '-':
			default:
				return SubscriptionPath{}, fmt.Errorf("subscription path has invalid character %q: %q", c, raw)
			}
		}
	}

	return SubscriptionPath{path: raw}, nil
}

// String returns the slash-rooted path.
func (p SubscriptionPath) String() string { return p.path }

// IsZero reports whether the SubscriptionPath is the zero value.
func (p SubscriptionPath) IsZero() bool { return p.path == "" }
