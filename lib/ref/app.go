// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// App is a validated gall agent name (e.g., "chat-view", "graph-store").
// Agent names are kebab-case terms: lowercase letters, digits, and
// single interior hyphens, starting with a letter.
//
// App is an immutable value type. The zero value is not valid; use
// IsZero to check.
type App struct {
	name string
}

// ParseApp validates and wraps a raw agent name.
func ParseApp(raw string) (App, error) {
	if raw == "" {
		return App{}, fmt.Errorf("empty app name")
	}
	if raw[0] < 'a' || raw[0] > 'z' {
		return App{}, fmt.Errorf("app name must start with a lowercase letter: %q", raw)
	}
	previousHyphen := false
	for index := 0; index < len(raw); index++ {
		c := raw[index]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			previousHyphen = false
		case c == '-':
			if previousHyphen {
				return App{}, fmt.Errorf("app name has doubled hyphen: %q", raw)
			}
			if index == len(raw)-1 {
				return App{}, fmt.Errorf("app name has trailing hyphen: %q", raw)
			}
			previousHyphen = true
		default:
			return App{}, fmt.Errorf("app name has invalid character %q: %q", c, raw)
		}
	}
	return App{name: raw}, nil
}

// String returns the agent name.
func (a App) String() string { return a.name }

// IsZero reports whether the App is the zero value (uninitialized).
func (a App) IsZero() bool { return a.name == "" }
