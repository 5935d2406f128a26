// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package shipfile loads ship connection details for airlock tooling.
//
// A shipfile is a single YAML file specified by:
//   - the AIRLOCK_SHIPFILE environment variable, or
//   - a --shipfile flag passed to the command
//
// There are no fallbacks or automatic discovery. This keeps connection
// configuration deterministic and auditable, with no hidden overrides.
//
// The engine itself takes its configuration as explicit arguments; this
// package exists for the binaries built around it.
package shipfile

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/urbit-foundation/airlock/lib/secret"
)

// ShipFile describes how to reach and authenticate with one ship.
type ShipFile struct {
	// URL is the ship's HTTP endpoint, e.g. "http://localhost:8080".
	URL string `yaml:"url"`

	// Code is the ship's +code inline. Prefer CodeFile: inline codes
	// end up in shell history and editor swap files.
	Code string `yaml:"code,omitempty"`

	// CodeFile is a path to a file containing the +code, or "-" to
	// read it from stdin.
	CodeFile string `yaml:"code-file,omitempty"`
}

// Load reads and validates a shipfile from path.
func Load(path string) (*ShipFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shipfile: reading %s: %w", path, err)
	}

	var file ShipFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("shipfile: parsing %s: %w", path, err)
	}

	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("shipfile: %s: %w", path, err)
	}
	return &file, nil
}

// Path resolves the shipfile location from the --shipfile flag value or
// the AIRLOCK_SHIPFILE environment variable, in that order. Returns an
// error when neither is set.
func Path(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("AIRLOCK_SHIPFILE"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("shipfile: no --shipfile flag and AIRLOCK_SHIPFILE is not set")
}

// ReadCode returns the ship's +code in protected memory. The caller
// must Close the returned buffer after login.
func (f *ShipFile) ReadCode() (*secret.Buffer, error) {
	if f.CodeFile != "" {
		buffer, err := secret.ReadFromPath(f.CodeFile)
		if err != nil {
			return nil, fmt.Errorf("shipfile: reading code file: %w", err)
		}
		return buffer, nil
	}
	// The inline code already passed through the YAML parser's heap
	// allocations; copying it into protected memory still limits how
	// long it stays there.
	return secret.NewFromBytes([]byte(f.Code))
}

func (f *ShipFile) validate() error {
	if f.URL == "" {
		return fmt.Errorf("url is required")
	}
	parsed, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", f.URL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url %q must be http or https", f.URL)
	}
	if f.Code == "" && f.CodeFile == "" {
		return fmt.Errorf("one of code or code-file is required")
	}
	if f.Code != "" && f.CodeFile != "" {
		return fmt.Errorf("code and code-file are mutually exclusive")
	}
	return nil
}
