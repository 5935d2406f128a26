// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references
// for the airlock protocol: ship names, gall agent names, and
// subscription paths.
//
// All constructors validate their inputs and return errors for invalid
// names. Once constructed, a ref is immutable — accessor methods return
// the canonical string form at zero allocation cost. Raw strings from
// the wire (the ship name embedded in the session cookie, app and path
// fields in channel commands) are parsed into these types at the
// boundary and never constructed directly by client code.
//
// The canonical serialization forms:
//   - [ShipName]: the @p without the leading sig ("zod", "sampel-palnet")
//   - [App]: the kebab-case agent name ("chat-view")
//   - [SubscriptionPath]: the slash-rooted path ("/primary")
//
// ShipName marshals as text via encoding.TextMarshaler so it can be
// embedded directly in JSON command objects.
package ref
