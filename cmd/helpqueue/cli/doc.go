// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the helpqueue
// binary: a [Command] tree dispatched by positional name, flag sets
// built from tagged parameter structs with [FlagsFromParams], typed
// errors ([ToolError], [ExitError]) and the shared logger and JSON
// output helpers.
package cli
