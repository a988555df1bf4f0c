// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads helpqueue client configuration from YAML.
//
// Configuration comes from one file, named either by the
// HELPQUEUE_CONFIG environment variable ([Load]) or by a --config flag
// ([LoadFile]). There is no search path. Commands that receive only a
// --server flag run on [Default] with the server URL overridden.
//
// A file may carry development, staging and production sections that
// override base values when [Config].Environment matches. After
// overrides are applied, ${VAR} and ${VAR:-default} patterns in URL
// fields are expanded from the process environment.
//
// Key exports:
//
//   - [Config]: Server, Form, Sync, Board sections
//   - [Default]: development defaults matching the help-desk server
//   - [Load], [LoadFile]: the two entry points
//   - [Config.Validate]: joins every problem into one error
package config
