// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// helpqueue is the terminal client for a help-desk ticket queue.
//
// It follows the server's open-ticket queue over Socket.IO and renders
// it either as a full-screen board (helpqueue board) or as plain
// output (helpqueue watch). One-shot commands list tickets, open new
// ones and submit ticket forms such as resolutions.
//
// Configuration comes from the YAML file named by --config or
// HELPQUEUE_CONFIG; without one, built-in defaults point at
// http://localhost:5000. Run "helpqueue --help" for the command list.
package main
