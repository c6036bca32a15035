// Package server implements the MCP (Model Context Protocol) server for the
// lesion analysis pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes the analysis
// capabilities through the MCP protocol, so MCP-compatible clients can run
// medical image analysis as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Lesion Analysis:
//   - lesion_analyze: Full multi-method analysis with annotated output
//   - lesion_preprocess: Preprocessing stage only, for inspection
//
// Medicine Package Identification:
//   - medpack_identify: Label OCR plus visual package features
//
// # Error Handling
//
// Tool execution failures return JSON-RPC error code -32000 with the
// underlying error message as data. An unreadable input image is the only
// condition the analysis tools report as an error; an image in which nothing
// is detected produces a successful, empty result.
//
// All diagnostic logging goes to stderr; stdout is reserved for the
// protocol stream.
package server
