// Package server implements the MCP (Model Context Protocol) server for the
// spatial accuracy tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the evaluation
// pipeline through the MCP protocol, so MCP-compatible clients can assess
// classification rasters against reference polygons.
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
//   - raster_stack_load: Load raster layers and report their metadata
//   - spatial_accuracy: Evaluate a stack of layers against polygons
//   - calculate_area: Area statistics for one layer's target class
//   - render_facet_map: Faceted comparison map as base64 PNG
package server
