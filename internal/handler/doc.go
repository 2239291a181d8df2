// Package handler implements HTTP request handlers for the switchmap API.
//
// # Handlers
//
// TopologyHandler serves the topology document, persisted discovery runs,
// the discovery and scan triggers, and the export endpoints.
//
// Middleware provides panic recovery, CORS support, and structured request
// logging.
//
// # Response Format
//
// Success responses return JSON with appropriate status codes (200, 202).
// Error responses return JSON with an {error, details} structure.
//
// # Server-Sent Events
//
// The /events endpoint streams discovery lifecycle events via SSE so the
// web page refreshes when a new run lands.
package handler
