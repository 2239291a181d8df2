// Package service implements the discovery pipeline for switchmap.
//
// This package sits between the HTTP handlers and the lower layers,
// coordinating the collector, the inference engine, the run store, and
// the event bus.
//
// # Discovery
//
// Discovery runs the full pass: collect raw captures from the fleet,
// infer corroborated links, persist the run, prune old runs, and write
// the JSON artifact when one is configured. Runs are serialized; an
// overlapping request gets ErrRunInProgress. With no hosts configured
// the fleet is seeded from a subnet scan.
//
// The Run loop drives periodic discovery at the configured interval and
// services on-demand triggers. Settings can be swapped at runtime; the
// loop picks up interval changes without restarting.
//
// # Event System
//
// State changes publish typed events via EventBus for real-time updates
// to connected clients over Server-Sent Events. Publishing never blocks;
// slow subscribers miss events rather than stalling a run.
package service
