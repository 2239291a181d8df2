// Package domain defines the core domain types for switchmap's MAC-learning
// topology discovery.
//
// # Captures
//
// DeviceCapture holds the two raw text blobs collected from one switch: the
// listing of the device's own interface MAC addresses and the dynamic MAC
// address table it learned from traffic. Captures are immutable snapshots;
// parsing them into typed records happens downstream.
//
// # MAC Addresses
//
// MacAddress is the canonical colon-separated lowercase form every MAC value
// takes inside the system. NormalizeMac is the only constructor; any input
// that does not clean up to exactly twelve hex digits is rejected with
// ErrMalformedMac.
//
// # Links
//
// PartialLink is a one-directional observation: a port on one switch learned
// a MAC address owned by another switch's interface. Link is a corroborated
// bidirectional connection, built only when both ends observed each other.
// A Link and its Mirror describe the same physical cable; result sets keep
// exactly one orientation.
//
// # Runs and the Graph Document
//
// DiscoveryRun records one full collect-and-infer pass over the fleet.
// ProjectGraph renders a run into the node/edge document consumed by the
// visualization front end and written as the output artifact, assigning
// integer ids by completion-order position.
//
// # Design Principles
//
// - Immutable value objects with structural equality
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
