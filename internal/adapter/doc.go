// Package adapter talks to the network on behalf of switchmap.
//
// It covers the two outward-facing concerns of a discovery run: querying
// known switches for their MAC state, and sweeping a subnet when no
// switches are configured yet.
//
// # Device Queries
//
// SSHQuerier connects to a Cisco IOS device over SSH with password
// authentication, disables output pagination, and captures the raw text
// of the interface MAC listing and the dynamic MAC address table. The
// text is returned verbatim in a DeviceCapture; parsing happens in the
// ios package.
//
// Collector fans queries out across a bounded worker pool. Per-host
// failures are logged and dropped so one unreachable switch never sinks
// a run; whatever subset of the fleet answered is still inferred over.
//
// # Seed Scanning
//
// Scanner sweeps a CIDR range for hosts answering on the SSH port,
// producing candidate device addresses when the fleet is not configured
// explicitly. It prefers nmap for the sweep and falls back to plain TCP
// connect probes when the nmap binary is unavailable. With no CIDR
// configured it detects the local /24 from the primary interface.
package adapter
