package domain

// DeviceCapture holds the raw command output collected from one device during
// a discovery pass. Both text fields are verbatim CLI responses; keeping them
// unparsed means a capture can be logged or replayed exactly as the device
// produced it.
type DeviceCapture struct {
	// Host is the address the device was queried at.
	Host string
	// InterfaceMacText is the "show interfaces" output filtered to the lines
	// naming each interface's own MAC address.
	InterfaceMacText string
	// MacTableText is the dynamic MAC address table output.
	MacTableText string
}

// MacTableEntry is one learned row of a device's MAC address table: traffic
// from Mac was seen arriving on Port.
type MacTableEntry struct {
	Mac  MacAddress
	Port string
}
