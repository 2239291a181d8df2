package domain

// PartialLink is a one-directional inference: SourceHost's SourcePort learned
// a MAC address owned by DestinationHost. A partial link becomes a Link only
// when the opposite direction corroborates it.
type PartialLink struct {
	SourceHost      string
	SourcePort      string
	DestinationHost string
}

// Link is a confirmed bidirectional physical connection between two switch
// ports. Links are plain values; deduplication relies on structural equality
// over all four fields.
type Link struct {
	SourceHost      string `json:"source_host"`
	SourcePort      string `json:"source_port"`
	DestinationHost string `json:"destination_host"`
	DestinationPort string `json:"destination_port"`
}

// Mirror returns the same physical connection seen from the far end.
func (l Link) Mirror() Link {
	return Link{
		SourceHost:      l.DestinationHost,
		SourcePort:      l.DestinationPort,
		DestinationHost: l.SourceHost,
		DestinationPort: l.SourcePort,
	}
}
