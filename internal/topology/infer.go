// Package topology infers physical switch links from MAC learning data.
//
// The algorithm works on a complete fleet snapshot. Each switch reports which
// MAC addresses its own interfaces carry and which MACs it learned on which
// ports. A port that learned another switch's interface MAC yields a
// directional partial link; only when both directions corroborate each other
// is a bidirectional link emitted, and each physical cable appears exactly
// once regardless of orientation.
package topology

import (
	"log/slog"

	"switchmap/internal/domain"
	"switchmap/internal/ios"
)

// Inferencer derives confirmed links from capture snapshots.
type Inferencer struct {
	parser *ios.Parser
	log    *slog.Logger
}

// NewInferencer creates an inferencer whose parse and inference diagnostics
// flow to the given logger. A nil logger discards them.
func NewInferencer(logger *slog.Logger) *Inferencer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inferencer{
		parser: ios.NewParser(logger),
		log:    logger,
	}
}

type pairKey struct {
	source      string
	destination string
}

// Links derives the deduplicated set of confirmed bidirectional links from a
// complete capture snapshot. Captures must cover the whole run: inference on
// a partial snapshot would miss corroborations, so callers only invoke this
// after every collection task has finished.
func (inf *Inferencer) Links(captures []domain.DeviceCapture) []domain.Link {
	// Reverse index from interface MAC to owning host. A MAC claimed by two
	// hosts is a cabling or config anomaly; the later capture wins.
	hostByMac := make(map[domain.MacAddress]string)
	for _, capture := range captures {
		for mac := range inf.parser.InterfaceMacs(capture.InterfaceMacText) {
			if prev, ok := hostByMac[mac]; ok && prev != capture.Host {
				inf.log.Warn("interface mac claimed by two hosts",
					"mac", mac, "previous", prev, "host", capture.Host)
			}
			hostByMac[mac] = capture.Host
		}
	}

	// Directional partial links keyed by (source, destination). When a host
	// learns the same peer on several ports only the last-seen port is kept.
	// Insertion order is tracked so the emitted links are stable for a
	// given snapshot.
	partials := make(map[pairKey]domain.PartialLink)
	var order []pairKey
	for _, capture := range captures {
		for _, entry := range inf.parser.MacTable(capture.MacTableText) {
			otherHost, ok := hostByMac[entry.Mac]
			if !ok {
				// Learned MAC belongs to no known switch interface,
				// typically an end host.
				continue
			}

			key := pairKey{source: capture.Host, destination: otherHost}
			if prev, seen := partials[key]; !seen {
				order = append(order, key)
			} else if prev.SourcePort != entry.Port {
				inf.log.Debug("partial link port overwritten",
					"source", capture.Host, "destination", otherHost,
					"previous_port", prev.SourcePort, "port", entry.Port)
			}
			partials[key] = domain.PartialLink{
				SourceHost:      capture.Host,
				SourcePort:      entry.Port,
				DestinationHost: otherHost,
			}
		}
	}

	// Pair opposite directions. An unmatched partial link means the far side
	// never learned the near side's MAC; without corroboration no link is
	// emitted.
	links := make([]domain.Link, 0)
	seen := make(map[domain.Link]bool)
	for _, key := range order {
		partial := partials[key]
		opposite, ok := partials[pairKey{source: key.destination, destination: key.source}]
		if !ok {
			continue
		}

		link := domain.Link{
			SourceHost:      partial.SourceHost,
			SourcePort:      partial.SourcePort,
			DestinationHost: opposite.SourceHost,
			DestinationPort: opposite.SourcePort,
		}

		if seen[link] || seen[link.Mirror()] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links
}
