// Package ios parses Cisco IOS show-command output into typed records.
//
// Both parsers follow a skip-not-fatal policy: a malformed or unrecognized
// line is reported through the injected logger and dropped, and parsing of
// the remaining lines continues. One bad row never costs the device's whole
// dataset.
package ios

import (
	"log/slog"
	"strings"

	"switchmap/internal/domain"
)

// addressMarker precedes an interface's own MAC address in show interfaces
// output, e.g. "Hardware is iGbE, address is 001d.4543.b973 (bia ...)".
const addressMarker = ", address is "

// Parser turns raw show-command output into typed records, reporting skipped
// lines through its logger.
type Parser struct {
	log *slog.Logger
}

// NewParser creates a parser. A nil logger discards diagnostics.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{log: logger}
}

// MacTable parses dynamic MAC address table output. A qualifying row has
// exactly four whitespace-separated tokens (vlan, mac, type, port); the MAC
// is normalized and the port kept verbatim. Rows with any other shape are
// skipped at debug level, rows whose MAC fails normalization at warn level.
func (p *Parser) MacTable(text string) []domain.MacTableEntry {
	var entries []domain.MacTableEntry
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Fields(line)
		if len(parts) != 4 {
			p.log.Debug("skipping mac table line with unexpected shape", "tokens", len(parts), "line", line)
			continue
		}

		mac, err := domain.NormalizeMac(parts[1])
		if err != nil {
			p.log.Warn("skipping mac table line", "error", err, "line", line)
			continue
		}

		entries = append(entries, domain.MacTableEntry{Mac: mac, Port: parts[3]})
	}
	return entries
}

// InterfaceMacs parses show interfaces output filtered to address lines,
// returning the set of MAC addresses owned by the device's own interfaces.
// Lines without the address marker, or whose extracted token fails
// normalization, are skipped. The all-zero MAC reported by unconfigured
// port-channels is excluded from the set.
func (p *Parser) InterfaceMacs(text string) map[domain.MacAddress]bool {
	macs := make(map[domain.MacAddress]bool)
	for _, line := range strings.Split(text, "\n") {
		_, rest, found := strings.Cut(line, addressMarker)
		if !found {
			p.log.Debug("skipping interface line without address marker", "line", line)
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			p.log.Debug("skipping interface line with empty address", "line", line)
			continue
		}

		mac, err := domain.NormalizeMac(fields[0])
		if err != nil {
			p.log.Warn("skipping interface line", "error", err, "line", line)
			continue
		}

		if mac == domain.ZeroMac {
			continue
		}

		macs[mac] = true
	}
	return macs
}
