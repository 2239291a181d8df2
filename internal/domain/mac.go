package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MacAddress is a canonical MAC address: six lowercase two-hex-digit octets
// joined with colons, e.g. "00:1d:45:43:b9:73". Values are only produced by
// NormalizeMac, so two MacAddress values for the same hardware address always
// compare equal and can be used directly as map keys.
type MacAddress string

// ZeroMac is reported by switches for unconfigured port-channel interfaces.
// It is not a real interface identity and is filtered from parsed results.
const ZeroMac MacAddress = "00:00:00:00:00:00"

// ErrMalformedMac indicates input that does not clean up to twelve hex digits.
var ErrMalformedMac = errors.New("malformed mac address")

// NormalizeMac converts any common MAC notation (Cisco dotted "001d.4543.b973",
// colon-separated "00:1D:45:43:B9:73", or bare hex) to canonical form. The `.`
// and `:` separators are stripped; exactly twelve hex digits must remain, and
// the result is lowercased and re-joined in two-digit groups.
func NormalizeMac(raw string) (MacAddress, error) {
	cleaned := strings.ToLower(strings.NewReplacer(":", "", ".", "").Replace(raw))
	if len(cleaned) != 12 {
		return "", fmt.Errorf("%w: %q", ErrMalformedMac, raw)
	}
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q", ErrMalformedMac, raw)
		}
	}

	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(cleaned[i : i+2])
	}
	return MacAddress(b.String()), nil
}
