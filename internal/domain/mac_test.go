package domain

import (
	"errors"
	"testing"
)

func TestNormalizeMac(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    MacAddress
		wantErr bool
	}{
		{
			name: "cisco dotted notation",
			raw:  "001d.4543.b973",
			want: "00:1d:45:43:b9:73",
		},
		{
			name: "colon separated uppercase",
			raw:  "00:1D:45:43:B9:73",
			want: "00:1d:45:43:b9:73",
		},
		{
			name: "bare hex",
			raw:  "001d4543b973",
			want: "00:1d:45:43:b9:73",
		},
		{
			name: "already canonical",
			raw:  "00:1d:45:43:b9:73",
			want: "00:1d:45:43:b9:73",
		},
		{
			name: "mixed separators",
			raw:  "001d.4543:b973",
			want: "00:1d:45:43:b9:73",
		},
		{
			name: "all zero",
			raw:  "0000.0000.0000",
			want: ZeroMac,
		},
		{
			name:    "too short",
			raw:     "00:1d:45",
			wantErr: true,
		},
		{
			name:    "too long",
			raw:     "00:1d:45:43:b9:73:aa",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "non-hex characters",
			raw:     "00zz.4543.b973",
			wantErr: true,
		},
		{
			name:    "right length with embedded space",
			raw:     "001d 4543b973",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMac(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeMac(%q) = %q, expected error", tt.raw, got)
				}
				if !errors.Is(err, ErrMalformedMac) {
					t.Errorf("expected ErrMalformedMac, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeMac(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeMac(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeMacIdempotent(t *testing.T) {
	first, err := NormalizeMac("001D.4543.B973")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NormalizeMac(string(first))
	if err != nil {
		t.Fatalf("normalizing canonical form failed: %v", err)
	}
	if first != second {
		t.Errorf("normalization not idempotent: %q != %q", first, second)
	}
}
