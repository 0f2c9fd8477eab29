package helper

import (
	"testing"
	"time"
)

func TestFormatSchemaTimeRoundtrip(t *testing.T) {
	orig := time.Date(2023, 6, 15, 10, 30, 0, 123456000, time.UTC)

	encoded := FormatSchemaTime(orig)
	if encoded != "2023-06-15T10:30:00.123456Z" {
		t.Fatalf("format salah: %q", encoded)
	}

	parsed, err := ParseSchemaTime(encoded)
	if err != nil {
		t.Fatalf("parse balik gagal: %v", err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("roundtrip berubah: %v != %v", parsed, orig)
	}
}

func TestParseSchemaTimeLayouts(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"dengan microsecond", "2023-06-15T10:30:00.000000Z", false},
		{"tanpa pecahan", "2023-06-15T10:30:00Z", false},
		{"spasi dipinggir ditoleransi", "  2023-06-15T10:30:00Z  ", false},
		{"tanpa Z", "2023-06-15T10:30:00", true},
		{"format lokal", "15/06/2023 10:30", true},
		{"kosong", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSchemaTime(tc.in)
			if (err != nil) != tc.wantErr {
				t.Errorf("ParseSchemaTime(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
		})
	}
}

func TestFormatSchemaTimeConvertsToUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	local := time.Date(2023, 6, 15, 17, 30, 0, 0, jakarta)
	if got := FormatSchemaTime(local); got != "2023-06-15T10:30:00.000000Z" {
		t.Errorf("konversi UTC salah: %q", got)
	}
}
