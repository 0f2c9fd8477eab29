// file: internals/helpers/dates.go
package helper

import (
	"strings"
	"time"
)

// Format timestamp untuk payload bundle: ISO-8601 + suffix 'Z' literal.
// Microsecond selalu 6 digit supaya kompatibel dengan deployment lama.
const (
	SchemaTimeLayout       = "2006-01-02T15:04:05.000000Z"
	schemaTimeLayoutNoFrac = "2006-01-02T15:04:05Z"
)

func FormatSchemaTime(t time.Time) string {
	return t.UTC().Format(SchemaTimeLayout)
}

// ParseSchemaTime mencoba layout dengan pecahan detik dulu, lalu tanpa pecahan.
func ParseSchemaTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(SchemaTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(schemaTimeLayoutNoFrac, s)
}

// PrettyTime versi ramah-manusia, dipakai di tampilan admin.
func PrettyTime(t time.Time) string {
	return strings.ReplaceAll(t.Format("3:04PM on Mon 2, Jan 2006"), " 0", " ")
}
