// file: internals/features/portability/schema/schema.go
//
// Kontrak encode/decode JSON ber-versi untuk semua entity yang ikut
// import/export bundle. Setiap payload membawa "_schema_version" (1 atau 2);
// tiap versi punya daftar kolom yang di-ignore dan tabel rename untuk
// payload lama.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	helper "kodingku_backend/internals/helpers"
)

// Versi schema yang dipakai saat encode.
const CurrentVersion = 2

var ErrUnknownSchemaVersion = errors.New("unknown schema version")

// Spec mendeskripsikan perlakuan decode per versi schema.
type Spec struct {
	// Ignore: kolom yang dibuang saat decode, per versi.
	Ignore map[int][]string
	// Rename: key lama → key baru, per versi (dipakai payload v1).
	Rename map[int]map[string]string
}

// BaseSpec membangun Spec standar: id + date_modified selalu di-ignore,
// plus kolom tambahan yang sama untuk v1 dan v2.
func BaseSpec(extraIgnore ...string) Spec {
	base := append([]string{"id", "date_modified"}, extraIgnore...)
	return Spec{
		Ignore: map[int][]string{1: base, 2: base},
	}
}

// Fields adalah payload yang sudah dinormalisasi (tanpa _schema_version,
// date_created sudah berupa time.Time).
type Fields map[string]any

// Normalize menjalankan pipeline decode §schema:
// 1. baca & validasi _schema_version
// 2. parse date_created dari string
// 3. terapkan tabel rename versi tsb
// 4. merge overrides (menang atas payload)
// 5. buang kolom ignore
func Normalize(payload map[string]any, spec Spec, overrides Fields) (Fields, error) {
	raw, ok := payload["_schema_version"]
	if !ok {
		return nil, fmt.Errorf("%w: (tidak ada)", ErrUnknownSchemaVersion)
	}
	version, ok := asInt(raw)
	if !ok || (version != 1 && version != CurrentVersion) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSchemaVersion, raw)
	}

	out := make(Fields, len(payload))
	for k, v := range payload {
		if k == "_schema_version" {
			continue
		}
		out[k] = v
	}

	if s, ok := out["date_created"].(string); ok {
		t, err := helper.ParseSchemaTime(s)
		if err != nil {
			return nil, fmt.Errorf("date_created tidak valid: %w", err)
		}
		out["date_created"] = t
	}

	for old, new := range spec.Rename[version] {
		if v, ok := out[old]; ok {
			out[new] = v
			delete(out, old)
		}
	}

	for k, v := range overrides {
		out[k] = v
	}

	for _, k := range spec.Ignore[version] {
		delete(out, k)
	}
	return out, nil
}

// ---- Pembaca field dengan koersi tipe (payload JSON → tipe Go) ----

func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f Fields) Str(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// StrPtr: nil untuk null/absen, supaya kolom nullable (url) tetap NULL.
func (f Fields) StrPtr(key string) *string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func (f Fields) Int(key string) int {
	if n, ok := asInt(f[key]); ok {
		return n
	}
	return 0
}

func (f Fields) Uint(key string) uint {
	if n, ok := asInt(f[key]); ok && n >= 0 {
		return uint(n)
	}
	return 0
}

func (f Fields) UintPtr(key string) *uint {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	if n, ok := asInt(v); ok && n >= 0 {
		u := uint(n)
		return &u
	}
	return nil
}

func (f Fields) IntPtr(key string) *int {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	if n, ok := asInt(v); ok {
		return &n
	}
	return nil
}

func (f Fields) Bool(key string) bool {
	if b, ok := f[key].(bool); ok {
		return b
	}
	return false
}

func (f Fields) Time(key string) (time.Time, bool) {
	t, ok := f[key].(time.Time)
	return t, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// ---- OwnerRef: permintaan field denormalisasi owner_id__email ----

type ownerRefKind int

const (
	ownerSkip ownerRefKind = iota
	ownerFetch
	ownerProvided
)

// OwnerRef menyatakan eksplisit bagaimana owner_id__email diisi saat encode:
// Skip (tidak perlu lookup), FetchByID (encoder yang me-lookup), atau
// Provided (caller sudah punya emailnya).
type OwnerRef struct {
	kind   ownerRefKind
	userID *uint
	email  string
}

func SkipOwner() OwnerRef { return OwnerRef{kind: ownerSkip} }

func FetchOwner(userID *uint) OwnerRef { return OwnerRef{kind: ownerFetch, userID: userID} }

func ProvidedOwner(email string) OwnerRef { return OwnerRef{kind: ownerProvided, email: email} }

// EmailLookup me-resolve email user by id; ok=false kalau tidak ketemu.
type EmailLookup func(userID uint) (string, bool)

// Resolve mengembalikan email sesuai variannya; "" untuk Skip / tidak ketemu.
func (r OwnerRef) Resolve(lookup EmailLookup) string {
	switch r.kind {
	case ownerProvided:
		return r.email
	case ownerFetch:
		if r.userID == nil || lookup == nil {
			return ""
		}
		if email, ok := lookup(*r.userID); ok {
			return email
		}
	}
	return ""
}
