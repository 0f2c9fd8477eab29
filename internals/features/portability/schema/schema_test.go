// file: internals/features/portability/schema/schema_test.go
package schema

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeVersionValidation(t *testing.T) {
	spec := BaseSpec()

	tests := []struct {
		name    string
		payload map[string]any
		wantErr bool
	}{
		{name: "tanpa versi", payload: map[string]any{"name": "x"}, wantErr: true},
		{name: "versi 0", payload: map[string]any{"_schema_version": 0}, wantErr: true},
		{name: "versi 3", payload: map[string]any{"_schema_version": 3}, wantErr: true},
		{name: "versi string", payload: map[string]any{"_schema_version": "dua"}, wantErr: true},
		{name: "versi 1", payload: map[string]any{"_schema_version": 1}},
		{name: "versi 2", payload: map[string]any{"_schema_version": 2}},
		{name: "versi float dari JSON", payload: map[string]any{"_schema_version": float64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.payload, spec, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrUnknownSchemaVersion) {
				t.Errorf("Normalize() error = %v, want ErrUnknownSchemaVersion", err)
			}
		})
	}
}

func TestNormalizeRenameByVersion(t *testing.T) {
	spec := BaseSpec()
	spec.Rename = map[int]map[string]string{
		1: {"body": "instructions", "give_feedback": "on_run"},
	}

	// payload v1 pakai key lama
	out, err := Normalize(map[string]any{
		"_schema_version": 1,
		"body":            "kerjakan soal",
		"give_feedback":   "print('ok')",
	}, spec, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out.Str("instructions") != "kerjakan soal" {
		t.Errorf("instructions = %q, want %q", out.Str("instructions"), "kerjakan soal")
	}
	if out.Has("body") {
		t.Error("key lama 'body' masih ada setelah rename")
	}
	if out.Str("on_run") != "print('ok')" {
		t.Errorf("on_run = %q", out.Str("on_run"))
	}

	// payload v2 tidak kena tabel rename v1
	out, err = Normalize(map[string]any{
		"_schema_version": 2,
		"body":            "bukan instructions",
	}, spec, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out.Has("instructions") {
		t.Error("rename v1 diterapkan ke payload v2")
	}
	if out.Str("body") != "bukan instructions" {
		t.Errorf("body = %q", out.Str("body"))
	}
}

func TestNormalizeOverridesAndIgnore(t *testing.T) {
	spec := BaseSpec("owner_id__email")

	out, err := Normalize(map[string]any{
		"_schema_version": 2,
		"id":              float64(42),
		"date_modified":   "2024-01-02 03:04:05",
		"owner_id__email": "asli@contoh.id",
		"name":            "dari payload",
		"course_id":       float64(7),
	}, spec, Fields{
		"name":      "dari override",
		"course_id": uint(9),
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	// override menang atas payload
	if out.Str("name") != "dari override" {
		t.Errorf("name = %q, want override", out.Str("name"))
	}
	if out.Uint("course_id") != 9 {
		t.Errorf("course_id = %d, want 9", out.Uint("course_id"))
	}
	// kolom ignore dibuang
	for _, k := range []string{"id", "date_modified", "owner_id__email"} {
		if out.Has(k) {
			t.Errorf("kolom %q seharusnya di-ignore", k)
		}
	}
}

func TestNormalizeParsesDateCreated(t *testing.T) {
	out, err := Normalize(map[string]any{
		"_schema_version": 2,
		"date_created":    "2023-06-15T10:30:00.000000Z",
	}, BaseSpec(), nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	got, ok := out.Time("date_created")
	if !ok {
		t.Fatal("date_created bukan time.Time")
	}
	want := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("date_created = %v, want %v", got, want)
	}

	_, err = Normalize(map[string]any{
		"_schema_version": 2,
		"date_created":    "bukan tanggal",
	}, BaseSpec(), nil)
	if err == nil {
		t.Error("date_created rusak seharusnya error")
	}
}

func TestFieldCoercion(t *testing.T) {
	f := Fields{
		"name":    "abc",
		"count":   float64(5),
		"flag":    true,
		"url":     nil,
		"bad_num": "lima",
	}
	if f.Str("name") != "abc" {
		t.Errorf("Str = %q", f.Str("name"))
	}
	if f.Int("count") != 5 {
		t.Errorf("Int = %d", f.Int("count"))
	}
	if f.Uint("count") != 5 {
		t.Errorf("Uint = %d", f.Uint("count"))
	}
	if !f.Bool("flag") {
		t.Error("Bool = false")
	}
	if f.StrPtr("url") != nil {
		t.Error("StrPtr(null) != nil")
	}
	if f.StrPtr("absen") != nil {
		t.Error("StrPtr(absen) != nil")
	}
	if f.Int("bad_num") != 0 {
		t.Errorf("Int(bad_num) = %d, want 0", f.Int("bad_num"))
	}
	if f.UintPtr("bad_num") != nil {
		t.Error("UintPtr(bad_num) != nil")
	}
}

func TestOwnerRefResolve(t *testing.T) {
	lookup := func(userID uint) (string, bool) {
		if userID == 7 {
			return "tujuh@contoh.id", true
		}
		return "", false
	}
	seven := uint(7)
	unknown := uint(99)

	tests := []struct {
		name string
		ref  OwnerRef
		want string
	}{
		{name: "skip", ref: SkipOwner(), want: ""},
		{name: "provided", ref: ProvidedOwner("langsung@contoh.id"), want: "langsung@contoh.id"},
		{name: "fetch ketemu", ref: FetchOwner(&seven), want: "tujuh@contoh.id"},
		{name: "fetch tidak ketemu", ref: FetchOwner(&unknown), want: ""},
		{name: "fetch nil id", ref: FetchOwner(nil), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Resolve(lookup); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
