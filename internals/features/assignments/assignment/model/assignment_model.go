// file: internals/features/assignments/assignment/model/assignment_model.go
package model

import (
	"crypto/subtle"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// Tipe assignment yang dikenal.
var AssignmentTypes = []string{"blockpy", "maze"}

// Nama "file" virtual yang boleh disimpan instructor lewat SaveFile.
var InstructorFilenames = []string{
	"!on_run.py", "!on_change.py", "!on_eval.py",
	"^starting_code.py", "!assignment_settings.blockpy", "!instructions.md",
	"#extra_instructor_files.blockpy", "#extra_starting_files.blockpy",
}

// AssignmentModel adalah soal individual. Terikat kuat ke satu course dan
// owner, tapi tetap bisa dipakai submission dari course lain.
type AssignmentModel struct {
	ID   uint    `gorm:"primaryKey;column:id" json:"id"`
	Name string  `gorm:"type:varchar(255);not null;default:'Untitled';column:name" json:"name"`
	URL  *string `gorm:"type:varchar(255);uniqueIndex:idx_assignment_course_url;column:url" json:"url"`

	Type         string `gorm:"type:varchar(10);not null;default:'blockpy';column:type" json:"type"`
	Instructions string `gorm:"type:text;column:instructions" json:"instructions"`

	// reviewed: submission-nya disarankan dinilai manual.
	Reviewed bool `gorm:"not null;default:false;column:reviewed" json:"reviewed"`
	// hidden: status Complete disembunyikan dari murid.
	Hidden bool `gorm:"not null;default:false;column:hidden" json:"hidden"`
	// public: submission boleh dilihat user lain.
	Public bool `gorm:"not null;default:false;column:public" json:"public"`

	// Daftar network yang diizinkan/diblok, dipisah koma. Lihat IsAllowed.
	IPRanges string `gorm:"type:text;column:ip_ranges" json:"ip_ranges"`
	// Setting tambahan berupa blob JSON.
	Settings string `gorm:"type:text;column:settings" json:"settings"`

	OnRun                string `gorm:"type:text;column:on_run" json:"on_run"`
	OnChange             string `gorm:"type:text;column:on_change" json:"on_change"`
	OnEval               string `gorm:"type:text;column:on_eval" json:"on_eval"`
	StartingCode         string `gorm:"type:text;column:starting_code" json:"starting_code"`
	ExtraInstructorFiles string `gorm:"type:text;column:extra_instructor_files" json:"extra_instructor_files"`
	ExtraStartingFiles   string `gorm:"type:text;column:extra_starting_files" json:"extra_starting_files"`

	ForkedID      *uint `gorm:"column:forked_id" json:"forked_id"`
	ForkedVersion *int  `gorm:"column:forked_version" json:"forked_version"`
	OwnerID       *uint `gorm:"index;column:owner_id" json:"owner_id"`
	CourseID      *uint `gorm:"uniqueIndex:idx_assignment_course_url;index;column:course_id" json:"course_id"`
	Version       int   `gorm:"not null;default:0;column:version" json:"version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (AssignmentModel) TableName() string { return "assignments" }

// AssignmentSchema: payload v1 memakai nama kolom lama; tags dan
// sample_submissions hanya referensi berat di encode, bukan kolom.
var AssignmentSchema = schema.Spec{
	Ignore: map[int][]string{
		1: {"id", "date_modified", "owner_id__email", "tags", "sample_submissions"},
		2: {"id", "date_modified", "owner_id__email", "tags", "sample_submissions"},
	},
	Rename: map[int]map[string]string{
		1: {
			"body":          "instructions",
			"give_feedback": "on_run",
			"on_step":       "on_change",
		},
	},
}

// EncodeJSON serialisasi dengan versi schema terbaru. tags dan samples
// disediakan caller supaya model tidak perlu akses DB.
func (a *AssignmentModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup,
	tags []map[string]any, samples []map[string]any) map[string]any {
	if tags == nil {
		tags = []map[string]any{}
	}
	if samples == nil {
		samples = []map[string]any{}
	}
	return map[string]any{
		"_schema_version": schema.CurrentVersion,
		"name":            a.Name,
		"url":             a.URL,
		"type":            a.Type,
		"instructions":    a.Instructions,
		"reviewed":        a.Reviewed,
		"hidden":          a.Hidden,
		"public":          a.Public,
		"settings":        a.Settings,
		"ip_ranges":       a.IPRanges,
		"on_run":          a.OnRun,
		"on_change":       a.OnChange,
		"on_eval":         a.OnEval,
		"starting_code":   a.StartingCode,
		"extra_instructor_files": a.ExtraInstructorFiles,
		"extra_starting_files":   a.ExtraStartingFiles,
		"forked_id":              a.ForkedID,
		"forked_version":         a.ForkedVersion,
		"owner_id":               a.OwnerID,
		"owner_id__email":        owner.Resolve(lookup),
		"course_id":              a.CourseID,
		"version":                a.Version,
		"id":                     a.ID,
		"date_modified":          helper.FormatSchemaTime(a.DateModified),
		"date_created":           helper.FormatSchemaTime(a.DateCreated),
		"tags":                   tags,
		"sample_submissions":     samples,
	}
}

func (a *AssignmentModel) DecodeAssignmentFields(fields schema.Fields) {
	if fields.Has("name") {
		a.Name = fields.Str("name")
	}
	if fields.Has("url") {
		a.URL = fields.StrPtr("url")
	}
	if fields.Has("type") {
		a.Type = fields.Str("type")
	}
	if fields.Has("instructions") {
		a.Instructions = fields.Str("instructions")
	}
	if fields.Has("reviewed") {
		a.Reviewed = fields.Bool("reviewed")
	}
	if fields.Has("hidden") {
		a.Hidden = fields.Bool("hidden")
	}
	if fields.Has("public") {
		a.Public = fields.Bool("public")
	}
	if fields.Has("settings") {
		a.Settings = fields.Str("settings")
	}
	if fields.Has("ip_ranges") {
		a.IPRanges = fields.Str("ip_ranges")
	}
	if fields.Has("on_run") {
		a.OnRun = fields.Str("on_run")
	}
	if fields.Has("on_change") {
		a.OnChange = fields.Str("on_change")
	}
	if fields.Has("on_eval") {
		a.OnEval = fields.Str("on_eval")
	}
	if fields.Has("starting_code") {
		a.StartingCode = fields.Str("starting_code")
	}
	if fields.Has("extra_instructor_files") {
		a.ExtraInstructorFiles = fields.Str("extra_instructor_files")
	}
	if fields.Has("extra_starting_files") {
		a.ExtraStartingFiles = fields.Str("extra_starting_files")
	}
	if fields.Has("forked_id") {
		a.ForkedID = fields.UintPtr("forked_id")
	}
	if fields.Has("forked_version") {
		a.ForkedVersion = fields.IntPtr("forked_version")
	}
	if fields.Has("owner_id") {
		a.OwnerID = fields.UintPtr("owner_id")
	}
	if fields.Has("course_id") {
		a.CourseID = fields.UintPtr("course_id")
	}
	if fields.Has("version") {
		a.Version = fields.Int("version")
	}
	if t, ok := fields.Time("date_created"); ok {
		a.DateCreated = t
	}
}

// Title versi nama yang enak dibaca manusia.
func (a *AssignmentModel) Title() string {
	if a.Name != "Untitled" {
		return a.Name
	}
	return "Untitled (" + strconv.FormatUint(uint64(a.ID), 10) + ")"
}

func (a *AssignmentModel) Slug() string {
	return helper.Slugify(a.Name, 100)
}

// GetFilename nama file aman untuk filesystem, dari URL atau nama.
func (a *AssignmentModel) GetFilename(extension string) string {
	if a.URL != nil && *a.URL != "" {
		return helper.SafeFilename(*a.URL) + extension
	}
	return helper.SafeFilename(a.Name) + extension
}

// SaveFile menyalurkan "file" instructor ke kolom yang sesuai.
// Nama yang tidak dikenal diabaikan; version tetap naik.
func (a *AssignmentModel) SaveFile(filename, code string) {
	switch filename {
	case "!on_run.py":
		a.OnRun = code
	case "!on_change.py":
		a.OnChange = code
	case "!on_eval.py":
		a.OnEval = code
	case "^starting_code.py":
		a.StartingCode = code
	case "!assignment_settings.blockpy":
		a.Settings = code
	case "!instructions.md":
		a.Instructions = code
	case "#extra_instructor_files.blockpy":
		a.ExtraInstructorFiles = code
	case "#extra_starting_files.blockpy":
		a.ExtraStartingFiles = code
	}
	a.Version++
}

// IsAllowed menentukan apakah alamat IP boleh membuka assignment ini.
// ip_ranges kosong = semua boleh. Kalau terisi, default-nya semua diblok:
// entry polos masuk whitelist, prefix ^ langsung menolak (blacklist),
// prefix ! mengalahkan blacklist. Network range (CIDR) didukung.
// IP candidate yang tidak valid ditolak; entry yang tidak valid dilewati.
func (a *AssignmentModel) IsAllowed(ip string) bool {
	ranges := strings.TrimSpace(a.IPRanges)
	if ranges == "" {
		return true
	}
	needle, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	var allowed, blacklisted, whitelisted bool
	for _, token := range strings.Split(ranges, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		switch {
		case strings.HasPrefix(token, "^"):
			if contains(token[1:], needle) {
				blacklisted = true
			}
		case strings.HasPrefix(token, "!"):
			if contains(token[1:], needle) {
				whitelisted = true
			}
		default:
			if contains(token, needle) {
				allowed = true
			}
		}
	}
	return whitelisted || (!blacklisted && allowed)
}

// contains: network bisa CIDR atau satu alamat. Tidak valid = false.
func contains(network string, needle netip.Addr) bool {
	if strings.Contains(network, "/") {
		prefix, err := netip.ParsePrefix(network)
		if err != nil {
			return false
		}
		return prefix.Contains(needle)
	}
	addr, err := netip.ParseAddr(network)
	if err != nil {
		return false
	}
	return addr == needle
}

// AssignmentSettings adalah bagian settings yang dipahami backend.
// Kolom settings tetap disimpan mentah; key lain milik frontend.
type AssignmentSettings struct {
	Passcode string `json:"passcode"`
}

// ParseSettings dekode blob settings; blob kosong/korup dianggap default.
func (a *AssignmentModel) ParseSettings() AssignmentSettings {
	var parsed AssignmentSettings
	if a.Settings == "" {
		return parsed
	}
	if err := sonic.UnmarshalString(a.Settings, &parsed); err != nil {
		return AssignmentSettings{}
	}
	return parsed
}

// GetSetting baca satu key dari blob settings; fallback ke defaultValue.
func (a *AssignmentModel) GetSetting(key string, defaultValue any) any {
	if a.Settings == "" {
		return defaultValue
	}
	var settings map[string]any
	if err := sonic.UnmarshalString(a.Settings, &settings); err != nil {
		return defaultValue
	}
	if v, ok := settings[key]; ok {
		return v
	}
	return defaultValue
}

// UpdateSetting tulis satu key ke blob settings dan menaikkan version.
func (a *AssignmentModel) UpdateSetting(key string, value any) error {
	settings := map[string]any{}
	if a.Settings != "" {
		if err := sonic.UnmarshalString(a.Settings, &settings); err != nil {
			return err
		}
	}
	settings[key] = value
	encoded, err := sonic.MarshalString(settings)
	if err != nil {
		return err
	}
	a.Settings = encoded
	a.Version++
	return nil
}

// PasscodeFails: true kalau passcode tersimpan ada dan input tidak cocok.
// Tanpa passcode tersimpan, tidak pernah gagal. Perbandingan constant-time.
func (a *AssignmentModel) PasscodeFails(given string) bool {
	actual := a.ParseSettings().Passcode
	if actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(actual)) != 1
}

func (a *AssignmentModel) HasPasscode() bool {
	return a.ParseSettings().Passcode != ""
}

// ContextIsValid: context_id LTI harus sama dengan external_id course-nya.
func (a *AssignmentModel) ContextIsValid(contextID string, courseExternalID string, courseFound bool) bool {
	if !courseFound {
		return false
	}
	return courseExternalID == contextID
}
