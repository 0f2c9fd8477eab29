// file: internals/features/courses/course/model/course_model.go
package model

import (
	"time"

	helper "kodingku_backend/internals/helpers"
	"kodingku_backend/internals/features/portability/schema"
)

// Nilai yang diizinkan untuk kolom service & visibility.
var (
	CourseServices     = []string{"native", "lti"}
	CourseVisibilities = []string{"private", "public"}
)

type CourseModel struct {
	ID      uint    `gorm:"primaryKey;column:id" json:"id"`
	Name    string  `gorm:"type:varchar(255);not null;column:name" json:"name"`
	URL     *string `gorm:"type:varchar(255);column:url" json:"url"`
	OwnerID *uint   `gorm:"index;column:owner_id" json:"owner_id"`

	// Course LTI dikenali lewat pasangan (service, external_id).
	Service    string `gorm:"type:varchar(80);not null;default:'native';column:service" json:"service"`
	ExternalID string `gorm:"type:varchar(255);default:'';index;column:external_id" json:"external_id"`
	Endpoint   string `gorm:"type:text;column:endpoint" json:"endpoint"`

	Visibility string `gorm:"type:varchar(80);not null;default:'private';column:visibility" json:"visibility"`
	Term       string `gorm:"type:varchar(255);default:'';column:term" json:"term"`

	// Blob JSON bebas; isinya milik frontend, backend tidak menginterpretasi.
	Settings string `gorm:"type:text;column:settings" json:"settings"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (CourseModel) TableName() string { return "courses" }

// CourseSchema: id & date_modified selalu server-side; owner_id__email
// hanya field denormalisasi untuk pembaca, bukan kolom.
var CourseSchema = schema.BaseSpec("owner_id__email")

func (c *CourseModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup) map[string]any {
	return map[string]any{
		"_schema_version": schema.CurrentVersion,
		"id":              c.ID,
		"name":            c.Name,
		"url":             c.URL,
		"owner_id":        c.OwnerID,
		"owner_id__email": owner.Resolve(lookup),
		"service":         c.Service,
		"external_id":     c.ExternalID,
		"endpoint":        c.Endpoint,
		"visibility":      c.Visibility,
		"term":            c.Term,
		"settings":        c.Settings,
		"date_created":    helper.FormatSchemaTime(c.DateCreated),
		"date_modified":   helper.FormatSchemaTime(c.DateModified),
	}
}

// DecodeCourseFields menerapkan payload hasil schema.Normalize ke model.
// Kolom yang tidak hadir di payload dibiarkan apa adanya.
func (c *CourseModel) DecodeCourseFields(fields schema.Fields) {
	if fields.Has("name") {
		c.Name = fields.Str("name")
	}
	if fields.Has("url") {
		c.URL = fields.StrPtr("url")
	}
	if fields.Has("owner_id") {
		c.OwnerID = fields.UintPtr("owner_id")
	}
	if fields.Has("service") {
		c.Service = fields.Str("service")
	}
	if fields.Has("external_id") {
		c.ExternalID = fields.Str("external_id")
	}
	if fields.Has("endpoint") {
		c.Endpoint = fields.Str("endpoint")
	}
	if fields.Has("visibility") {
		c.Visibility = fields.Str("visibility")
	}
	if fields.Has("term") {
		c.Term = fields.Str("term")
	}
	if fields.Has("settings") {
		c.Settings = fields.Str("settings")
	}
	if t, ok := fields.Time("date_created"); ok {
		c.DateCreated = t
	}
}
