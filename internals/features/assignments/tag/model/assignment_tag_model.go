// file: internals/features/assignments/tag/model/assignment_tag_model.go
package model

import (
	"time"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// Klasifikasi tag.
var (
	TagKinds  = []string{"objective", "topic", "mistake", "misconception", "compliment"}
	TagLevels = []string{"familiar", "exposed", "mastered", "learning"}
)

type AssignmentTagModel struct {
	ID          uint   `gorm:"primaryKey;column:id" json:"id"`
	Name        string `gorm:"type:varchar(255);not null;default:'Blank Tag';column:name" json:"name"`
	OwnerID     *uint  `gorm:"index;column:owner_id" json:"owner_id"`
	CourseID    *uint  `gorm:"index;column:course_id" json:"course_id"`
	Kind        string `gorm:"type:varchar(255);not null;default:'objective';column:kind" json:"kind"`
	Description string `gorm:"type:text;column:description" json:"description"`
	Level       string `gorm:"type:varchar(255);not null;default:'familiar';column:level" json:"level"`
	Version     string `gorm:"type:varchar(255);not null;default:'0.0.1';column:version" json:"version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (AssignmentTagModel) TableName() string { return "assignment_tags" }

var AssignmentTagSchema = schema.BaseSpec("owner_id__email")

func (t *AssignmentTagModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup) map[string]any {
	return map[string]any{
		"_schema_version": schema.CurrentVersion,
		"name":            t.Name,
		"owner_id":        t.OwnerID,
		"owner_id__email": owner.Resolve(lookup),
		"course_id":       t.CourseID,
		"kind":            t.Kind,
		"description":     t.Description,
		"level":           t.Level,
		"version":         t.Version,
		"id":              t.ID,
		"date_modified":   helper.FormatSchemaTime(t.DateModified),
		"date_created":    helper.FormatSchemaTime(t.DateCreated),
	}
}

func (t *AssignmentTagModel) DecodeTagFields(fields schema.Fields) {
	if fields.Has("name") {
		t.Name = fields.Str("name")
	}
	if fields.Has("owner_id") {
		t.OwnerID = fields.UintPtr("owner_id")
	}
	if fields.Has("course_id") {
		t.CourseID = fields.UintPtr("course_id")
	}
	if fields.Has("kind") {
		t.Kind = fields.Str("kind")
	}
	if fields.Has("description") {
		t.Description = fields.Str("description")
	}
	if fields.Has("level") {
		t.Level = fields.Str("level")
	}
	if fields.Has("version") {
		t.Version = fields.Str("version")
	}
	if ts, ok := fields.Time("date_created"); ok {
		t.DateCreated = ts
	}
}

// Tabel join many-to-many assignment ↔ tag.
type AssignmentTagMembershipModel struct {
	AssignmentID    uint `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	AssignmentTagID uint `gorm:"primaryKey;column:assignment_tag_id" json:"assignment_tag_id"`
}

func (AssignmentTagMembershipModel) TableName() string { return "assignment_tag_membership" }
