// file: internals/features/assignments/group/model/assignment_group_model.go
package model

import (
	"time"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// AssignmentGroupModel mengelompokkan assignment dalam satu course.
// position padat & 1-based per course.
type AssignmentGroupModel struct {
	ID   uint    `gorm:"primaryKey;column:id" json:"id"`
	Name string  `gorm:"type:varchar(255);not null;default:'Untitled';column:name" json:"name"`
	URL  *string `gorm:"type:varchar(255);index;column:url" json:"url"`

	ForkedID      *uint `gorm:"column:forked_id" json:"forked_id"`
	ForkedVersion *int  `gorm:"column:forked_version" json:"forked_version"`
	OwnerID       *uint `gorm:"index;column:owner_id" json:"owner_id"`
	CourseID      *uint `gorm:"index;column:course_id" json:"course_id"`
	Position      int   `gorm:"not null;default:0;column:position" json:"position"`
	Version       int   `gorm:"not null;default:0;column:version" json:"version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (AssignmentGroupModel) TableName() string { return "assignment_groups" }

var AssignmentGroupSchema = schema.BaseSpec("owner_id__email")

func (g *AssignmentGroupModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup) map[string]any {
	return map[string]any{
		"_schema_version": schema.CurrentVersion,
		"name":            g.Name,
		"url":             g.URL,
		"forked_id":       g.ForkedID,
		"forked_version":  g.ForkedVersion,
		"owner_id":        g.OwnerID,
		"owner_id__email": owner.Resolve(lookup),
		"course_id":       g.CourseID,
		"position":        g.Position,
		"id":              g.ID,
		"date_modified":   helper.FormatSchemaTime(g.DateModified),
		"date_created":    helper.FormatSchemaTime(g.DateCreated),
	}
}

func (g *AssignmentGroupModel) DecodeGroupFields(fields schema.Fields) {
	if fields.Has("name") {
		g.Name = fields.Str("name")
	}
	if fields.Has("url") {
		g.URL = fields.StrPtr("url")
	}
	if fields.Has("forked_id") {
		g.ForkedID = fields.UintPtr("forked_id")
	}
	if fields.Has("forked_version") {
		g.ForkedVersion = fields.IntPtr("forked_version")
	}
	if fields.Has("owner_id") {
		g.OwnerID = fields.UintPtr("owner_id")
	}
	if fields.Has("course_id") {
		g.CourseID = fields.UintPtr("course_id")
	}
	if fields.Has("position") {
		g.Position = fields.Int("position")
	}
	if fields.Has("version") {
		g.Version = fields.Int("version")
	}
	if t, ok := fields.Time("date_created"); ok {
		g.DateCreated = t
	}
}

func (g *AssignmentGroupModel) GetFilename() string {
	if g.URL != nil && *g.URL != "" {
		return helper.SafeFilename(*g.URL) + ".json"
	}
	return helper.SafeFilename(g.Name) + ".json"
}

// AssignmentGroupMembershipModel menautkan assignment ke group.
// Scoping course selalu lewat group-nya, bukan kolom sendiri.
type AssignmentGroupMembershipModel struct {
	ID                uint `gorm:"primaryKey;column:id" json:"id"`
	AssignmentGroupID uint `gorm:"not null;index;column:assignment_group_id" json:"assignment_group_id"`
	AssignmentID      uint `gorm:"not null;index;column:assignment_id" json:"assignment_id"`
	Position          int  `gorm:"not null;default:0;column:position" json:"position"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (AssignmentGroupMembershipModel) TableName() string { return "assignment_group_memberships" }

// Membership di-encode dengan versi 1; URL group/assignment hanya alat
// rujukan saat import, bukan kolom.
const MembershipSchemaVersion = 1

var MembershipSchema = schema.Spec{
	Ignore: map[int][]string{
		1: {"id", "date_modified", "assignment_group_url", "assignment_url", "course_id"},
		2: {"id", "date_modified", "assignment_group_url", "assignment_url", "course_id"},
	},
}

func (m *AssignmentGroupMembershipModel) EncodeJSON(groupURL, assignmentURL *string) map[string]any {
	return map[string]any{
		"_schema_version":      MembershipSchemaVersion,
		"assignment_group_id":  m.AssignmentGroupID,
		"assignment_group_url": groupURL,
		"assignment_id":        m.AssignmentID,
		"assignment_url":       assignmentURL,
		"position":             m.Position,
		"id":                   m.ID,
		"date_modified":        helper.FormatSchemaTime(m.DateModified),
		"date_created":         helper.FormatSchemaTime(m.DateCreated),
	}
}

func (m *AssignmentGroupMembershipModel) DecodeMembershipFields(fields schema.Fields) {
	if fields.Has("assignment_group_id") {
		m.AssignmentGroupID = fields.Uint("assignment_group_id")
	}
	if fields.Has("assignment_id") {
		m.AssignmentID = fields.Uint("assignment_id")
	}
	if fields.Has("position") {
		m.Position = fields.Int("position")
	}
	if t, ok := fields.Time("date_created"); ok {
		m.DateCreated = t
	}
}
