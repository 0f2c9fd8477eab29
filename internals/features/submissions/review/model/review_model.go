// file: internals/features/submissions/review/model/review_model.go
package model

import (
	"time"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// ReviewModel: komentar grader pada satu submission. Review generic
// bisa di-fork; review hasil fork mewarisi skor induknya selama skornya
// sendiri belum diisi.
type ReviewModel struct {
	ID      uint   `gorm:"primaryKey;column:id" json:"id"`
	Comment string `gorm:"type:text;column:comment" json:"comment"`
	// location: posisi di kode yang dikomentari (format milik frontend).
	Location string `gorm:"type:text;column:location" json:"location"`
	Generic  bool   `gorm:"not null;default:false;column:generic" json:"generic"`
	TagID    *uint  `gorm:"column:tag_id" json:"tag_id"`
	// Skor dari skala 100; nil = belum dinilai (pakai warisan fork).
	Score *int `gorm:"column:score" json:"score"`

	SubmissionID      *uint `gorm:"index;column:submission_id" json:"submission_id"`
	AuthorID          *uint `gorm:"column:author_id" json:"author_id"`
	AssignmentVersion int   `gorm:"not null;default:0;column:assignment_version" json:"assignment_version"`
	SubmissionVersion int   `gorm:"not null;default:0;column:submission_version" json:"submission_version"`
	Version           int   `gorm:"not null;default:0;column:version" json:"version"`
	ForkedID          *uint `gorm:"column:forked_id" json:"forked_id"`
	ForkedVersion     *int  `gorm:"column:forked_version" json:"forked_version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (ReviewModel) TableName() string { return "reviews" }

var ReviewSchema = schema.BaseSpec()

func (r *ReviewModel) EncodeJSON() map[string]any {
	return map[string]any{
		"_schema_version":    schema.CurrentVersion,
		"id":                 r.ID,
		"date_modified":      helper.FormatSchemaTime(r.DateModified),
		"date_created":       helper.FormatSchemaTime(r.DateCreated),
		"comment":            r.Comment,
		"location":           r.Location,
		"generic":            r.Generic,
		"tag_id":             r.TagID,
		"score":              r.Score,
		"submission_id":      r.SubmissionID,
		"author_id":          r.AuthorID,
		"assignment_version": r.AssignmentVersion,
		"submission_version": r.SubmissionVersion,
		"version":            r.Version,
		"forked_id":          r.ForkedID,
		"forked_version":     r.ForkedVersion,
	}
}
