// file: internals/features/assignments/sample/model/sample_submission_model.go
package model

import (
	"time"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// Status hasil menjalankan sample terhadap assignment-nya.
var SampleStatuses = []string{"unknown", "passed", "failed", "error", "skipped"}

// SampleSubmissionModel: jawaban contoh milik instructor untuk regression
// testing soal.
type SampleSubmissionModel struct {
	ID     uint   `gorm:"primaryKey;column:id" json:"id"`
	Name   string `gorm:"type:varchar(255);not null;default:'Blank Submission';column:name" json:"name"`
	Status string `gorm:"type:varchar(255);not null;default:'unknown';column:status" json:"status"`

	Code       string `gorm:"type:text;column:code" json:"code"`
	ExtraFiles string `gorm:"type:text;column:extra_files" json:"extra_files"`
	Score      int    `gorm:"not null;default:0;column:score" json:"score"`
	Correct    bool   `gorm:"not null;default:false;column:correct" json:"correct"`
	Output     string `gorm:"type:text;column:output" json:"output"`
	Inputs     string `gorm:"type:text;column:inputs" json:"inputs"`
	Feedback   string `gorm:"type:text;column:feedback" json:"feedback"`

	ForkedID      *uint `gorm:"column:forked_id" json:"forked_id"`
	ForkedVersion int   `gorm:"not null;default:0;column:forked_version" json:"forked_version"`
	OwnerID       *uint `gorm:"index;column:owner_id" json:"owner_id"`
	AssignmentID  *uint `gorm:"index;column:assignment_id" json:"assignment_id"`
	Version       int   `gorm:"not null;default:0;column:version" json:"version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (SampleSubmissionModel) TableName() string { return "sample_submissions" }

var SampleSubmissionSchema = schema.BaseSpec("owner_id__email")

func (s *SampleSubmissionModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup) map[string]any {
	return map[string]any{
		"_schema_version": schema.CurrentVersion,
		"name":            s.Name,
		"status":          s.Status,
		"code":            s.Code,
		"extra_files":     s.ExtraFiles,
		"score":           s.Score,
		"correct":         s.Correct,
		"output":          s.Output,
		"inputs":          s.Inputs,
		"feedback":        s.Feedback,
		"forked_id":       s.ForkedID,
		"forked_version":  s.ForkedVersion,
		"owner_id":        s.OwnerID,
		"owner_id__email": owner.Resolve(lookup),
		"assignment_id":   s.AssignmentID,
		"version":         s.Version,
		"id":              s.ID,
		"date_modified":   helper.FormatSchemaTime(s.DateModified),
		"date_created":    helper.FormatSchemaTime(s.DateCreated),
	}
}

func (s *SampleSubmissionModel) DecodeSampleFields(fields schema.Fields) {
	if fields.Has("name") {
		s.Name = fields.Str("name")
	}
	if fields.Has("status") {
		s.Status = fields.Str("status")
	}
	if fields.Has("code") {
		s.Code = fields.Str("code")
	}
	if fields.Has("extra_files") {
		s.ExtraFiles = fields.Str("extra_files")
	}
	if fields.Has("score") {
		s.Score = fields.Int("score")
	}
	if fields.Has("correct") {
		s.Correct = fields.Bool("correct")
	}
	if fields.Has("output") {
		s.Output = fields.Str("output")
	}
	if fields.Has("inputs") {
		s.Inputs = fields.Str("inputs")
	}
	if fields.Has("feedback") {
		s.Feedback = fields.Str("feedback")
	}
	if fields.Has("forked_id") {
		s.ForkedID = fields.UintPtr("forked_id")
	}
	if fields.Has("forked_version") {
		s.ForkedVersion = fields.Int("forked_version")
	}
	if fields.Has("owner_id") {
		s.OwnerID = fields.UintPtr("owner_id")
	}
	if fields.Has("assignment_id") {
		s.AssignmentID = fields.UintPtr("assignment_id")
	}
	if fields.Has("version") {
		s.Version = fields.Int("version")
	}
	if t, ok := fields.Time("date_created"); ok {
		s.DateCreated = t
	}
}
