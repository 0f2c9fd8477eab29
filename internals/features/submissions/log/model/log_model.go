// file: internals/features/submissions/log/model/log_model.go
package model

import (
	"time"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// LogModel: event append-only dari client, satu baris per kejadian.
// Tidak pernah di-update setelah dibuat.
type LogModel struct {
	ID uint `gorm:"primaryKey;column:id" json:"id"`

	AssignmentID      *uint `gorm:"index:idx_log_history;column:assignment_id" json:"assignment_id"`
	AssignmentVersion int   `gorm:"not null;default:0;column:assignment_version" json:"assignment_version"`
	CourseID          *uint `gorm:"index:idx_log_history;column:course_id" json:"course_id"`
	SubjectID         *uint `gorm:"index:idx_log_history;column:subject_id" json:"subject_id"`

	EventType string `gorm:"type:varchar(255);not null;column:event_type" json:"event_type"`
	FilePath  string `gorm:"type:varchar(255);default:'';column:file_path" json:"file_path"`
	Category  string `gorm:"type:varchar(255);default:'';column:category" json:"category"`
	Label     string `gorm:"type:varchar(255);default:'';column:label" json:"label"`
	// message berisi data JSON-encoded milik client.
	Message         string `gorm:"type:text;column:message" json:"message"`
	ClientTimestamp string `gorm:"type:varchar(255);default:'';column:client_timestamp" json:"client_timestamp"`
	ClientTimezone  string `gorm:"type:varchar(255);default:'';column:client_timezone" json:"client_timezone"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (LogModel) TableName() string { return "logs" }

var LogSchema = schema.BaseSpec()

func (l *LogModel) EncodeJSON() map[string]any {
	return map[string]any{
		"_schema_version":    schema.CurrentVersion,
		"id":                 l.ID,
		"date_modified":      helper.FormatSchemaTime(l.DateModified),
		"date_created":       helper.FormatSchemaTime(l.DateCreated),
		"assignment_id":      l.AssignmentID,
		"assignment_version": l.AssignmentVersion,
		"course_id":          l.CourseID,
		"subject_id":         l.SubjectID,
		"event_type":         l.EventType,
		"file_path":          l.FilePath,
		"category":           l.Category,
		"label":              l.Label,
		"message":            l.Message,
		"client_timestamp":   l.ClientTimestamp,
		"client_timezone":    l.ClientTimezone,
	}
}
