// file: internals/features/submissions/report/model/report_model.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReportModel: ringkasan hasil grading yang dibangkitkan server untuk
// satu course (mis. rekap skor per assignment). content bebas berbentuk
// JSON terstruktur.
type ReportModel struct {
	ID       uint           `gorm:"primaryKey;column:id" json:"id"`
	Title    string         `gorm:"type:varchar(255);not null;column:title" json:"title"`
	Content  datatypes.JSON `gorm:"type:jsonb;column:content" json:"content"`
	CourseID *uint          `gorm:"index;column:course_id" json:"course_id"`
	OwnerID  *uint          `gorm:"column:owner_id" json:"owner_id"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (ReportModel) TableName() string { return "reports" }

// GraderModel memetakan grader ke murid yang jadi tanggungannya dalam
// satu course.
type GraderModel struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	CourseID     *uint  `gorm:"index;column:course_id" json:"course_id"`
	StudentID    *uint  `gorm:"index;column:student_id" json:"student_id"`
	GraderID     *uint  `gorm:"index;column:grader_id" json:"grader_id"`
	Relationship string `gorm:"type:varchar(80);not null;default:'grader';column:relationship" json:"relationship"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (GraderModel) TableName() string { return "graders" }
