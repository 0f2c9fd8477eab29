// file: internals/features/submissions/submission/model/submission_model.go
package model

import (
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
)

// Status pengerjaan submission.
const (
	// Initialized: nilai virtual saat submission belum ada di DB.
	StatusInitialized = "Initialized"
	StatusStarted     = "Started"
	StatusInProgress  = "inProgress"
	StatusSubmitted   = "Submitted"
	StatusCompleted   = "Completed"
)

var ValidSubmissionStatuses = []string{
	StatusStarted, StatusInProgress, StatusSubmitted, StatusCompleted,
}

// Status penilaian.
const (
	GradingFullyGraded   = "FullyGraded"
	GradingPending       = "Pending"
	GradingPendingManual = "PendingManual"
	GradingFailed        = "Failed"
	GradingNotReady      = "NotReady"
)

var ValidGradingStatuses = []string{
	GradingFullyGraded, GradingPending, GradingPendingManual,
	GradingFailed, GradingNotReady,
}

// Nama "file" yang boleh disimpan murid lewat SaveCode.
var StudentFilenames = []string{"#extra_student_files.blockpy", "answer.py"}

// SubmissionModel: pekerjaan satu user atas satu assignment dalam satu
// course. Unik per (assignment, course, user).
type SubmissionModel struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	Code       string `gorm:"type:text;column:code" json:"code"`
	ExtraFiles string `gorm:"type:text;column:extra_files" json:"extra_files"`
	URL        string `gorm:"type:text;column:url" json:"url"`
	Endpoint   string `gorm:"type:text;column:endpoint" json:"endpoint"`

	// Skor dari skala 100.
	Score            int    `gorm:"not null;default:0;column:score" json:"score"`
	Correct          bool   `gorm:"not null;default:false;column:correct" json:"correct"`
	SubmissionStatus string `gorm:"type:varchar(255);not null;default:'Started';column:submission_status" json:"submission_status"`
	GradingStatus    string `gorm:"type:varchar(255);not null;default:'NotReady';column:grading_status" json:"grading_status"`

	AssignmentID      *uint `gorm:"index:idx_submission_lookup;column:assignment_id" json:"assignment_id"`
	AssignmentGroupID *uint `gorm:"column:assignment_group_id" json:"assignment_group_id"`
	CourseID          *uint `gorm:"index:idx_submission_lookup;column:course_id" json:"course_id"`
	UserID            *uint `gorm:"index:idx_submission_lookup;column:user_id" json:"user_id"`
	AssignmentVersion int   `gorm:"not null;default:0;column:assignment_version" json:"assignment_version"`
	Version           int   `gorm:"not null;default:0;column:version" json:"version"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (SubmissionModel) TableName() string { return "submissions" }

var SubmissionSchema = schema.BaseSpec("user_id__email")

func (s *SubmissionModel) EncodeJSON(owner schema.OwnerRef, lookup schema.EmailLookup) map[string]any {
	return map[string]any{
		"_schema_version":    schema.CurrentVersion,
		"code":               s.Code,
		"extra_files":        s.ExtraFiles,
		"url":                s.URL,
		"endpoint":           s.Endpoint,
		"score":              s.Score,
		"correct":            s.Correct,
		"assignment_id":      s.AssignmentID,
		"course_id":          s.CourseID,
		"user_id":            s.UserID,
		"assignment_version": s.AssignmentVersion,
		"version":            s.Version,
		"submission_status":  s.SubmissionStatus,
		"grading_status":     s.GradingStatus,
		"user_id__email":     owner.Resolve(lookup),
		"id":                 s.ID,
		"date_modified":      helper.FormatSchemaTime(s.DateModified),
		"date_created":       helper.FormatSchemaTime(s.DateCreated),
	}
}

// ExtraFileEntry: bentuk list dari blob extra_files.
type ExtraFileEntry struct {
	Filename string `json:"filename"`
	Contents string `json:"contents"`
}

// DecodeExtraFiles menerima dua bentuk blob: object {nama: isi} atau
// list [{filename, contents}]. Blob korup dianggap kosong.
func (s *SubmissionModel) DecodeExtraFiles() map[string]string {
	files := map[string]string{}
	if s.ExtraFiles == "" {
		return files
	}
	var asMap map[string]string
	if err := sonic.UnmarshalString(s.ExtraFiles, &asMap); err == nil {
		return asMap
	}
	var asList []ExtraFileEntry
	if err := sonic.UnmarshalString(s.ExtraFiles, &asList); err == nil {
		for _, entry := range asList {
			files[entry.Filename] = entry.Contents
		}
	}
	return files
}

// EncodeHuman: representasi per-file yang enak dibaca manusia.
// answer.py + _grade.json + extra files.
func (s *SubmissionModel) EncodeHuman() (map[string]string, error) {
	extraFiles := s.DecodeExtraFiles()

	names := make([]string, 0, 1+len(extraFiles))
	names = append(names, "answer.py")
	for name := range extraFiles {
		names = append(names, name)
	}

	grade, err := sonic.MarshalString(map[string]any{
		"score":              s.Score,
		"correct":            s.Correct,
		"submission_status":  s.SubmissionStatus,
		"grading_status":     s.GradingStatus,
		"assignment_id":      s.AssignmentID,
		"id":                 s.ID,
		"course_id":          s.CourseID,
		"user_id":            s.UserID,
		"assignment_version": s.AssignmentVersion,
		"version":            s.Version,
		"files":              names,
	})
	if err != nil {
		return nil, err
	}

	files := map[string]string{
		"answer.py":   s.Code,
		"_grade.json": grade,
	}
	for name, contents := range extraFiles {
		files[name] = contents
	}
	return files, nil
}

// SaveCode menyalurkan "file" murid ke kolom yang sesuai; nama lain
// diabaikan. version naik, assignment_version disamakan dengan versi
// assignment saat ini.
func (s *SubmissionModel) SaveCode(filename, code string, assignmentVersion int) {
	switch filename {
	case "#extra_student_files.blockpy":
		s.ExtraFiles = code
	case "answer.py":
		s.Code = code
	}
	s.Version++
	s.AssignmentVersion = assignmentVersion
}

// SetSubmissionStatus: status di luar daftar valid diabaikan (return false).
func (s *SubmissionModel) SetSubmissionStatus(status string) bool {
	for _, valid := range ValidSubmissionStatuses {
		if status == valid {
			s.SubmissionStatus = status
			return true
		}
	}
	return false
}

func (s *SubmissionModel) SetGradingStatus(status string) bool {
	for _, valid := range ValidGradingStatuses {
		if status == valid {
			s.GradingStatus = status
			return true
		}
	}
	return false
}

// FullStatus: status gabungan untuk ditampilkan ke murid.
// allowHide + assignment hidden menyembunyikan status sebenarnya.
func (s *SubmissionModel) FullStatus(assignmentHidden, assignmentReviewed, allowHide bool) string {
	switch {
	case allowHide && assignmentHidden:
		return "????"
	case s.Correct:
		return "Complete"
	case assignmentReviewed:
		if s.GradingStatus == GradingPendingManual {
			return "Pending review"
		}
		return s.SubmissionStatus
	case s.Score != 0:
		return "Incomplete (" + strconv.Itoa(s.Score) + "%)"
	default:
		return "Incomplete"
	}
}
