// file: internals/features/portability/progsnap/progsnap_service.go
//
// Export dataset ProgSnap2 (versi 6): zip berisi Readme, metadata,
// MainTable, snapshot CodeStates per event, dan link table Subject /
// Assignment / AssignmentGroup.
package progsnap

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	logModel "kodingku_backend/internals/features/submissions/log/model"
	userModel "kodingku_backend/internals/features/users/user/model"
)

const ToolInstanceID = "BPY5"

// Kolom MainTable.csv.
var MainTableHeaders = []string{
	"EventID", "Order", "SubjectID", "AssignmentID", "CourseID",
	"EventType", "CodeStateID",
	"ParentEventID",
	"ClientTimestamp", "ClientTimezone",
	"Score",
	"EditType",
	"CompileMessageType", "CompileMessageData", "CodeStateSection",
	"InterventionCategory", "InterventionType", "InterventionMessage",
	"ServerTimestamp", "ServerTimezone", "ToolInstances",
}

// Event yang mengubah code state berjalan.
var codeStateUpdateEventTypes = map[string]string{
	"File.Edit":              "GenericEdit",
	"X-File.Add":             "GenericEdit",
	"X-Instructor.File.Edit": "GenericEdit",
	"File.Create":            "GenericEdit",
}

const logBatchSize = 100

type ProgSnapService struct {
	DB *gorm.DB
}

func NewProgSnapService(db *gorm.DB) *ProgSnapService {
	return &ProgSnapService{DB: db}
}

// submissionKey mengidentifikasi satu pengerjaan: (subject, assignment, course).
type submissionKey struct {
	SubjectID    uint
	AssignmentID uint
	CourseID     uint
}

// codeState: isi file terakhir per pengerjaan.
type codeState map[string]string

// fingerprint: path→isi diurutkan jadi kunci dedup antar pengerjaan.
func (c codeState) fingerprint() string {
	paths := make([]string, 0, len(c))
	for path := range c {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	var b strings.Builder
	for _, path := range paths {
		contents := c[path]
		fmt.Fprintf(&b, "%d:%s=%d:%s;", len(path), path, len(contents), contents)
	}
	return b.String()
}

func (c codeState) clone() codeState {
	out := make(codeState, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Export menulis seluruh dataset sebagai zip ke w. Scan log dilakukan
// per batch dan bisa dibatalkan lewat ctx.
func (s *ProgSnapService) Export(ctx context.Context, w io.Writer, courseID uint, assignmentGroupIDs []uint) error {
	zipFile := zip.NewWriter(w)

	if err := writeZipString(zipFile, "Readme.txt", "Generated from BlockPy"); err != nil {
		return err
	}
	if err := s.writeMetadata(zipFile); err != nil {
		return err
	}

	codeStatesByID, err := s.writeMainTable(ctx, zipFile, courseID, assignmentGroupIDs)
	if err != nil {
		return err
	}
	for stateID, state := range codeStatesByID {
		for path, contents := range state {
			name := fmt.Sprintf("CodeStates/%d/%s", stateID, path)
			if err := writeZipString(zipFile, name, contents); err != nil {
				return err
			}
		}
	}

	if err := s.writeSubjectTable(zipFile, courseID); err != nil {
		return err
	}
	if err := s.writeAssignmentTables(zipFile, courseID, assignmentGroupIDs); err != nil {
		return err
	}
	return zipFile.Close()
}

func writeZipString(zipFile *zip.Writer, name, contents string) error {
	entry, err := zipFile.Create(name)
	if err != nil {
		return err
	}
	_, err = entry.Write([]byte(contents))
	return err
}

func (s *ProgSnapService) writeMetadata(zipFile *zip.Writer) error {
	entry, err := zipFile.Create("DatasetMetadata.csv")
	if err != nil {
		return err
	}
	writer := csv.NewWriter(entry)
	rows := [][]string{
		{"Property", "Value"},
		{"Version", "6"},
		{"IsEventOrderingConsistent", "false"},
		{"CodeStateRepresentation", "Directory"},
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// groupAssignmentIDs: semua assignment anggota group-group tsb.
func (s *ProgSnapService) groupAssignmentIDs(assignmentGroupIDs []uint) ([]uint, error) {
	var ids []uint
	err := s.DB.Model(&groupModel.AssignmentGroupMembershipModel{}).
		Where("assignment_group_id IN ?", assignmentGroupIDs).
		Distinct("assignment_id").
		Pluck("assignment_id", &ids).Error
	return ids, err
}

func (s *ProgSnapService) writeMainTable(ctx context.Context, zipFile *zip.Writer,
	courseID uint, assignmentGroupIDs []uint) (map[int]codeState, error) {
	entry, err := zipFile.Create("MainTable.csv")
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(entry)
	if err := writer.Write(MainTableHeaders); err != nil {
		return nil, err
	}

	query := s.DB.Where("course_id = ?", courseID)
	if assignmentGroupIDs != nil {
		assignmentIDs, err := s.groupAssignmentIDs(assignmentGroupIDs)
		if err != nil {
			return nil, err
		}
		query = query.Where("assignment_id IN ?", assignmentIDs)
	}

	stateIDs := map[string]int{}        // fingerprint → CodeStateID
	statesByID := map[int]codeState{}   // CodeStateID → isi snapshot
	latest := map[submissionKey]codeState{}
	scores := map[submissionKey]string{}
	orderID := 0

	var logs []logModel.LogModel
	result := query.Order("date_created ASC").
		FindInBatches(&logs, logBatchSize, func(tx *gorm.DB, batch int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range logs {
				row := s.toProgSnapEvent(&logs[i], orderID, stateIDs, statesByID, latest, scores)
				if err := writer.Write(row); err != nil {
					return err
				}
				orderID++
			}
			return nil
		})
	if result.Error != nil {
		return nil, result.Error
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return statesByID, nil
}

func (s *ProgSnapService) toProgSnapEvent(entry *logModel.LogModel, orderID int,
	stateIDs map[string]int, statesByID map[int]codeState,
	latest map[submissionKey]codeState, scores map[submissionKey]string) []string {

	key := submissionKey{
		SubjectID:    derefUint(entry.SubjectID),
		AssignmentID: derefUint(entry.AssignmentID),
		CourseID:     derefUint(entry.CourseID),
	}

	current, ok := latest[key]
	if !ok {
		current = codeState{}
	}
	editType := ""
	if mapped, ok := codeStateUpdateEventTypes[entry.EventType]; ok {
		current[entry.FilePath] = entry.Message
		editType = mapped
		latest[key] = current
	}
	fingerprint := current.fingerprint()
	stateID, ok := stateIDs[fingerprint]
	if !ok {
		stateID = len(stateIDs)
		stateIDs[fingerprint] = stateID
		statesByID[stateID] = current.clone()
	}

	score := ""
	switch {
	case entry.EventType == "Intervention" && entry.Category == "Complete":
		score = "1"
		scores[key] = score
	case entry.EventType == "X-Submission.LMS":
		score = entry.Message
		scores[key] = score
	}

	compileMessageType, compileMessageData := "", ""
	if entry.EventType == "Compile.Error" {
		compileMessageType = "Error"
		compileMessageData = entry.Message
	}

	interventionCategory, interventionType, interventionMessage := "", "", ""
	if entry.EventType == "Intervention" {
		interventionCategory = "Feedback"
		interventionType = entry.Category + "|" + entry.Label
		interventionMessage = entry.Message
	}

	return []string{
		strconv.FormatUint(uint64(entry.ID), 10),
		strconv.Itoa(orderID),
		formatUintPtr(entry.SubjectID),
		formatUintPtr(entry.AssignmentID),
		formatUintPtr(entry.CourseID),
		entry.EventType,
		strconv.Itoa(stateID),
		"", // ParentEventID
		clientTimestampToISO8601(entry.ClientTimestamp),
		entry.ClientTimezone,
		score,
		editType,
		compileMessageType,
		compileMessageData,
		entry.FilePath,
		interventionCategory,
		interventionType,
		interventionMessage,
		entry.DateCreated.Format("2006-01-02T15:04:05"),
		serverTimezone(),
		ToolInstanceID,
	}
}

// clientTimestampToISO8601: timestamp client berupa epoch milidetik.
// Kosong atau tidak numerik → "".
func clientTimestampToISO8601(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02T15:04:05")
}

/// serverTimezone: offset barat server dalam satuan 1/100 jam, 4 digit.
func serverTimezone() string {
	_, offsetEast := time.Now().Zone()
	west := -offsetEast
	return fmt.Sprintf("%04d", west/36)
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

func formatUintPtr(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func (s *ProgSnapService) writeSubjectTable(zipFile *zip.Writer, courseID uint) error {
	entry, err := zipFile.Create("LinkTables/Subject.csv")
	if err != nil {
		return err
	}
	writer := csv.NewWriter(entry)
	if err := writer.Write([]string{"SubjectID", "X-IsStaff", "X-Roles",
		"X-Name.Last", "X-Name.First", "X-Email"}); err != nil {
		return err
	}

	// user dengan role di course
	type roleUserRow struct {
		RoleName string
		userModel.UserModel
	}
	users := map[uint]userModel.UserModel{}
	userRoles := map[uint]map[string]bool{}

	var roleRows []roleUserRow
	if err := s.DB.Model(&userModel.RoleModel{}).
		Select("roles.name AS role_name, users.*").
		Joins("JOIN users ON users.id = roles.user_id").
		Where("roles.course_id = ?", courseID).
		Scan(&roleRows).Error; err != nil {
		return err
	}
	for _, row := range roleRows {
		if _, ok := users[row.ID]; !ok {
			users[row.ID] = row.UserModel
			userRoles[row.ID] = map[string]bool{}
		}
		userRoles[row.ID][row.RoleName] = true
	}

	// user tambahan yang hanya muncul di log
	var logUsers []userModel.UserModel
	if err := s.DB.Distinct("users.*").
		Joins("JOIN logs ON logs.subject_id = users.id").
		Where("logs.course_id = ?", courseID).
		Find(&logUsers).Error; err != nil {
		return err
	}
	for _, user := range logUsers {
		if _, ok := users[user.ID]; ok {
			continue
		}
		users[user.ID] = user
		roleSet := map[string]bool{}
		var roles []userModel.RoleModel
		if err := s.DB.Where("user_id = ? AND course_id = ?", user.ID, courseID).
			Find(&roles).Error; err != nil {
			return err
		}
		for _, role := range roles {
			roleSet[role.Name] = true
		}
		userRoles[user.ID] = roleSet
	}

	ordered := make([]userModel.UserModel, 0, len(users))
	for _, user := range users {
		ordered = append(ordered, user)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].LastName != ordered[j].LastName {
			return ordered[i].LastName < ordered[j].LastName
		}
		return ordered[i].FirstName < ordered[j].FirstName
	})

	for _, user := range ordered {
		roleNames := make([]string, 0, len(userRoles[user.ID]))
		for name := range userRoles[user.ID] {
			roleNames = append(roleNames, name)
		}
		sort.Strings(roleNames)
		isStaff := userModel.IsLTIInstructor(roleNames)
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(user.ID), 10),
			strconv.FormatBool(isStaff),
			strings.Join(roleNames, ", "),
			user.LastName,
			user.FirstName,
			user.Email,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *ProgSnapService) writeAssignmentTables(zipFile *zip.Writer, courseID uint, assignmentGroupIDs []uint) error {
	var assignments []assignmentModel.AssignmentModel
	allGroups := map[uint]groupModel.AssignmentGroupModel{}
	assignmentGroups := map[uint][]uint{}

	if assignmentGroupIDs == nil {
		// assignment yang muncul di log course
		if err := s.DB.Distinct("assignments.*").
			Joins("JOIN logs ON logs.assignment_id = assignments.id").
			Where("logs.course_id = ?", courseID).
			Find(&assignments).Error; err != nil {
			return err
		}
		for _, assignment := range assignments {
			var groups []groupModel.AssignmentGroupModel
			if err := s.DB.
				Joins("JOIN assignment_group_memberships m ON m.assignment_group_id = assignment_groups.id").
				Where("m.assignment_id = ?", assignment.ID).
				Find(&groups).Error; err != nil {
				return err
			}
			for _, group := range groups {
				allGroups[group.ID] = group
				assignmentGroups[assignment.ID] = append(assignmentGroups[assignment.ID], group.ID)
			}
		}
	} else {
		seen := map[uint]bool{}
		for _, groupID := range assignmentGroupIDs {
			var group groupModel.AssignmentGroupModel
			if err := s.DB.First(&group, groupID).Error; err != nil {
				return err
			}
			allGroups[group.ID] = group

			var members []assignmentModel.AssignmentModel
			if err := s.DB.
				Joins("JOIN assignment_group_memberships m ON m.assignment_id = assignments.id").
				Where("m.assignment_group_id = ?", groupID).
				Find(&members).Error; err != nil {
				return err
			}
			for _, assignment := range members {
				assignmentGroups[assignment.ID] = append(assignmentGroups[assignment.ID], groupID)
				if !seen[assignment.ID] {
					seen[assignment.ID] = true
					assignments = append(assignments, assignment)
				}
			}
		}
	}

	entry, err := zipFile.Create("LinkTables/Assignment.csv")
	if err != nil {
		return err
	}
	writer := csv.NewWriter(entry)
	if err := writer.Write([]string{"AssignmentId", "X-Version",
		"X-Name", "X-URL", "X-Instructions",
		"X-Reviewed", "X-Hidden", "X-Settings",
		"X-Code.OnRun", "X-Code.OnChange", "X-Code.OnEval",
		"X-Code.Starting", "X-Code.ExtraInstructor", "X-Code.ExtraStarting",
		"X-Forked.Id", "X-Forked.Version",
		"X-Owner.Id", "X-Course.Id",
		"X-AssignmentGroup.Ids"}); err != nil {
		return err
	}

	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Name < assignments[j].Name })
	for _, assignment := range assignments {
		groupIDs := make([]string, 0, len(assignmentGroups[assignment.ID]))
		for _, groupID := range assignmentGroups[assignment.ID] {
			groupIDs = append(groupIDs, strconv.FormatUint(uint64(groupID), 10))
		}
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(assignment.ID), 10),
			strconv.Itoa(assignment.Version),
			assignment.Name,
			derefString(assignment.URL),
			assignment.Instructions,
			strconv.FormatBool(assignment.Reviewed),
			strconv.FormatBool(assignment.Hidden),
			assignment.Settings,
			assignment.OnRun, assignment.OnChange, assignment.OnEval,
			assignment.StartingCode, assignment.ExtraInstructorFiles, assignment.ExtraStartingFiles,
			formatUintPtr(assignment.ForkedID),
			formatIntPtr(assignment.ForkedVersion),
			formatUintPtr(assignment.OwnerID),
			formatUintPtr(assignment.CourseID),
			strings.Join(groupIDs, ", "),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	groupEntry, err := zipFile.Create("LinkTables/AssignmentGroup.csv")
	if err != nil {
		return err
	}
	groupWriter := csv.NewWriter(groupEntry)
	if err := groupWriter.Write([]string{"AssignmentGroupId", "X-Version",
		"X-Name", "X-URL",
		"X-Forked.Id", "X-Forked.Version",
		"X-Owner.Id", "X-Course.Id"}); err != nil {
		return err
	}

	orderedGroups := make([]groupModel.AssignmentGroupModel, 0, len(allGroups))
	for _, group := range allGroups {
		orderedGroups = append(orderedGroups, group)
	}
	sort.Slice(orderedGroups, func(i, j int) bool { return orderedGroups[i].Name < orderedGroups[j].Name })
	for _, group := range orderedGroups {
		if err := groupWriter.Write([]string{
			strconv.FormatUint(uint64(group.ID), 10),
			strconv.Itoa(group.Version),
			group.Name,
			derefString(group.URL),
			formatUintPtr(group.ForkedID),
			formatIntPtr(group.ForkedVersion),
			formatUintPtr(group.OwnerID),
			formatUintPtr(group.CourseID),
		}); err != nil {
			return err
		}
	}
	groupWriter.Flush()
	return groupWriter.Error()
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
