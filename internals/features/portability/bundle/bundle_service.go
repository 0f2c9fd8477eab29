// file: internals/features/portability/bundle/bundle_service.go
//
// Bundle: format JSON untuk berbagi dan memperbarui course, assignment,
// group, dan membership antar instance.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/maruel/natural"
	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	courseModel "kodingku_backend/internals/features/courses/course/model"
	"kodingku_backend/internals/features/portability/schema"
	userModel "kodingku_backend/internals/features/users/user/model"
)

var (
	// ErrMissingReference: membership menunjuk URL assignment/group yang
	// tidak ikut di bundle yang sama.
	ErrMissingReference = errors.New("bundle membership menunjuk url yang tidak dikenal")
	// ErrUnknownCategory: kategori export di luar courses/assignments/groups/memberships.
	ErrUnknownCategory = errors.New("kategori export tidak dikenal")
	// ErrUnsupportedIdentifier: identifier export bukan id, url, atau entity.
	ErrUnsupportedIdentifier = errors.New("identifier export tidak didukung")
	// ErrMissingCourse: import tanpa course di bundle dan tanpa course_id tujuan.
	ErrMissingCourse = errors.New("bundle tanpa course butuh course tujuan")
)

type BundleService struct {
	DB *gorm.DB
}

func NewBundleService(db *gorm.DB) *BundleService {
	return &BundleService{DB: db}
}

func (s *BundleService) emailLookup(db *gorm.DB) schema.EmailLookup {
	return func(userID uint) (string, bool) {
		var user userModel.UserModel
		if err := db.First(&user, userID).Error; err != nil {
			return "", false
		}
		return user.Email, true
	}
}

// Bundle adalah payload hasil decode JSON mentah.
type Bundle struct {
	Course      map[string]any   `json:"course"`
	Assignments []map[string]any `json:"assignments"`
	Groups      []map[string]any `json:"groups"`
	Memberships []map[string]any `json:"memberships"`
}

// ImportBundle memasang isi bundle ke database dalam SATU transaksi:
// course dulu, lalu assignment (urut nama), group (urut nama), terakhir
// membership (urut pasangan URL). Entity yang URL-nya sudah ada di-merge
// tanpa menaikkan version; sisanya dibuat baru. Gagal di tengah membuat
// seluruh import batal.
func (s *BundleService) ImportBundle(bundle Bundle, ownerID uint, courseID *uint) (uint, error) {
	var importedCourseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := s.importCourse(tx, bundle, ownerID, courseID)
		if err != nil {
			return err
		}
		importedCourseID = course.ID

		assignmentRemap, err := s.importAssignments(tx, bundle.Assignments, ownerID, course.ID)
		if err != nil {
			return err
		}
		groupRemap, err := s.importGroups(tx, bundle.Groups, ownerID, course.ID)
		if err != nil {
			return err
		}
		return s.importMemberships(tx, bundle.Memberships, assignmentRemap, groupRemap)
	})
	if err != nil {
		return 0, err
	}
	return importedCourseID, nil
}

func (s *BundleService) importCourse(tx *gorm.DB, bundle Bundle, ownerID uint, courseID *uint) (*courseModel.CourseModel, error) {
	if bundle.Course == nil {
		if courseID == nil {
			return nil, ErrMissingCourse
		}
		var course courseModel.CourseModel
		if err := tx.First(&course, *courseID).Error; err != nil {
			return nil, err
		}
		return &course, nil
	}

	fields, err := schema.Normalize(bundle.Course, courseModel.CourseSchema,
		schema.Fields{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("course: %w", err)
	}

	course := &courseModel.CourseModel{}
	if url := fields.StrPtr("url"); url != nil && *url != "" {
		var existing courseModel.CourseModel
		err := tx.Where("url = ?", *url).First(&existing).Error
		if err == nil {
			course = &existing
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	course.DecodeCourseFields(fields)
	if err := tx.Save(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (s *BundleService) importAssignments(tx *gorm.DB, payloads []map[string]any, ownerID, courseID uint) (map[string]uint, error) {
	sorted := make([]map[string]any, len(payloads))
	copy(sorted, payloads)
	sort.SliceStable(sorted, func(i, j int) bool {
		iName, _ := sorted[i]["name"].(string)
		jName, _ := sorted[j]["name"].(string)
		return natural.Less(iName, jName)
	})

	remap := make(map[string]uint, len(sorted))
	for _, payload := range sorted {
		fields, err := schema.Normalize(payload, assignmentModel.AssignmentSchema,
			schema.Fields{"course_id": courseID, "owner_id": ownerID})
		if err != nil {
			return nil, fmt.Errorf("assignment: %w", err)
		}

		assignment := &assignmentModel.AssignmentModel{}
		if url := fields.StrPtr("url"); url != nil && *url != "" {
			var existing assignmentModel.AssignmentModel
			err := tx.Where("url = ?", *url).First(&existing).Error
			if err == nil {
				assignment = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		// merge import tidak menaikkan version; version ikut payload
		assignment.DecodeAssignmentFields(fields)
		if err := tx.Save(assignment).Error; err != nil {
			return nil, err
		}
		if url, ok := payload["url"].(string); ok && url != "" {
			remap[url] = assignment.ID
		}
	}
	return remap, nil
}

func (s *BundleService) importGroups(tx *gorm.DB, payloads []map[string]any, ownerID, courseID uint) (map[string]uint, error) {
	sorted := make([]map[string]any, len(payloads))
	copy(sorted, payloads)
	sort.SliceStable(sorted, func(i, j int) bool {
		iName, _ := sorted[i]["name"].(string)
		jName, _ := sorted[j]["name"].(string)
		return natural.Less(iName, jName)
	})

	remap := make(map[string]uint, len(sorted))
	for _, payload := range sorted {
		fields, err := schema.Normalize(payload, groupModel.AssignmentGroupSchema,
			schema.Fields{"course_id": courseID, "owner_id": ownerID})
		if err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}

		group := &groupModel.AssignmentGroupModel{}
		if url := fields.StrPtr("url"); url != nil && *url != "" {
			var existing groupModel.AssignmentGroupModel
			err := tx.Where("url = ?", *url).First(&existing).Error
			if err == nil {
				group = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		group.DecodeGroupFields(fields)
		if err := tx.Save(group).Error; err != nil {
			return nil, err
		}
		if url, ok := payload["url"].(string); ok && url != "" {
			remap[url] = group.ID
		}
	}
	return remap, nil
}

func (s *BundleService) importMemberships(tx *gorm.DB, payloads []map[string]any,
	assignmentRemap, groupRemap map[string]uint) error {
	sorted := make([]map[string]any, len(payloads))
	copy(sorted, payloads)
	sort.SliceStable(sorted, func(i, j int) bool {
		iGroup, _ := sorted[i]["assignment_group_url"].(string)
		jGroup, _ := sorted[j]["assignment_group_url"].(string)
		if iGroup != jGroup {
			return iGroup < jGroup
		}
		iAssignment, _ := sorted[i]["assignment_url"].(string)
		jAssignment, _ := sorted[j]["assignment_url"].(string)
		return iAssignment < jAssignment
	})

	for _, payload := range sorted {
		assignmentURL, _ := payload["assignment_url"].(string)
		groupURL, _ := payload["assignment_group_url"].(string)
		assignmentID, okAssignment := assignmentRemap[assignmentURL]
		groupID, okGroup := groupRemap[groupURL]
		if !okAssignment || !okGroup {
			return fmt.Errorf("%w: assignment=%q group=%q", ErrMissingReference,
				assignmentURL, groupURL)
		}

		fields, err := schema.Normalize(payload, groupModel.MembershipSchema,
			schema.Fields{"assignment_id": assignmentID, "assignment_group_id": groupID})
		if err != nil {
			return fmt.Errorf("membership: %w", err)
		}

		membership := &groupModel.AssignmentGroupMembershipModel{}
		var existing groupModel.AssignmentGroupMembershipModel
		lookupErr := tx.Where("assignment_group_id = ? AND assignment_id = ?", groupID, assignmentID).
			First(&existing).Error
		if lookupErr == nil {
			membership = &existing
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}
		membership.DecodeMembershipFields(fields)
		if err := tx.Save(membership).Error; err != nil {
			return err
		}
	}
	return nil
}

// ---- Export ----

// Kategori export yang dikenal.
var ExportCategories = []string{"courses", "assignments", "groups", "memberships"}

// ExportBundle menerima daftar identifier per kategori. Identifier boleh
// id numerik, URL string, atau entity yang sudah dimuat.
func (s *BundleService) ExportBundle(request map[string][]any) (map[string][]map[string]any, error) {
	lookup := s.emailLookup(s.DB)
	dumped := make(map[string][]map[string]any, len(request))

	for category, values := range request {
		encoded := make([]map[string]any, 0, len(values))
		for _, value := range values {
			payload, err := s.exportOne(category, value, lookup)
			if err != nil {
				return nil, err
			}
			encoded = append(encoded, payload)
		}
		dumped[category] = encoded
	}
	return dumped, nil
}

func (s *BundleService) exportOne(category string, value any, lookup schema.EmailLookup) (map[string]any, error) {
	switch category {
	case "courses":
		course, err := resolveEntity[courseModel.CourseModel](s.DB, value)
		if err != nil {
			return nil, err
		}
		return course.EncodeJSON(schema.FetchOwner(course.OwnerID), lookup), nil
	case "assignments":
		assignment, err := resolveEntity[assignmentModel.AssignmentModel](s.DB, value)
		if err != nil {
			return nil, err
		}
		return assignment.EncodeJSON(schema.FetchOwner(assignment.OwnerID), lookup, nil, nil), nil
	case "groups":
		group, err := resolveEntity[groupModel.AssignmentGroupModel](s.DB, value)
		if err != nil {
			return nil, err
		}
		return group.EncodeJSON(schema.FetchOwner(group.OwnerID), lookup), nil
	case "memberships":
		membership, err := resolveEntity[groupModel.AssignmentGroupMembershipModel](s.DB, value)
		if err != nil {
			return nil, err
		}
		return s.encodeMembership(membership), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

func (s *BundleService) encodeMembership(membership *groupModel.AssignmentGroupMembershipModel) map[string]any {
	var groupURL, assignmentURL *string
	var group groupModel.AssignmentGroupModel
	if err := s.DB.First(&group, membership.AssignmentGroupID).Error; err == nil {
		groupURL = group.URL
	}
	var assignment assignmentModel.AssignmentModel
	if err := s.DB.First(&assignment, membership.AssignmentID).Error; err == nil {
		assignmentURL = assignment.URL
	}
	return membership.EncodeJSON(groupURL, assignmentURL)
}

// resolveEntity: id numerik → by id, string → by url, pointer entity →
// dipakai langsung. Angka hasil decode JSON datang sebagai float64 atau
// json.Number, bukan int.
func resolveEntity[T any](db *gorm.DB, value any) (*T, error) {
	switch v := value.(type) {
	case uint:
		var entity T
		if err := db.First(&entity, v).Error; err != nil {
			return nil, err
		}
		return &entity, nil
	case int:
		var entity T
		if err := db.First(&entity, uint(v)).Error; err != nil {
			return nil, err
		}
		return &entity, nil
	case float64:
		if v != math.Trunc(v) || v < 0 {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedIdentifier, value)
		}
		var entity T
		if err := db.First(&entity, uint(v)).Error; err != nil {
			return nil, err
		}
		return &entity, nil
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedIdentifier, value)
		}
		var entity T
		if err := db.First(&entity, uint(id)).Error; err != nil {
			return nil, err
		}
		return &entity, nil
	case string:
		var entity T
		if err := db.Where("url = ?", v).First(&entity).Error; err != nil {
			return nil, err
		}
		return &entity, nil
	case *T:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedIdentifier, value)
	}
}

// ExportCourse membangun bundle lengkap satu course: course-nya,
// assignment course + assignment anggota group (urut nama), semua group
// (urut nama), dan membership-nya.
func (s *BundleService) ExportCourse(courseID uint) (map[string]any, error) {
	lookup := s.emailLookup(s.DB)

	var course courseModel.CourseModel
	if err := s.DB.First(&course, courseID).Error; err != nil {
		return nil, err
	}

	var groups []groupModel.AssignmentGroupModel
	if err := s.DB.Where("course_id = ?", courseID).Find(&groups).Error; err != nil {
		return nil, err
	}
	// urut natural: "Minggu 2" sebelum "Minggu 10"
	sort.SliceStable(groups, func(i, j int) bool { return natural.Less(groups[i].Name, groups[j].Name) })
	groupIDs := make([]uint, 0, len(groups))
	encodedGroups := make([]map[string]any, 0, len(groups))
	for i := range groups {
		groupIDs = append(groupIDs, groups[i].ID)
		encodedGroups = append(encodedGroups, groups[i].EncodeJSON(schema.FetchOwner(groups[i].OwnerID), lookup))
	}

	var memberships []groupModel.AssignmentGroupMembershipModel
	if len(groupIDs) > 0 {
		if err := s.DB.Where("assignment_group_id IN ?", groupIDs).
			Order("assignment_group_id, assignment_id").
			Find(&memberships).Error; err != nil {
			return nil, err
		}
	}
	encodedMemberships := make([]map[string]any, 0, len(memberships))
	for i := range memberships {
		encodedMemberships = append(encodedMemberships, s.encodeMembership(&memberships[i]))
	}

	// assignment course + assignment yang terseret lewat group
	assignmentSet := map[uint]assignmentModel.AssignmentModel{}
	var courseAssignments []assignmentModel.AssignmentModel
	if err := s.DB.Where("course_id = ? AND type <> ?", courseID, "maze").
		Find(&courseAssignments).Error; err != nil {
		return nil, err
	}
	for _, assignment := range courseAssignments {
		assignmentSet[assignment.ID] = assignment
	}
	for _, membership := range memberships {
		if _, ok := assignmentSet[membership.AssignmentID]; ok {
			continue
		}
		var assignment assignmentModel.AssignmentModel
		if err := s.DB.First(&assignment, membership.AssignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		assignmentSet[assignment.ID] = assignment
	}

	assignments := make([]assignmentModel.AssignmentModel, 0, len(assignmentSet))
	for _, assignment := range assignmentSet {
		assignments = append(assignments, assignment)
	}
	sort.Slice(assignments, func(i, j int) bool { return natural.Less(assignments[i].Name, assignments[j].Name) })
	encodedAssignments := make([]map[string]any, 0, len(assignments))
	for i := range assignments {
		encodedAssignments = append(encodedAssignments,
			assignments[i].EncodeJSON(schema.FetchOwner(assignments[i].OwnerID), lookup, nil, nil))
	}

	return map[string]any{
		"course":                 course.EncodeJSON(schema.FetchOwner(course.OwnerID), lookup),
		"assignments":            encodedAssignments,
		"assignment_groups":      encodedGroups,
		"assignment_memberships": encodedMemberships,
	}, nil
}
