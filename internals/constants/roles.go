package constants

import "fmt"

// Nama role yang dikenal di level course.
const (
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleStudent    = "student"
	RoleLearner    = "learner"
)

// Role LTI yang dianggap staff (dibandingkan case-insensitive).
var LTIStaffRoles = []string{
	"urn:lti:role:ims/lis/teachingassistant",
	"instructor", "contentdeveloper", "teachingassistant",
	"urn:lti:role:ims/lis/instructor",
	"urn:lti:role:ims/lis/contentdeveloper",
}

// Role LTI tambahan yang boleh melakukan grading.
const (
	LTIRoleNone               = "urn:lti:sysrole:ims/lis/none"
	LTIRoleTeachingAssistant  = "urn:lti:role:ims/lis/teachingassistant"
)

// Template pesan error role
const (
	ErrOnlyInstructorsCanAccess = "❌ Hanya instructor atau admin yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess      = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyGradersCanAccess     = "❌ Hanya grader yang boleh mengakses fitur %s."
)

func RoleErrorInstructor(feature string) string {
	return fmt.Sprintf(ErrOnlyInstructorsCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorGrader(feature string) string {
	return fmt.Sprintf(ErrOnlyGradersCanAccess, feature)
}
