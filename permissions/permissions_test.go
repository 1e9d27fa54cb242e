package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuslink/forum/models"
)

type ownedBy uint

func (o ownedBy) OwnerID() (uint, bool) { return uint(o), true }

type unowned struct{}

func (unowned) OwnerID() (uint, bool) { return 0, false }

var (
	anonymous = Principal{}
	student   = Principal{ID: 1, Username: "sam", Role: models.RoleStudent, Authenticated: true}
	faculty   = Principal{ID: 2, Username: "prof", Role: models.RoleFaculty, Authenticated: true}
	admin     = Principal{ID: 3, Username: "root", Role: models.RoleAdmin, Authenticated: true}
	staff     = Principal{ID: 4, Username: "ops", Role: models.RoleStudent, IsStaff: true, Authenticated: true}
)

func TestSafeMethodsAlwaysPass(t *testing.T) {
	rules := []Rule{AuthenticatedOrReadOnly{}, FacultyOrAdminGate{}, AuthorOrStaffOnly{}, CategoryOwnerOrAdmin{}}
	for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
		assert.True(t, Check(rules, method, anonymous), "method %s", method)
		assert.True(t, CheckObject(rules, method, anonymous, ownedBy(99)), "method %s", method)
	}
}

func TestAuthenticatedOrReadOnly(t *testing.T) {
	r := AuthenticatedOrReadOnly{}
	assert.False(t, r.Request("POST", anonymous))
	assert.True(t, r.Request("POST", student))
	assert.True(t, r.Request("GET", anonymous))
}

func TestFacultyOrAdminGate(t *testing.T) {
	r := FacultyOrAdminGate{}

	// Creation is limited to faculty, admins and staff.
	assert.False(t, r.Request("POST", student))
	assert.True(t, r.Request("POST", faculty))
	assert.True(t, r.Request("POST", admin))
	assert.True(t, r.Request("POST", staff))
	assert.False(t, r.Request("POST", anonymous))

	// Mutations of existing objects defer to the object-level check, so a
	// student who authored a post while holding faculty role can still
	// manage it.
	assert.True(t, r.Request("PUT", student))
	assert.True(t, r.Request("PATCH", student))
	assert.True(t, r.Request("DELETE", student))
	assert.False(t, r.Request("PUT", anonymous))
}

func TestAuthorOrStaffOnly(t *testing.T) {
	r := AuthorOrStaffOnly{}
	obj := ownedBy(student.ID)

	assert.True(t, r.Object("DELETE", student, obj))
	assert.False(t, r.Object("DELETE", faculty, obj))
	assert.True(t, r.Object("DELETE", staff, obj))
	assert.False(t, r.Object("PUT", anonymous, obj))
	assert.False(t, r.Object("PUT", student, unowned{}))
}

func TestCategoryOwnerOrAdmin(t *testing.T) {
	r := CategoryOwnerOrAdmin{}
	obj := ownedBy(faculty.ID)

	assert.True(t, r.Object("DELETE", faculty, obj))
	assert.True(t, r.Object("DELETE", admin, obj))
	assert.True(t, r.Object("DELETE", staff, obj))
	assert.False(t, r.Object("DELETE", student, obj))
	// Orphaned category: only admin/staff may touch it.
	assert.False(t, r.Object("DELETE", faculty, unowned{}))
	assert.True(t, r.Object("DELETE", admin, unowned{}))
}

func TestCheckIsLogicalAnd(t *testing.T) {
	rules := []Rule{AuthenticatedOrReadOnly{}, FacultyOrAdminGate{}}
	assert.False(t, Check(rules, "POST", student))
	assert.True(t, Check(rules, "POST", faculty))
	assert.False(t, Check(rules, "POST", anonymous))
}
