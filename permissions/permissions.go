// Package permissions implements the forum's composable authorization
// predicates. Every rule is stateless and is evaluated at two levels:
// request level before any row is fetched, and object level once the target
// is loaded. A view's rules all have to pass (logical AND).
package permissions

import "github.com/campuslink/forum/models"

// Principal is the actor behind a request as reported by the identity
// provider's token. The zero value is the anonymous principal.
type Principal struct {
	ID            uint
	Username      string
	Role          string
	IsStaff       bool
	Authenticated bool
}

// Ownable is any resource that can name its owning user.
type Ownable interface {
	OwnerID() (uint, bool)
}

// Rule is one authorization predicate.
type Rule interface {
	// Request gates the call before the target object is known.
	Request(method string, p Principal) bool
	// Object gates the call once the target has been fetched.
	Object(method string, p Principal, obj Ownable) bool
}

// safeMethod reports whether the HTTP method is read-only. Safe methods
// pass every rule regardless of identity.
func safeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// BaseRule grants everything; concrete rules embed it and override the
// level they actually care about.
type BaseRule struct{}

func (BaseRule) Request(string, Principal) bool         { return true }
func (BaseRule) Object(string, Principal, Ownable) bool { return true }

// AuthenticatedOrReadOnly lets anyone read but requires a logged-in
// principal for any mutation.
type AuthenticatedOrReadOnly struct{ BaseRule }

func (AuthenticatedOrReadOnly) Request(method string, p Principal) bool {
	return safeMethod(method) || p.Authenticated
}

// AuthorOrStaffOnly allows mutations only by the object's owner or a staff
// principal. Reads are open.
type AuthorOrStaffOnly struct{ BaseRule }

func (AuthorOrStaffOnly) Object(method string, p Principal, obj Ownable) bool {
	if safeMethod(method) {
		return true
	}
	if p.IsStaff {
		return true
	}
	owner, ok := obj.OwnerID()
	return ok && p.Authenticated && owner == p.ID
}

// FacultyOrAdminGate restricts creation to faculty, admins and staff.
// PUT/PATCH/DELETE deliberately pass through so the object-level ownership
// rule makes the final call; a user who has since lost faculty status can
// still manage their own prior posts.
type FacultyOrAdminGate struct{ BaseRule }

func (FacultyOrAdminGate) Request(method string, p Principal) bool {
	if safeMethod(method) {
		return true
	}
	if !p.Authenticated {
		return false
	}
	if p.Role == models.RoleAdmin || p.Role == models.RoleFaculty || p.IsStaff {
		return true
	}
	switch method {
	case "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

// CategoryOwnerOrAdmin allows category mutations by staff, admins or the
// category's creator.
type CategoryOwnerOrAdmin struct{ BaseRule }

func (CategoryOwnerOrAdmin) Object(method string, p Principal, obj Ownable) bool {
	if safeMethod(method) {
		return true
	}
	if p.IsStaff || p.Role == models.RoleAdmin {
		return true
	}
	owner, ok := obj.OwnerID()
	return ok && p.Authenticated && owner == p.ID
}

// Check evaluates the request-level side of every rule.
func Check(rules []Rule, method string, p Principal) bool {
	for _, r := range rules {
		if !r.Request(method, p) {
			return false
		}
	}
	return true
}

// CheckObject evaluates the object-level side of every rule against the
// fetched target.
func CheckObject(rules []Rule, method string, p Principal, obj Ownable) bool {
	for _, r := range rules {
		if !r.Object(method, p, obj) {
			return false
		}
	}
	return true
}
