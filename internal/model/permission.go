package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionEventsCreate allows creating events.
	PermissionEventsCreate Permission = "events:create"

	// PermissionEventsWriteOwn allows updating and deleting events the caller organizes.
	PermissionEventsWriteOwn Permission = "events:write_own"

	// PermissionEventsRead allows listing and viewing events.
	PermissionEventsRead Permission = "events:read"

	// PermissionEventsReadOwn allows listing the events the caller organizes.
	PermissionEventsReadOwn Permission = "events:read_own"

	// PermissionEventsEnroll allows enrolling in and unrolling from events.
	PermissionEventsEnroll Permission = "events:enroll"

	// PermissionProfileRead allows reading the caller's own profile.
	PermissionProfileRead Permission = "profile:read"
)

// KindPermissions is the fixed policy table mapping each principal kind to
// the actions it may perform.
var KindPermissions = map[PrincipalKind][]Permission{
	PrincipalAdmin: {
		PermissionEventsCreate,
		PermissionEventsWriteOwn,
		PermissionEventsRead,
		PermissionEventsReadOwn,
		PermissionProfileRead,
	},
	PrincipalUser: {
		PermissionEventsRead,
		PermissionEventsEnroll,
		PermissionProfileRead,
	},
}

// Can reports whether kind is granted perm.
func (k PrincipalKind) Can(perm Permission) bool {
	for _, p := range KindPermissions[k] {
		if p == perm {
			return true
		}
	}
	return false
}
