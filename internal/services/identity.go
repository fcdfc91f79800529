package services

import "task-tracker-api/internal/models"

// Identity is the caller established by a verified session token.
type Identity struct {
	UserID string
	Role   models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Capability names an operation guarded at the authorization boundary.
type Capability string

const (
	CapProfileRead      Capability = "profile:read"
	CapUsersList        Capability = "users:list"
	CapTaskCreate       Capability = "task:create"
	CapTaskRead         Capability = "task:read"
	CapTaskBulkUpdate   Capability = "task:bulk_update"
	CapDependencyWrite  Capability = "dependency:write"
	CapAssignmentManage Capability = "assignment:manage"
	CapEventsRead       Capability = "events:read"
	CapAnalyticsRead    Capability = "analytics:read"
	CapStreamSubscribe  Capability = "stream:subscribe"
)

// Policy maps each capability to the roles holding it.
type Policy map[Capability][]models.Role

var (
	anyRole   = []models.Role{models.RoleAdmin, models.RoleMember}
	adminOnly = []models.Role{models.RoleAdmin}
)

// DefaultPolicy grants read and authoring to every role; batch edits, assignment
// management and the user directory are reserved to admins.
func DefaultPolicy() Policy {
	return Policy{
		CapProfileRead:      anyRole,
		CapUsersList:        adminOnly,
		CapTaskCreate:       anyRole,
		CapTaskRead:         anyRole,
		CapTaskBulkUpdate:   adminOnly,
		CapDependencyWrite:  anyRole,
		CapAssignmentManage: adminOnly,
		CapEventsRead:       anyRole,
		CapAnalyticsRead:    anyRole,
		CapStreamSubscribe:  anyRole,
	}
}

// Allows reports whether id holds capability c. Unknown capabilities are denied.
func (p Policy) Allows(id Identity, c Capability) bool {
	for _, r := range p[c] {
		if r == id.Role {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden when id lacks capability c.
func (p Policy) Authorize(id Identity, c Capability) error {
	if !p.Allows(id, c) {
		return ErrForbidden
	}
	return nil
}
