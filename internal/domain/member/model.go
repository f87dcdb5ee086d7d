package member

// Member is the gateway's view of one guild member: identity plus the role
// markers currently held. The core never mutates members directly, it issues
// role intents through the gateway.
type Member struct {
	UserID   string
	Username string
	Bot      bool
	Roles    []string
}

func (m Member) HasRole(roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}

	return false
}

// RoleState is the engagement state derived from the active/inactive markers.
// It is recomputed from the gateway view each cycle and never persisted.
type RoleState string

const (
	RoleStateActive     RoleState = "active"
	RoleStateInactive   RoleState = "inactive"
	RoleStateUnassigned RoleState = "unassigned"
)

// StateOf derives the engagement state from the markers held. A member
// anomalously holding both markers reports Active; the next reconciliation
// pass normalizes the pair down to a single marker.
func StateOf(m Member, activeRoleID, inactiveRoleID string) RoleState {
	switch {
	case m.HasRole(activeRoleID):
		return RoleStateActive
	case m.HasRole(inactiveRoleID):
		return RoleStateInactive
	default:
		return RoleStateUnassigned
	}
}
