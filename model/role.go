package model

// Capabilities is the set of actions a role may perform. Handlers and
// middleware consult this table instead of branching on role strings.
type Capabilities struct {
	CanSubmitRequest  bool
	CanReview         bool
	CanManageTeachers bool
}

var roleCapabilities = map[string]Capabilities{
	RoleStudent: {CanSubmitRequest: true},
	RoleTeacher: {CanReview: true},
	RoleAdmin:   {CanManageTeachers: true},
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// an empty set, which denies everything.
func CapabilitiesFor(role string) Capabilities {
	return roleCapabilities[role]
}

// ValidRole reports whether the role is one the system recognises.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// ValidApprovalLevel reports whether the level is a recognised reviewer tier.
func ValidApprovalLevel(level string) bool {
	switch level {
	case LevelMentor, LevelHOD, LevelPrincipal:
		return true
	}
	return false
}
