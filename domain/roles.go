package domain

// Role is one of the fixed set of roles known to the access policy. The
// catalog is static; derived predicates are computed, never stored.
type Role struct {
	ID          uint
	Name        string
	Label       string
	IsMunicipal bool
}

// Role names used in policy checks and route registrations.
const (
	RoleAdmin              = "admin"
	RoleUser               = "user"
	RolePROfficer          = "pr_officer"
	RoleTechOfficer        = "tech_officer"
	RoleExternalMaintainer = "external_maintainer"
)

var roleCatalog = []Role{
	{ID: 1, Name: RoleAdmin, Label: "Administrator", IsMunicipal: false},
	{ID: 2, Name: RoleUser, Label: "Citizen", IsMunicipal: false},
	{ID: 3, Name: RolePROfficer, Label: "Public Relations Officer", IsMunicipal: true},
	{ID: 4, Name: RoleTechOfficer, Label: "Technical Officer", IsMunicipal: true},
	{ID: 5, Name: RoleExternalMaintainer, Label: "External Maintainer", IsMunicipal: true},
}

// Roles returns the full role catalog.
func Roles() []Role {
	out := make([]Role, len(roleCatalog))
	copy(out, roleCatalog)
	return out
}

// RoleByName looks a role up by its stable name. Returns nil for unknown
// names, including "".
func RoleByName(name string) *Role {
	for i := range roleCatalog {
		if roleCatalog[i].Name == name {
			r := roleCatalog[i]
			return &r
		}
	}
	return nil
}

// MunicipalRoleNames returns the names of all municipal roles.
func MunicipalRoleNames() []string {
	var names []string
	for _, r := range roleCatalog {
		if r.IsMunicipal {
			names = append(names, r.Name)
		}
	}
	return names
}

// IsAdmin reports whether the role is the administrator role.
func (r *Role) IsAdmin() bool { return r != nil && r.Name == RoleAdmin }

// IsCitizen reports whether the role is the base citizen role.
func (r *Role) IsCitizen() bool { return r != nil && r.Name == RoleUser }

// Municipal reports whether the role belongs to municipal staff.
func (r *Role) Municipal() bool { return r != nil && r.IsMunicipal }
