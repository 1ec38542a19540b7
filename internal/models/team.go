package models

// Role is the membership role within a team
type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the defined membership roles.
func (r Role) Valid() bool {
	return r == RoleLeader || r == RoleMember
}

// Team represents a team entity
type Team struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   int64  `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// TeamMember represents a team membership with role
type TeamMember struct {
	ID       int64 `json:"id"`
	TeamID   int64 `json:"team_id"`
	UserID   int64 `json:"user_id"`
	Role     Role  `json:"role"`
	JoinedAt int64 `json:"joined_at"`
}

// TeamSummary is a team row decorated with listing metadata
type TeamSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CreatedAt     int64  `json:"created_at"`
	CreatedByName string `json:"created_by_name"`
	Role          Role   `json:"role,omitempty"`
	MemberCount   int    `json:"member_count"`
}

// MemberInfo is a membership joined with the member's user record
type MemberInfo struct {
	UserID   int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

// TeamDetail is a team with its full member list
type TeamDetail struct {
	Team
	CreatedByName string       `json:"created_by_name"`
	Members       []MemberInfo `json:"members"`
}
