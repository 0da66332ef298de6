package domain

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSubAdmin   Role = "sub_admin"
	RoleManager    Role = "manager"
)

type Permission string

const (
	PermManageTables  Permission = "manage_tables"
	PermManageCanteen Permission = "manage_canteen"
	PermViewReports   Permission = "view_reports"
)

type Permissions struct {
	ManageTables  bool `json:"can_manage_tables"`
	ManageCanteen bool `json:"can_manage_canteen"`
	ViewReports   bool `json:"can_view_reports"`
}

type User struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email,omitempty"`
	FullName    string      `json:"full_name,omitempty"`
	Role        Role        `json:"role"`
	ClubID      *uint       `json:"club_id,omitempty"`
	SubAdminID  *uint       `json:"sub_admin_id,omitempty"`
	Permissions Permissions `json:"permissions"`
}

// Can reports whether the user may use a feature. Admins are not restricted by permission flags.
func (u User) Can(p Permission) bool {
	if u.Role == RoleSuperAdmin || u.Role == RoleSubAdmin {
		return true
	}

	switch p {
	case PermManageTables:
		return u.Permissions.ManageTables
	case PermManageCanteen:
		return u.Permissions.ManageCanteen
	case PermViewReports:
		return u.Permissions.ViewReports
	}

	return false
}

func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}

	return false
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResult struct {
	User   User `json:"user"`
	Tokens
}

// Credential is what the console keeps between restarts for the signed-in operator.
type Credential struct {
	Tokens
	User *User
	// ConsoleToken is the bearer token this console issued to its own UI at login.
	ConsoleToken string
}
