package domain

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Roles lists the assignable roles in display order.
var Roles = []string{RoleAdmin, RoleModerator, RoleUser}

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Hash      string `db:"password_hash"`
	CreatedAt string `db:"created_at"`

	// Roles is filled by the auth service, not scanned.
	Roles []string `db:"-"`
}

func (u *User) Identity() string { return u.ID }

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

type Profile struct {
	UserID    string `db:"user_id"`
	FullName  string `db:"full_name"`
	Bio       string `db:"bio"`
	Website   string `db:"website"`
	Location  string `db:"location"`
	AvatarURL string `db:"avatar_url"`
	Phone     string `db:"phone"`
	UpdatedAt string `db:"updated_at"`
}

// Member is a user row joined with its profile, for the admin users page.
type Member struct {
	ID        string   `db:"id"`
	Email     string   `db:"email"`
	Name      string   `db:"name"`
	FullName  string   `db:"full_name"`
	AvatarURL string   `db:"avatar_url"`
	Phone     string   `db:"phone"`
	CreatedAt string   `db:"created_at"`
	Roles     []string `db:"-"`
}

type Activity struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Action    string `db:"action"`
	Detail    string `db:"detail"`
	CreatedAt string `db:"created_at"`
}
