package models

// Role values a user may hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can sign in and submit locations
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(100);not null" json:"-"` // bcrypt hash, never exposed
	Role     string `gorm:"type:varchar(20);default:'user';not null" json:"role"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
