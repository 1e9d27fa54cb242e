package models

import "time"

// Role values assigned by the identity provider.
const (
	RoleAdmin   = "ADMIN"
	RoleFaculty = "FACULTY"
	RoleStudent = "STUDENT"
)

// User mirrors the identity provider's account table. The forum never
// creates or authenticates users; it only reads rows to nest author
// details into responses.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	Role      string    `gorm:"size:50;default:'STUDENT'" json:"role"`
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`
	Bio       string    `gorm:"type:text" json:"bio"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
