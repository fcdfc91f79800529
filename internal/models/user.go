package models

import "time"

// Role is the single authorization attribute carried by a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	FullName     string    `json:"full_name" gorm:"column:full_name"`
	Role         Role      `json:"role" gorm:"not null;default:'member'"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// BootstrapClaim is a singleton marker row. Its primary key guarantees that only
// one registration can ever claim the first-admin slot.
type BootstrapClaim struct {
	Name      string `gorm:"primaryKey"`
	UserID    string `gorm:"column:user_id;not null"`
	CreatedAt time.Time
}

const FirstAdminClaim = "first_admin"

func (BootstrapClaim) TableName() string {
	return "bootstrap_claims"
}
