package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Name            string    `gorm:"size:120;not null"`
	Username        *string   `gorm:"size:64;uniqueIndex:uk_users_username"`
	PasswordHash    *string   `gorm:"column:password_hash;size:255"`
	ExternalID      *string   `gorm:"column:external_id;size:160;uniqueIndex:uk_users_external_id"`
	Role            Role      `gorm:"size:16;not null;index"`
	HouseNumber     *string   `gorm:"column:house_number;size:32;index"`
	Address         string    `gorm:"type:text"`
	Phone           *string   `gorm:"size:32"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	ProfileComplete bool      `gorm:"column:profile_complete;not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// CanOrder reports whether the profile satisfies the checkout requirements.
func (u *User) CanOrder() bool {
	return u.ProfileComplete && u.HouseNumber != nil && *u.HouseNumber != ""
}
