package models

import "time"

// Role is the account type chosen on the login and register forms.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// SellerStatus is the lifecycle of a seller join request.
type SellerStatus string

const (
	SellerPending  SellerStatus = "PENDING"
	SellerApproved SellerStatus = "APPROVED"
	SellerRejected SellerStatus = "REJECTED"
)

// BusinessProfile is the seller's shop identity.
type BusinessProfile struct {
	Name string `json:"name"`
}

// User is an account on the storefront. Sellers are users with RoleSeller.
type User struct {
	ID              string           `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name            string           `json:"name" gorm:"type:varchar(100)"`
	Email           string           `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Phone           string           `json:"phone" gorm:"type:varchar(32)"`
	Password        string           `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role            Role             `json:"role" gorm:"type:varchar(16);index"`
	Status          SellerStatus     `json:"status,omitempty" gorm:"type:varchar(16)"`
	BusinessProfile *BusinessProfile `json:"businessProfile,omitempty" gorm:"serializer:json;type:text"`
	Address         []string         `json:"address,omitempty" gorm:"serializer:json;type:text"`
	EmailVerified   bool             `json:"emailVerified"`
	PhoneVerified   bool             `json:"phoneVerified"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// SellerList is the envelope of GET /users/sellers.
type SellerList struct {
	Sellers []User `json:"sellers"`
}
