package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Principal is the authenticated actor attached to a request after
// token verification. Services never see credentials, only this.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=150"`
	Password  string    `json:"-" bson:"password" validate:"required,min=6"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,min=7,max=15"`
	Role      Role      `json:"role" bson:"role" validate:"required,oneof=admin customer"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"required,min=7,max=15"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin customer"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninResponse pairs the issued token with the authenticated user.
type SigninResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UserUpdate carries the mutable profile fields. Role is applied only
// when the caller is an administrator.
type UserUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=7,max=15"`
	Role  Role   `json:"role,omitempty" validate:"omitempty,oneof=admin customer"`
}
