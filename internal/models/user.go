package models

import "time"

type User struct {
	ID             string `json:"id"`
	Fullname       string `json:"fullname" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	PasswordHash   string `json:"-"`
	Contact        string `json:"contact" validate:"omitempty,phone"`
	Address        string `json:"address" validate:"max=255"`
	City           string `json:"city" validate:"max=100"`
	Country        string `json:"country" validate:"max=100"`
	ProfilePicture string `json:"profile_picture" validate:"omitempty,url,max=1000"`
	Admin          bool   `json:"admin"`

	VerificationStatus         VerificationStatus `json:"verification_status"`
	VerificationTokenHash      string             `json:"-"`
	VerificationTokenExpiresAt *time.Time         `json:"-"`
	ResetTokenHash             string             `json:"-"`
	ResetTokenExpiresAt        *time.Time         `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleUser      UserRole = "user"
	RoleShopOwner UserRole = "shop_owner"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   string
	Role UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type SignupRequest struct {
	Fullname string `json:"fullname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Contact  string `json:"contact" validate:"required,phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateAdminRequest struct {
	Fullname string `json:"fullname" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ProfileUpdate is a partial update of the caller's own profile; nil fields
// are left unchanged.
type ProfileUpdate struct {
	Fullname       *string `json:"fullname"`
	Email          *string `json:"email"`
	Contact        *string `json:"contact"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	ProfilePicture *string `json:"profile_picture"`
}

func (p ProfileUpdate) Apply(u *User) {
	setString(&u.Fullname, p.Fullname)
	setString(&u.Email, p.Email)
	setString(&u.Contact, p.Contact)
	setString(&u.Address, p.Address)
	setString(&u.City, p.City)
	setString(&u.Country, p.Country)
	setString(&u.ProfilePicture, p.ProfilePicture)
}

// Session is an issued session token together with the identity it proves.
type Session struct {
	User      *User     `json:"user"`
	Role      UserRole  `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
