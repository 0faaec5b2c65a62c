package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role names as stored in users.role and carried in the JWT "role" claim.
const (
	RoleClient     = "cliente"
	RoleLawyer     = "abogado"
	RoleAdmin      = "admin"
	RoleBackoffice = "backoffice"
)

// KYC states for users.kyc_status.
const (
	KYCNotSubmitted = "not_submitted"
	KYCPending      = "pending"
	KYCApproved     = "approved"
	KYCRejected     = "rejected"
)

// User represents a row of the `users` table.  Clients, lawyers and staff
// share the table; lawyer-only columns are nullable.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Email             – unique email address.
//  PasswordHash      – bcrypt hashed password.
//  Role              – cliente, abogado, admin or backoffice.
//  Nombres/Apellidos – display name parts.
//  Especialidad      – lawyer's practice area.
//  ConsultationPrice – lawyer's advertised price per session in major
//                      units; invalid when never set.
//  KYCStatus         – identity verification state.
//  IsApproved        – derived from role, email and KYC by ComputeApproval.
type User struct {
	ID                uint64              // users.id
	Email             string              // users.email
	PasswordHash      string              // users.password_hash
	Role              string              // users.role
	Nombres           string              // users.nombres
	Apellidos         string              // users.apellidos
	Especialidad      *string             // users.especialidad (nullable)
	AboutMe           *string             // users.about_me (nullable)
	Titles            *string             // users.titles (nullable)
	ProfilePictureURL *string             // users.profile_picture_url (nullable)
	ConsultationPrice decimal.NullDecimal // users.consultation_price DECIMAL(10,2) (nullable)
	IsActive          bool                // users.is_active
	EmailVerified     bool                // users.email_verified
	KYCStatus         string              // users.kyc_status
	KYCNotes          *string             // users.kyc_notes (nullable)
	IsApproved        bool                // users.is_approved
	CreatedAt         time.Time           // users.created_at
	UpdatedAt         time.Time           // users.updated_at
}

// DisplayName joins the name parts, falling back to the email.
func (u User) DisplayName() string {
	name := u.Nombres
	if u.Apellidos != "" {
		if name != "" {
			name += " "
		}
		name += u.Apellidos
	}
	if name == "" {
		return u.Email
	}
	return name
}

// IsStaff reports whether the user may act on any meeting.
func (u User) IsStaff() bool { return IsStaffRole(u.Role) }

// IsStaffRole reports whether role belongs to platform staff.
func IsStaffRole(role string) bool { return role == RoleAdmin || role == RoleBackoffice }

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
