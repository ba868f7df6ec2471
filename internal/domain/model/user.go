// Package model contains the records exchanged with the NODO API.
//
// The client does not own these records: the backend validates them and
// guarantees identity and referential integrity.
package model

// Role selects which dashboard a user gets.
type Role string

// Roles known to the marketplace.
const (
	RoleDeveloper  Role = "developer"
	RoleContractor Role = "contractor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDeveloper || r == RoleContractor
}

// User is the authenticated identity returned by /auth/me.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  *Timestamp `json:"created_at,omitempty"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// RegistrationResult carries the verification code the backend hands back
// instead of emailing it.
type RegistrationResult struct {
	ID               string `json:"id,omitempty"`
	Message          string `json:"message,omitempty"`
	VerificationCode string `json:"verification_code,omitempty"`
}

// Verification is the body of POST /auth/verify.
type Verification struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the response of POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
}

// Profile is the free-form document behind /profile.
type Profile map[string]any

// UploadResult is the response of POST /upload.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}
