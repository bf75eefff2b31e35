package domain

import "time"

// Role enumerates account roles. SUPER_ADMIN and ADMIN have overlapping but
// distinct allowances; neither is a superset of the other at the route level.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Claims is the decoded payload of a verified token. Transient: derived on
// every verification, never persisted.
type Claims struct {
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CredentialPair holds the signed tokens produced by one issuance. Invariant:
// both tokens carry the same subject.
type CredentialPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
