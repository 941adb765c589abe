package model

import "github.com/google/uuid"

type Role string

const (
	RoleRequester Role = "REQUESTER"
	RoleEMD       Role = "EMD"
	RoleSPMS      Role = "SPMS"
	RoleAdmin     Role = "ADMIN"
)

// Principal is the authenticated caller context supplied by the auth
// middleware. The core trusts it and never re-derives it.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsRequester() bool { return p.Role == RoleRequester }
func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
