package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsManager() bool  { return p.Role == RoleManager }
func (p Principal) IsOperator() bool { return p.Role == RoleOperator }
func (p Principal) IsViewer() bool   { return p.Role == RoleViewer }

// CanManageOrders covers creating and editing orders and their items.
func (p Principal) CanManageOrders() bool {
	return p.IsAdmin() || p.IsManager()
}

// CanCompleteOrders covers the completion workflow, which operators run
// from the field.
func (p Principal) CanCompleteOrders() bool {
	return p.IsAdmin() || p.IsManager() || p.IsOperator()
}
