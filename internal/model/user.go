package model

import "time"

// Role is a user's job function. Roles are informational only.
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleFinanceManager Role = "Finance Manager"
	RoleProjectManager Role = "Project Manager"
)

// User is one of the fixed demo accounts.
type User struct {
	ID        int    `json:"id" yaml:"id" validate:"gt=0"`
	Username  string `json:"username" yaml:"username" validate:"required,alphanum"`
	Role      Role   `json:"role" yaml:"role" validate:"oneof=Admin 'Finance Manager' 'Project Manager'"`
	AvatarURL string `json:"avatar,omitempty" yaml:"avatar_url" validate:"omitempty,url"`
}

// Audit actions.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionInvoiceCreated = "invoice.created"
)

// AuditEntry records one user action. Entries are append-only.
type AuditEntry struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target,omitempty"`
	Detail string    `json:"detail,omitempty"`
}
