package domain

import "time"

// OperatorRole controls write permissions on destructive or environment-level
// operations.
type OperatorRole string

const (
	RoleAdmin    OperatorRole = "ADMIN"
	RoleOperator OperatorRole = "OPERATOR"
)

// Operator is an authenticated back-office user of the expedition system.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OperatorRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
