// Package authz holds the role-to-operation authorization matrix for the
// administrative surface.
package authz

import (
	"errors"
	"fmt"

	"admintrail/internal/adminauth/models"
)

// ErrForbidden is returned when a role may not perform an operation.
var ErrForbidden = errors.New("role not permitted")

// Matrix maps each operation to the roles allowed to perform it.
// A Matrix is read-only after construction and safe for concurrent use.
type Matrix struct {
	allowed map[models.Operation]map[models.Role]struct{}
}

// NewMatrix builds a matrix from an operation -> roles table.
func NewMatrix(table map[models.Operation][]models.Role) *Matrix {
	m := &Matrix{allowed: make(map[models.Operation]map[models.Role]struct{}, len(table))}
	for op, roles := range table {
		set := make(map[models.Role]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		m.allowed[op] = set
	}
	return m
}

// DefaultMatrix is the flat policy: SUPER_ADMIN and ADMIN may perform every
// administrative operation. Narrowing ADMIN here removes access that
// existing admin sessions rely on.
func DefaultMatrix() *Matrix {
	both := []models.Role{models.RoleSuperAdmin, models.RoleAdmin}
	return NewMatrix(map[models.Operation][]models.Role{
		models.OperationVerifySession: both,
		models.OperationWriteAudit:    both,
		models.OperationReadAudit:     both,
	})
}

// Authorize returns ErrForbidden unless role is listed for op. Roles match
// exactly; empty, lower-cased or unknown roles are rejected, as are
// operations the matrix does not list.
func (m *Matrix) Authorize(role models.Role, op models.Operation) error {
	roles, ok := m.allowed[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %q", ErrForbidden, op)
	}
	if _, ok := roles[role]; !ok {
		return fmt.Errorf("%w: role %q for %s", ErrForbidden, role, op)
	}
	return nil
}
