package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"admintrail/internal/adminauth/models"
)

func TestDefaultMatrix(t *testing.T) {
	m := DefaultMatrix()
	ops := []models.Operation{
		models.OperationVerifySession,
		models.OperationWriteAudit,
		models.OperationReadAudit,
	}

	t.Run("admin roles are accepted uniformly", func(t *testing.T) {
		for _, op := range ops {
			assert.NoError(t, m.Authorize(models.RoleSuperAdmin, op), op)
			assert.NoError(t, m.Authorize(models.RoleAdmin, op), op)
		}
	})

	t.Run("every other role is forbidden", func(t *testing.T) {
		rejected := []models.Role{"", "admin", "Admin", "SUPERADMIN", "VIEWER", "USER", " ADMIN", "ADMIN\x00"}
		for _, op := range ops {
			for _, role := range rejected {
				assert.ErrorIs(t, m.Authorize(role, op), ErrForbidden, "role %q op %s", role, op)
			}
		}
	})

	t.Run("unknown operation is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, m.Authorize(models.RoleSuperAdmin, "campaign.delete"), ErrForbidden)
	})
}

func TestNewMatrix_CustomTable(t *testing.T) {
	m := NewMatrix(map[models.Operation][]models.Role{
		models.OperationReadAudit: {models.RoleSuperAdmin},
	})

	assert.NoError(t, m.Authorize(models.RoleSuperAdmin, models.OperationReadAudit))
	assert.ErrorIs(t, m.Authorize(models.RoleAdmin, models.OperationReadAudit), ErrForbidden)
	assert.ErrorIs(t, m.Authorize(models.RoleAdmin, models.OperationWriteAudit), ErrForbidden)
}
