package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("creates active supplier with normalized code", func(t *testing.T) {
		s, err := NewSupplier("Fornecedor Alfa", " sup001 ")
		require.NoError(t, err)
		assert.Equal(t, "SUP001", s.Code)
		assert.Equal(t, SupplierStatusActive, s.Status)
		assert.True(t, s.IsActive())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewSupplier("  ", "SUP001")
		assert.Error(t, err)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewSupplier("Fornecedor Alfa", "")
		assert.Error(t, err)
	})
}

func TestSupplier_ActivateDeactivate(t *testing.T) {
	s, err := NewSupplier("Fornecedor Alfa", "SUP001")
	require.NoError(t, err)

	s.Deactivate()
	assert.False(t, s.IsActive())
	assert.Equal(t, 2, s.Version)

	s.Activate()
	assert.True(t, s.IsActive())
	assert.Equal(t, 3, s.Version)
}
