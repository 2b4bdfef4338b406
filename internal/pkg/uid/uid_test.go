package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake(t *testing.T) {
	t.Run("unique and increasing", func(t *testing.T) {
		// Arrange
		s, err := NewSnowflake(1)
		require.NoError(t, err)

		// Act
		a, b := s.Generate(), s.Generate()

		// Assert
		assert.Greater(t, b, a)
	})

	t.Run("host derived node", func(t *testing.T) {
		_, err := NewSnowflake(-1)

		assert.NoError(t, err)
	})

	t.Run("node out of range", func(t *testing.T) {
		_, err := NewSnowflake(1024)

		assert.ErrorIs(t, err, ErrNodeOutOfRange)
	})
}

func TestUUID(t *testing.T) {
	id := NewUUID().Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
