package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ValueScan(t *testing.T) {
	// Arrange
	in := JSONMap{"obligation_id": "901", "escalation_level": 2}

	// Act
	raw, err := in.Value()
	require.NoError(t, err)
	var out JSONMap
	require.NoError(t, out.Scan(raw))

	// Assert
	assert.Equal(t, int64(901), out.GetInt64("obligation_id"))
	assert.Equal(t, int64(2), out.GetInt64("escalation_level"))
	assert.Equal(t, "901", out.GetString("obligation_id"))
	assert.Zero(t, out.GetInt64("missing"))
}

func TestJSONMap_Scan(t *testing.T) {
	var j JSONMap

	require.NoError(t, j.Scan(nil))
	assert.Equal(t, JSONMap{}, j)

	require.NoError(t, j.Scan(`{"rule_kind":"after"}`))
	assert.Equal(t, "after", j.GetString("rule_kind"))

	assert.ErrorIs(t, j.Scan(42), ErrScanValueNotBytes)
}

func TestJSONMap_ValueNil(t *testing.T) {
	var j JSONMap

	raw, err := j.Value()

	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), raw)
}
