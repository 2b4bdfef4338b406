package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runRequest struct {
	DeadlineTime string `validate:"required,timeofday"`
	Timezone     string `validate:"required,timezone"`
	Recipient    string `validate:"omitempty,recipient"`
}

func TestV10_Validate(t *testing.T) {
	v, err := NewV10(Rule{
		Tag:     "recipient",
		Message: "{0} is not a recipient",
		Check:   func(s string) bool { return strings.HasPrefix(s, "user:") },
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   runRequest
		wantErr map[string]string
	}{
		{
			name:  "valid",
			input: runRequest{DeadlineTime: "17:00", Timezone: "Asia/Kolkata", Recipient: "user:1"},
		},
		{
			name:  "valid with seconds",
			input: runRequest{DeadlineTime: "23:59:59", Timezone: "UTC"},
		},
		{
			name:  "invalid fields",
			input: runRequest{DeadlineTime: "25:00", Timezone: "Mars/Olympus", Recipient: "bob"},
			wantErr: map[string]string{
				"deadline_time": "DeadlineTime must be a time of day formatted HH:MM or HH:MM:SS",
				"timezone":      "Timezone must be an IANA time zone name",
				"recipient":     "Recipient is not a recipient",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(tt.input)

			// Assert
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Values())
		})
	}
}

func TestIsTimeOfDay(t *testing.T) {
	assert.True(t, IsTimeOfDay("00:00"))
	assert.True(t, IsTimeOfDay("09:30:15"))
	assert.False(t, IsTimeOfDay("9:30"))
	assert.False(t, IsTimeOfDay("24:00"))
	assert.False(t, IsTimeOfDay(""))
}
