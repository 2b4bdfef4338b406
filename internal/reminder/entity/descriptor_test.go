package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Descriptor
	}{
		{name: "assignee", raw: "assignee", want: Descriptor{Kind: DescriptorAssignee}},
		{name: "assignee upper case", raw: " Assignee ", want: Descriptor{Kind: DescriptorAssignee}},
		{name: "manager short", raw: "manager", want: Descriptor{Kind: DescriptorManager}},
		{name: "manager of unit", raw: "manager-of-unit", want: Descriptor{Kind: DescriptorManager}},
		{name: "explicit user", raw: "user:42", want: Descriptor{Kind: DescriptorExplicit, UserID: 42}},
		{name: "bare id", raw: "7", want: Descriptor{Kind: DescriptorExplicit, UserID: 7}},
		{name: "role keeps case", raw: "role:SuperAdmin", want: Descriptor{Kind: DescriptorRole, Role: "SuperAdmin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDescriptor(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDescriptor_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "asignee", "user:", "user:-1", "user:abc", "role:", "group:ops", "0"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDescriptor(raw)

			var ide *InvalidDescriptorError
			require.ErrorAs(t, err, &ide)
			assert.Equal(t, raw, ide.Raw)
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	assert.Equal(t, "user:9", Descriptor{Kind: DescriptorExplicit, UserID: 9}.String())
	assert.Equal(t, "assignee", Descriptor{Kind: DescriptorAssignee}.String())
	assert.Equal(t, "manager-of-unit", Descriptor{Kind: DescriptorManager}.String())
	assert.Equal(t, "role:superadmin", Descriptor{Kind: DescriptorRole, Role: "superadmin"}.String())
}

func TestNotificationTypeFor(t *testing.T) {
	assert.Equal(t, NotificationTypeDueSoon, NotificationTypeFor(RuleKindBeforeDeadline, 1))
	assert.Equal(t, NotificationTypeDueToday, NotificationTypeFor(RuleKindOnDeadline, 3))
	assert.Equal(t, NotificationTypeOverdue, NotificationTypeFor(RuleKindAfterDeadline, 1))
	assert.Equal(t, NotificationTypeEscalation, NotificationTypeFor(RuleKindAfterDeadline, 2))
}

func TestRuleKind(t *testing.T) {
	for _, k := range []RuleKind{RuleKindBeforeDeadline, RuleKindOnDeadline, RuleKindAfterDeadline} {
		assert.Equal(t, k, RuleKindFromString(k.String()))
		assert.True(t, k.IsValid())
	}
	assert.Equal(t, RuleKindUnknown, RuleKindFromString("someday"))
	assert.False(t, RuleKindUnknown.IsValid())
}

func TestPartialRunError(t *testing.T) {
	// Arrange
	cause := &DataAccessError{Op: "get obligation", Err: errors.New("conn reset")}
	catID := int64(3)
	err := &PartialRunError{Items: []*ItemError{{
		UnitID:     10,
		CategoryID: &catID,
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Kind:       RuleKindAfterDeadline,
		Err:        cause,
	}}}

	// Act
	var dae *DataAccessError
	found := errors.As(err, &dae)

	// Assert
	assert.True(t, found)
	assert.Equal(t, "partial run: 1 item(s) failed", err.Error())
	assert.Contains(t, err.Items[0].Error(), "unit 10 category 3 date 2024-03-01 rule after_deadline")
}
