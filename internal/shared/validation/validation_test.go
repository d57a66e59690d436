package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gatherly/internal/shared/apierr"
)

type samplePayload struct {
	UserID string `json:"userId" validate:"required,userid"`
	Name   string `json:"name" validate:"required,notblank,max=200"`
	Status string `json:"status" validate:"omitempty,eventstatus"`
}

func TestStructValid(t *testing.T) {
	err := Struct(samplePayload{UserID: "alice_01", Name: "Alice"})
	require.NoError(t, err)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(samplePayload{UserID: "bad id!", Name: "  "})
	require.Error(t, err)

	appErr := apierr.From(err)
	require.Equal(t, apierr.CodeValidation, appErr.Code)
	require.Len(t, appErr.Details, 2)

	fields := make(map[string]string, len(appErr.Details))
	for _, d := range appErr.Details {
		fields[d.Field] = d.Message
	}
	require.Contains(t, fields, "userId")
	require.Contains(t, fields, "name")
}

func TestUserIDRule(t *testing.T) {
	valid := []string{"a", "alice", "Alice-01", "user_42", strings.Repeat("x", 100)}
	for _, id := range valid {
		require.NoError(t, Struct(samplePayload{UserID: id, Name: "n"}), "userId %q", id)
	}

	invalid := []string{"", " ", "user id", "user@x", "ユーザー", strings.Repeat("x", 101)}
	for _, id := range invalid {
		require.Error(t, Struct(samplePayload{UserID: id, Name: "n"}), "userId %q", id)
	}
}

func TestNotBlankRule(t *testing.T) {
	require.Error(t, Struct(samplePayload{UserID: "alice", Name: "\t \n"}))
	require.NoError(t, Struct(samplePayload{UserID: "alice", Name: " x "}))
}

func TestEventStatusRule(t *testing.T) {
	for _, status := range []string{"draft", "published", "cancelled", "completed", "active"} {
		require.NoError(t, Struct(samplePayload{UserID: "alice", Name: "n", Status: status}), "status %q", status)
	}
	require.Error(t, Struct(samplePayload{UserID: "alice", Name: "n", Status: "archived"}))
}

func TestMaxRule(t *testing.T) {
	require.NoError(t, Struct(samplePayload{UserID: "alice", Name: strings.Repeat("n", 200)}))
	require.Error(t, Struct(samplePayload{UserID: "alice", Name: strings.Repeat("n", 201)}))
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(""))
	require.True(t, IsBlank("   \t"))
	require.False(t, IsBlank(" a "))
}

func TestIsValidEventStatus(t *testing.T) {
	require.True(t, IsValidEventStatus("active"))
	require.False(t, IsValidEventStatus("Active"))
	require.False(t, IsValidEventStatus(""))
}
