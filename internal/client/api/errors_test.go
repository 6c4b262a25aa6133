package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldPath_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FieldPath
	}{
		{name: "string form", in: `"email"`, want: "email"},
		{name: "array form takes first segment", in: `["email","nested"]`, want: "email"},
		{name: "empty array", in: `[]`, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p FieldPath
			require.NoError(t, json.Unmarshal([]byte(tc.in), &p))
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestFoldFieldErrors_JoinsSameField(t *testing.T) {
	items := []FieldErrorItem{
		{Path: "email", Message: "A"},
		{Path: "email", Message: "B"},
		{Path: "username", Message: "C"},
	}

	folded := FoldFieldErrors(items)

	assert.Equal(t, map[string]string{
		"email":    "A; B",
		"username": "C",
	}, folded)
}

func TestFoldFieldErrors_MissingPathGoesToGeneral(t *testing.T) {
	folded := FoldFieldErrors([]FieldErrorItem{{Message: "something broke"}})
	assert.Equal(t, map[string]string{"general": "something broke"}, folded)
}

func TestFoldFieldErrors_EmptyInput(t *testing.T) {
	assert.Nil(t, FoldFieldErrors(nil))
}

func TestAPIError_UnwrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(&APIError{Status: http.StatusUnauthorized}, ErrUnauthorized))
	assert.True(t, errors.Is(&APIError{Status: http.StatusNotFound}, ErrNotFound))
	assert.True(t, errors.Is(&APIError{Status: 0}, ErrUnavailable))
	assert.False(t, errors.Is(&APIError{Status: http.StatusBadRequest}, ErrUnauthorized))
}
