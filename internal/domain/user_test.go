package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	user, err := NewUser(id, "dadepu")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "dadepu", user.Username)
	assert.Equal(t, StatusActive, user.Status)
}

func TestNewUserRejectsNilID(t *testing.T) {
	t.Parallel()
	_, err := NewUser(uuid.Nil, "dadepu")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"minimum length", "abcd", false},
		{"maximum length", "sixteen_chars_xx", false},
		{"digits and underscore", "user_42", false},
		{"too short", "abc", true},
		{"too long", "this_name_is_way_too_long", true},
		{"whitespace", "two words", true},
		{"punctuation", "user-name", true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateUsername(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidUsername)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRename(t *testing.T) {
	t.Parallel()
	user, err := NewUser(uuid.New(), "dadepu")
	require.NoError(t, err)

	require.NoError(t, user.Rename("dadepu2"))
	assert.Equal(t, "dadepu2", user.Username)

	require.ErrorIs(t, user.Rename("x"), ErrInvalidUsername)
	assert.Equal(t, "dadepu2", user.Username)
}

func TestUserDisableIsIdempotent(t *testing.T) {
	t.Parallel()
	user, err := NewUser(uuid.New(), "dadepu")
	require.NoError(t, err)

	user.Disable()
	assert.Equal(t, StatusDisabled, user.Status)
	user.Disable()
	assert.Equal(t, StatusDisabled, user.Status)
}

func TestValidStatus(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusDisabled))
	assert.False(t, ValidStatus(Status("archived")))
}
