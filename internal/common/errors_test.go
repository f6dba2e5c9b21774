package common

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("advancing: %w", Timeout("clustering", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, IsKind(err, KindTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("boom")))
	assert.False(t, IsKind(nil, KindTimeout))
}

func TestIsRecoverable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Timeout("titles", nil), true},
		{ServerError("titles", 502, nil), true},
		{Malformed("titles", "empty"), true},
		{Validation("need 10"), false},
		{Cancelled("titles", context.Canceled), false},
		{fmt.Errorf("other"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRecoverable(tc.err), "%v", tc.err)
	}
}

func TestError_Message(t *testing.T) {
	err := ServerError("outline", 500, fmt.Errorf("internal"))
	assert.Equal(t, "outline: server_error (status 500): internal", err.Error())
	assert.Equal(t, 500, StatusOf(err))

	err = Validation("%d/10 selected", 9)
	assert.Equal(t, "validation: 9/10 selected", err.Error())
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug", "json")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}
