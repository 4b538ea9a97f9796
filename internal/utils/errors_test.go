package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestH5Error_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *H5Error
		expected string
	}{
		{
			name:     "context only",
			err:      &H5Error{Context: "read elements", Cause: errors.New("handle closed")},
			expected: "read elements: handle closed",
		},
		{
			name:     "with path",
			err:      &H5Error{Context: "open object", Path: "/g1/ds", Cause: errors.New("not found")},
			expected: `open object "/g1/ds": not found`,
		},
		{
			name:     "empty context",
			err:      &H5Error{Cause: errors.New("some error")},
			expected: ": some error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWrapError(t *testing.T) {
	sentinel := errors.New("sentinel")

	require.NoError(t, WrapError("ctx", nil))
	require.NoError(t, WrapPathError("ctx", "/a", nil))

	err := WrapError("outer", sentinel)
	require.ErrorIs(t, err, sentinel)

	err = WrapPathError("rename", "/a/b", sentinel)
	require.ErrorIs(t, err, sentinel)

	var h5err *H5Error
	require.ErrorAs(t, err, &h5err)
	require.Equal(t, "/a/b", h5err.Path)
}
