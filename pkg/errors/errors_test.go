// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and the config/expansion/item error kinds

package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "overwrite_denied",
			code:    errors.ErrOverwriteDenied,
			message: "destination exists",
			wantStr: "[OVERWRITE_DENIED] destination exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("base error")

	t.Run("wrap_non_nil", func(t *testing.T) {
		err := errors.Wrap(base, errors.ErrInternal, "internal error")
		require.NotNil(t, err)
		assert.Equal(t, errors.ErrInternal, err.Code)
		assert.Same(t, base, err.Wrapped)
		assert.Equal(t, "[INTERNAL] internal error: base error", err.Error())
		assert.True(t, stderrors.Is(err, base))
	})

	t.Run("wrap_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "ignored %d", 1))
	})
}

func TestIsErrorCode(t *testing.T) {
	inner := errors.Wrap(fs.ErrPermission, errors.ErrFileWrite, "write failed").
		WithDetail("path", "/dst/a")
	wrapped := fmt.Errorf("outer: %w", inner)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrFileWrite))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrFileRead))
	assert.Equal(t, errors.ErrFileWrite, errors.GetErrorCode(wrapped))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Equal(t, "/dst/a", errors.GetErrorDetails(wrapped)["path"])
	assert.True(t, stderrors.Is(wrapped, fs.ErrPermission))
	assert.True(t, stderrors.Is(wrapped, errors.New(errors.ErrFileWrite, "")))
}

func TestConfigError(t *testing.T) {
	var cerr errors.ConfigError
	assert.NoError(t, cerr.ErrOrNil())

	cerr.Add("nvim", "target", "must differ from basedir")
	err := cerr.ErrOrNil()
	require.Error(t, err)
	assert.Equal(t, "invalid configuration: group nvim: target: must differ from basedir", err.Error())

	cerr.Add("", "hostname_sep", "must not be empty")
	assert.Contains(t, cerr.Error(), "2 problems")
	assert.Contains(t, cerr.Error(), "  - hostname_sep: must not be empty")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrConfigValid, "")))
}

func TestExpansionAndItemErrors(t *testing.T) {
	exp := errors.NewExpansionError("nvim", "/src/nvim",
		errors.New(errors.ErrBasedirNotDir, "basedir is not a directory"))
	assert.Equal(t, "group nvim: /src/nvim: [BASEDIR_NOT_DIR] basedir is not a directory", exp.Error())
	assert.True(t, errors.IsErrorCode(exp, errors.ErrBasedirNotDir))
	assert.False(t, errors.IsItemError(exp))

	item := errors.NewItemError("/dst/a", errors.Wrap(fs.ErrPermission, errors.ErrFileWrite, "write"))
	assert.True(t, errors.IsItemError(fmt.Errorf("ctx: %w", item)))
	assert.True(t, stderrors.Is(item, fs.ErrPermission))
}
