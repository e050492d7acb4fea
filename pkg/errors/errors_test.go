package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrInternal.Code, "failed to write backup")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to write backup: disk full", err.Error())
}

func TestFromErrorNormalisesForeignErrors(t *testing.T) {
	e := FromError(errors.New("boom"))
	require.NotNil(t, e)
	assert.Equal(t, ErrInternal.Code, e.Code)

	assert.Nil(t, FromError(nil))
}

func TestFromErrorUnwrapsThroughFmt(t *testing.T) {
	inner := Clone(ErrNotFound, "enrollment not found")
	wrapped := fmt.Errorf("load run: %w", inner)

	e := FromError(wrapped)
	require.NotNil(t, e)
	assert.Equal(t, ErrNotFound.Code, e.Code)
	assert.True(t, HasCode(wrapped, ErrNotFound.Code))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	c := Clone(ErrDuplicate, "edge already present")
	assert.Equal(t, "edge already present", c.Message)
	assert.Equal(t, "resource already exists", ErrDuplicate.Message)
	assert.Equal(t, ErrDuplicate.Code, c.Code)
}
