package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestWithDetailKeepsSentinelIntact(t *testing.T) {
	t.Parallel()

	err := ErrUnknownNode.WithDetail("node %d", 42)

	require.ErrorIs(t, err, ErrUnknownNode)
	assert.Empty(t, ErrUnknownNode.Detail)
	assert.Equal(t, "node 42", err.Detail)
	assert.Contains(t, err.Error(), "unknown node: node 42")
	assert.NotEmpty(t, err.Stack)
}

func TestIsDistinguishesCodes(t *testing.T) {
	t.Parallel()

	err := ErrMalformedTree.WithDetail("cycle")

	assert.ErrorIs(t, err, ErrMalformedTree)
	assert.NotErrorIs(t, err, ErrUnknownNode)
	assert.NotErrorIs(t, err, ErrInvalidStrategy)
}

func TestFromErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("query failed: %w", ErrNotPreprocessed.WithDetail("naive"))

	e, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 409101, e.Code)
	assert.True(t, errors.Is(wrapped, ErrNotPreprocessed))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
}

func TestProtocolMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *Error
		http int
		grpc codes.Code
	}{
		{ErrMalformedTree, http.StatusBadRequest, codes.InvalidArgument},
		{ErrUnknownNode, http.StatusNotFound, codes.NotFound},
		{ErrBatchAlreadyResolved, http.StatusConflict, codes.FailedPrecondition},
		{ErrIncompleteBatch, http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.http, tt.err.HTTPStatus(), tt.err.Message)
		assert.Equal(t, tt.grpc, tt.err.GRPCCode(), tt.err.Message)
	}
}

func TestWrapPreservesCode(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, ErrInternal, "nothing"))

	w := Wrap(ErrUnknownNode.WithDetail("node 7"), ErrInternal, "lookup failed")
	assert.ErrorIs(t, w, ErrUnknownNode)
	assert.Equal(t, "lookup failed", w.Message)

	plain := WrapInternal(errors.New("boom"), "build failed")
	assert.Equal(t, ErrInternal, plain.Type)
	assert.EqualError(t, errors.Unwrap(plain), "boom")
}
