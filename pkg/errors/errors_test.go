package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeParse, "bad table"),
			want: "[PARSE_ERROR] bad table",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeClusterQuery, "kubectl get nodes failed", errors.New("exit status 1")),
			want: "[CLUSTER_QUERY_ERROR] kubectl get nodes failed: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStructuredError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("node-1: %w", Wrap(ErrCodeClusterQuery, "stats", cause))

	assert.ErrorIs(t, err, cause)

	var se *StructuredError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, ErrCodeClusterQuery, se.Code)
	}
}

func TestIsCode(t *testing.T) {
	inner := Wrap(ErrCodeParse, "decode", errors.New("unexpected EOF"))
	outer := Wrap(ErrCodeClusterQuery, "fetch", inner)

	assert.True(t, IsCode(outer, ErrCodeClusterQuery))
	assert.True(t, IsCode(outer, ErrCodeParse))
	assert.False(t, IsCode(outer, ErrCodeTimeout))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeParse))
	assert.False(t, IsCode(nil, ErrCodeParse))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeParse, CodeOf(fmt.Errorf("wrapped: %w", New(ErrCodeParse, "x"))))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestWrapWithContext(t *testing.T) {
	err := WrapWithContext(ErrCodeClusterQuery, "debug pod failed", nil, map[string]any{"node": "node-1"})
	assert.Equal(t, "node-1", err.Context["node"])
	assert.Nil(t, err.Unwrap())
}
