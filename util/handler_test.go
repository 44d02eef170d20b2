package util

import (
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorGuardPassesThroughResult(t *testing.T) {
	handler := ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestErrorGuardPassesThroughError(t *testing.T) {
	boom := errors.New("boom")
	handler := ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		return nil, boom
	})

	_, err := handler(nil)
	assert.ErrorIs(t, err, boom)
}

func TestErrorGuardRecoversPanic(t *testing.T) {
	handler := ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		panic("handler exploded")
	})

	result, err := handler(map[string]interface{}{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
