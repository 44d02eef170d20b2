package util

import (
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// ToolHandler is the handler shape registered for every MCP tool.
type ToolHandler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)

var guardLogger = func() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}()

// ErrorGuard converts handler panics into tool error results so a single bad
// invocation cannot take the whole server down.
func ErrorGuard(handler ToolHandler) ToolHandler {
	return func(arguments map[string]interface{}) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				guardLogger.WithFields(logrus.Fields{
					"panic": fmt.Sprintf("%v", r),
					"stack": string(debug.Stack()),
				}).Error("Tool handler panicked")
				result = mcp.NewToolResultError(fmt.Sprintf("tool panicked: %v", r))
				err = nil
			}
		}()
		return handler(arguments)
	}
}
