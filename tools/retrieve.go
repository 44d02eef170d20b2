package tools

import (
	"context"
	"fmt"

	"github.com/athapong/graphrag-mcp/pkg/graph/retrieval"
	"github.com/athapong/graphrag-mcp/util"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	defaultChunkLimit      = 5
	defaultStructuredLimit = 25
)

var toolLogger = func() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}()

// RegisterKnowledgeTools wires the retrieval service into the MCP surface.
func RegisterKnowledgeTools(s *server.MCPServer, svc *retrieval.Service) {
	retrieveTool := mcp.NewTool("knowledge_retrieve",
		mcp.WithDescription("Retrieve knowledge chunks and related graph context for a natural-language query. Returns grounding context text combining matched chunks, entity highlights and relationship summaries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language query to search the knowledge graph with")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of chunks to return (default 5)")),
		mcp.WithNumber("structured_limit", mcp.Description("Maximum number of relationship rows to load for linked entities (default 25)")),
	)

	s.AddTool(retrieveTool, server.ToolHandlerFunc(util.ErrorGuard(knowledgeRetrieveHandler(svc))))
}

func knowledgeRetrieveHandler(svc *retrieval.Service) util.ToolHandler {
	return func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		query, ok := arguments["query"].(string)
		if !ok {
			return mcp.NewToolResultError("query must be a string"), nil
		}

		limit := defaultChunkLimit
		if raw, ok := arguments["limit"].(float64); ok && raw > 0 {
			limit = int(raw)
		}
		structuredLimit := defaultStructuredLimit
		if raw, ok := arguments["structured_limit"].(float64); ok && raw > 0 {
			structuredLimit = int(raw)
		}

		requestID := uuid.NewString()
		log := toolLogger.WithFields(logrus.Fields{
			"request_id": requestID,
			"limit":      limit,
		})

		result, err := svc.Retrieve(context.Background(), query, limit, structuredLimit)
		if err != nil {
			log.WithError(err).Error("Knowledge retrieval failed")
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}

		log.WithFields(logrus.Fields{
			"chunks":   len(result.Chunks),
			"entities": len(result.StructuredEntities),
		}).Info("Knowledge retrieval complete")

		rendered := RenderGroundingContext(result)
		if rendered == "" {
			rendered = "No knowledge found for the query."
		}
		return mcp.NewToolResultText(rendered), nil
	}
}
