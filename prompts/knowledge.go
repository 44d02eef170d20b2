package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterKnowledgePrompts adds the grounded-answer prompt template.
func RegisterKnowledgePrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("knowledge_answer",
		mcp.WithPromptDescription("Answer a question using retrieved knowledge-graph context"),
		mcp.WithArgument("question", mcp.ArgumentDescription("The question to answer from the knowledge graph")),
	)
	s.AddPrompt(prompt, func(arguments map[string]string) (*mcp.GetPromptResult, error) {
		var request mcp.GetPromptRequest
		request.Params.Name = "knowledge_answer"
		request.Params.Arguments = arguments
		return knowledgeAnswerHandler(context.Background(), request)
	})
}

func knowledgeAnswerHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	question := request.Params.Arguments["question"]

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Grounded answer for: %s", question),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Use the knowledge_retrieve tool to gather context for %q, then answer strictly from the returned chunks and entity relationships. Cite chunk ids for every claim and say when the context is insufficient.", question),
				},
			},
		},
	}, nil
}
