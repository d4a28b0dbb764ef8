// A small stdio MCP server exposing a few demo tools, handy for trying
// toolscope end to end:
//
//	toolscope sources add demo --command "go run ./test-tool"
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type echoArgs struct {
	Message string `json:"message"`
}

type wipeArgs struct {
	Target string `json:"target"`
}

func main() {
	server := mcp.NewServer(&mcp.Implementation{Name: "toolscope-demo", Version: "1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Echoes back the input message",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args echoArgs) (*mcp.CallToolResult, any, error) {
		return nil, map[string]any{"echo": args.Message}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shout",
		Description: "Echoes back the input message in uppercase",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args echoArgs) (*mcp.CallToolResult, any, error) {
		return nil, map[string]any{"echo": strings.ToUpper(args.Message)}, nil
	})

	destructive := true
	mcp.AddTool(server, &mcp.Tool{
		Name:        "wipe",
		Description: "Pretends to wipe a target (exercises approval gating)",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: &destructive},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args wipeArgs) (*mcp.CallToolResult, any, error) {
		return nil, map[string]any{"wiped": fmt.Sprintf("(not really) %s", args.Target)}, nil
	})

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
