package provider

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
)

// MCPSource lists tools from a Model Context Protocol server. The record
// config supplies either "command" (argv line for a stdio server) or
// "url" (streamable HTTP endpoint).
type MCPSource struct {
	record inventory.SourceRecord
	logger *zap.Logger
	dial   func(ctx context.Context) (mcp.Transport, error) // overrides transport construction when set

	mu      sync.Mutex
	session *mcp.ClientSession
}

// NewMCPSource builds an MCP source for the record. No connection is made
// until the first List call.
func NewMCPSource(record inventory.SourceRecord, logger *zap.Logger) *MCPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MCPSource{record: record, logger: logger}
}

func (s *MCPSource) connect(ctx context.Context) (*mcp.ClientSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return s.session, nil
	}

	dial := s.dial
	if dial == nil {
		dial = s.transport
	}
	transport, err := dial(ctx)
	if err != nil {
		return nil, err
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "toolscope", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

func (s *MCPSource) transport(ctx context.Context) (mcp.Transport, error) {
	if command := strings.TrimSpace(s.record.Config["command"]); command != "" {
		argv := strings.Fields(command)
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		return &mcp.CommandTransport{Command: cmd}, nil
	}
	if url := strings.TrimSpace(s.record.Config["url"]); url != "" {
		return &mcp.StreamableClientTransport{Endpoint: url}, nil
	}
	return nil, errors.New("mcp source needs a command or url in its config")
}

// List connects (once) and pages through the server's tool listing.
func (s *MCPSource) List(ctx context.Context) ([]inventory.ToolDescriptor, error) {
	session, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	var out []inventory.ToolDescriptor
	cursor := ""
	for {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return nil, err
		}
		for _, tool := range res.Tools {
			out = append(out, s.descriptor(tool))
		}
		if res.NextCursor == "" {
			return out, nil
		}
		cursor = res.NextCursor
	}
}

func (s *MCPSource) descriptor(tool *mcp.Tool) inventory.ToolDescriptor {
	return inventory.ToolDescriptor{
		Path:        s.path(tool.Name),
		Description: tool.Description,
		Source:      string(inventory.SourceMCP) + ":" + s.record.Name,
		Approval:    s.approval(tool),
	}
}

// path namespaces the raw tool name under the source so identical tool
// names from different servers never collide.
func (s *MCPSource) path(toolName string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', ' ':
			return '.'
		default:
			return r
		}
	}, toolName)
	return s.record.Name + "." + cleaned
}

// approval derives the confirmation gate from the server's annotations:
// anything marked destructive needs a human, read-only tools never do,
// and the source config's "approval" key decides the rest.
func (s *MCPSource) approval(tool *mcp.Tool) inventory.ApprovalMode {
	if ann := tool.Annotations; ann != nil {
		if ann.DestructiveHint != nil && *ann.DestructiveHint {
			return inventory.ApprovalRequired
		}
		if ann.ReadOnlyHint {
			return inventory.ApprovalAuto
		}
	}
	if s.record.Config["approval"] == string(inventory.ApprovalRequired) {
		return inventory.ApprovalRequired
	}
	return inventory.ApprovalAuto
}

// Details re-lists the server and extracts the expensive fields for the
// requested paths: the full description plus the input/output schemas.
func (s *MCPSource) Details(ctx context.Context, paths []string) (map[string]view.Detail, error) {
	session, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}

	out := make(map[string]view.Detail, len(paths))
	cursor := ""
	for {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return nil, err
		}
		for _, tool := range res.Tools {
			path := s.path(tool.Name)
			if _, ok := wanted[path]; !ok {
				continue
			}
			out[path] = view.Detail{
				Description: tool.Description,
				Display: &inventory.DisplayHints{
					Schema: tool.InputSchema,
				},
			}
		}
		if res.NextCursor == "" {
			return out, nil
		}
		cursor = res.NextCursor
	}
}

// Close drops the session if one was established.
func (s *MCPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
