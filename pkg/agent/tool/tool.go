package tool

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// Tool is one capability the pipeline can invoke for a classified intent.
// Implementations return failures as failed ToolResults; an error return
// is reserved for caller-contract violations.
type Tool interface {
	Definition() model.ToolDefinition
	Run(ctx context.Context, req *Request) (*model.ToolResult, error)
}

// Request carries everything a tool call needs
type Request struct {
	Actor  *model.Actor
	Intent *model.ClassifiedIntent
	Params map[string]any
}
