package model

import (
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// ToolDefinition describes a capability provider. Definitions are
// registered once at startup and are immutable thereafter.
type ToolDefinition struct {
	Name                   string
	Description            string
	RequiredPermissions    []types.Permission
	HandledIntents         []types.IntentCategory
	RequiresStudentContext bool
	Timeout                time.Duration
}

// HandlesIntent reports whether the tool is mapped to the given category
func (d ToolDefinition) HandlesIntent(category types.IntentCategory) bool {
	for _, c := range d.HandledIntents {
		if c == category {
			return true
		}
	}
	return false
}

// PermittedFor reports whether the actor holds every required permission
func (d ToolDefinition) PermittedFor(actor *Actor) bool {
	for _, p := range d.RequiredPermissions {
		if !actor.Can(p) {
			return false
		}
	}
	return true
}

// Citation points at a source document backing part of an answer
type Citation struct {
	SourceID string
	Title    string
	Excerpt  string
}

// ToolResult is the structured outcome of one tool call. Failures are
// results, not errors: a timeout or provider failure degrades to a failed
// ToolResult rather than an unhandled error.
type ToolResult struct {
	ToolName         string
	Success          bool
	Content          string
	Citations        []Citation
	Confidence       float64 // 0 when the tool reported none
	HasConfidence    bool
	ErrorKind        types.ErrorKind
	Error            string
	Critical         bool // sequential execution stops after a critical failure
	SuggestedActions []string
	RequiresFollowUp bool
	Metadata         map[string]any
}

// FailedToolResult builds the structured failure result for a tool call
func FailedToolResult(name string, kind types.ErrorKind, msg string) *ToolResult {
	return &ToolResult{
		ToolName:  name,
		Success:   false,
		ErrorKind: kind,
		Error:     msg,
	}
}

// SelectedTool is one routed tool invocation with priority order
type SelectedTool struct {
	Name     string
	Priority int
	Params   map[string]any
}

// RoutingDecision is the router's plan for a classified intent
type RoutingDecision struct {
	SelectedTools      []SelectedTool
	Reasoning          string
	RequiresEscalation bool
	EscalationReason   string
}

// ExecutionResult aggregates the outcomes of all routed tool calls
type ExecutionResult struct {
	Success            bool // true only if every tool succeeded
	Results            []*ToolResult
	CombinedConfidence float64
	SuggestedActions   []string
	RequiresFollowUp   bool
	EscalationRef      string // set when an escalation was raised
}

// AllFailed reports whether every executed tool failed
func (r *ExecutionResult) AllFailed() bool {
	if len(r.Results) == 0 {
		return true
	}
	for _, res := range r.Results {
		if res.Success {
			return false
		}
	}
	return true
}
