package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
)

// Strategy selects how routed tools run
type Strategy string

const (
	// StrategyParallel fans out all tool calls at once, each individually
	// time-boxed
	StrategyParallel Strategy = "parallel"
	// StrategySequential runs tools in priority order and stops after a
	// critical failure
	StrategySequential Strategy = "sequential"
)

// defaultToolTimeout bounds tools that do not declare their own
const defaultToolTimeout = 15 * time.Second

// defaultConfidence is assumed for tools that report no confidence
const defaultConfidence = 0.5

// Executor runs a routing decision against the registry. Tool failures of
// any kind, timeouts and panics included, become failed ToolResults; the
// executor itself never returns an error.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an Executor over the given registry
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs every selected tool under the given strategy, appends the
// escalation tool when the decision requires it, and aggregates outcomes.
func (e *Executor) Execute(ctx context.Context, decision *model.RoutingDecision, req *Request, strategy Strategy) *model.ExecutionResult {
	var results []*model.ToolResult

	switch strategy {
	case StrategySequential:
		results = e.runSequential(ctx, decision.SelectedTools, req)
	default:
		results = e.runParallel(ctx, decision.SelectedTools, req)
	}

	var escalationRef string
	if decision.RequiresEscalation {
		escReq := &Request{
			Actor:  req.Actor,
			Intent: req.Intent,
			Params: map[string]any{"reason": decision.EscalationReason},
		}
		escResult := e.runOne(ctx, EscalationToolName, escReq)
		results = append(results, escResult)
		if ref, ok := escResult.Metadata["reference_id"].(string); ok {
			escalationRef = ref
		}
	}

	return aggregate(results, escalationRef)
}

func (e *Executor) runParallel(ctx context.Context, selected []model.SelectedTool, req *Request) []*model.ToolResult {
	results := make([]*model.ToolResult, len(selected))

	done := make(chan struct{})
	for i, sel := range selected {
		go func(idx int, sel model.SelectedTool) {
			results[idx] = e.runOne(ctx, sel.Name, requestFor(req, sel))
			done <- struct{}{}
		}(i, sel)
	}
	for range selected {
		<-done
	}
	close(done)

	return results
}

func (e *Executor) runSequential(ctx context.Context, selected []model.SelectedTool, req *Request) []*model.ToolResult {
	var results []*model.ToolResult
	for _, sel := range selected {
		result := e.runOne(ctx, sel.Name, requestFor(req, sel))
		results = append(results, result)
		if !result.Success && result.Critical {
			logging.From(ctx).Warn("stopping sequential execution after critical failure",
				"tool", sel.Name, "error", result.Error)
			break
		}
	}
	return results
}

// requestFor overlays the selection's parameters onto the shared request,
// so a router-chosen argument (such as a resolved student ID) reaches the
// tool it was chosen for
func requestFor(req *Request, sel model.SelectedTool) *Request {
	if len(sel.Params) == 0 {
		return req
	}
	params := make(map[string]any, len(req.Params)+len(sel.Params))
	for k, v := range req.Params {
		params[k] = v
	}
	for k, v := range sel.Params {
		params[k] = v
	}
	return &Request{
		Actor:  req.Actor,
		Intent: req.Intent,
		Params: params,
	}
}

// runOne races a single tool call against its declared timeout. Timeouts,
// panics and errors all degrade to failed results.
func (e *Executor) runOne(ctx context.Context, name string, req *Request) *model.ToolResult {
	t, ok := e.registry.Get(name)
	if !ok {
		return model.FailedToolResult(name, types.ErrKindNotFound, "tool is not registered")
	}

	timeout := t.Definition().Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan *model.ToolResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(ctx).Error("tool panicked", "tool", name, "panic", r)
				resultCh <- model.FailedToolResult(name, types.ErrKindProvider, fmt.Sprintf("tool panicked: %v", r))
			}
		}()

		result, err := t.Run(tctx, req)
		if err != nil {
			resultCh <- model.FailedToolResult(name, types.ErrKindProvider, err.Error())
			return
		}
		if result == nil {
			resultCh <- model.FailedToolResult(name, types.ErrKindProvider, "tool returned no result")
			return
		}
		result.ToolName = name
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-tctx.Done():
		return model.FailedToolResult(name, types.ErrKindTimeout,
			fmt.Sprintf("tool did not finish within %s", timeout))
	}
}

// aggregate combines per-tool results into the overall execution outcome.
// Combined confidence is the mean of reported confidences, defaulting to
// 0.5 per tool that reported none.
func aggregate(results []*model.ToolResult, escalationRef string) *model.ExecutionResult {
	out := &model.ExecutionResult{
		Success:       len(results) > 0,
		Results:       results,
		EscalationRef: escalationRef,
	}

	var confidenceSum float64
	seenActions := make(map[string]struct{})

	for _, r := range results {
		if !r.Success {
			out.Success = false
		}
		if r.HasConfidence {
			confidenceSum += r.Confidence
		} else {
			confidenceSum += defaultConfidence
		}
		if r.RequiresFollowUp {
			out.RequiresFollowUp = true
		}
		for _, a := range r.SuggestedActions {
			if _, ok := seenActions[a]; ok {
				continue
			}
			seenActions[a] = struct{}{}
			out.SuggestedActions = append(out.SuggestedActions, a)
		}
	}

	if len(results) > 0 {
		out.CombinedConfidence = confidenceSum / float64(len(results))
	}
	return out
}
