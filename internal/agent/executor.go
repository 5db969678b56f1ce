package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/planner"
)

// DefaultPreviewChars bounds the OBSERVE line of the trace.
const DefaultPreviewChars = 600

// TraceFunc receives one human-readable trace line per call.
type TraceFunc func(line string)

// Dispatcher runs one tool against the run's memory.
type Dispatcher interface {
	UseTool(ctx context.Context, tool model.ToolID, mem *model.Memory, goal string) (any, error)
}

// Request is one agent run. Location and Company are optional search hints.
type Request struct {
	Goal     string
	Location string
	Company  string
}

// Executor runs the planned tasks one after another over a fresh memory.
type Executor struct {
	planner      planner.Planner
	dispatcher   Dispatcher
	previewChars int
	logger       *slog.Logger
}

// NewExecutor creates an executor. previewChars <= 0 selects DefaultPreviewChars.
func NewExecutor(p planner.Planner, d Dispatcher, previewChars int, logger *slog.Logger) *Executor {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &Executor{
		planner:      p,
		dispatcher:   d,
		previewChars: previewChars,
		logger:       logger,
	}
}

// Run executes the plan for goal with no search hints.
func (e *Executor) Run(ctx context.Context, goal string, trace TraceFunc) (*model.Memory, error) {
	return e.RunRequest(ctx, Request{Goal: goal}, trace)
}

// RunRequest executes the plan for req. Tool errors are not recovered here:
// the first one stops the run and is returned together with the memory
// filled so far. The context is checked before each task.
func (e *Executor) RunRequest(ctx context.Context, req Request, trace TraceFunc) (*model.Memory, error) {
	if trace == nil {
		trace = func(string) {}
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID, "goal", req.Goal)
	start := time.Now()

	mem := model.NewMemory()
	if req.Location != "" {
		mem.Set(model.KeyLocation, req.Location)
	}
	if req.Company != "" {
		mem.Set(model.KeyCompany, req.Company)
	}

	trace("PLAN: tasks for → " + req.Goal)
	tasks := e.planner.GenerateTasks(req.Goal)
	logger.Info("agent run started", "tasks", len(tasks))

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			logger.Warn("agent run cancelled", "completed", i, "error", err)
			return mem, fmt.Errorf("run cancelled before %s: %w", task.Tool, err)
		}

		trace("THOUGHT: " + task.Rationale)

		taskStart := time.Now()
		out, err := e.dispatcher.UseTool(ctx, task.Tool, mem, req.Goal)
		if err != nil {
			logger.Error("tool failed", "tool", task.Tool, "error", err)
			return mem, fmt.Errorf("task %d (%s): %w", i+1, task.Tool, err)
		}
		mem.Set(string(task.Tool), out)

		trace("OBSERVE: " + Preview(out, e.previewChars))
		logger.Debug("tool finished", "tool", task.Tool, "duration", time.Since(taskStart))
	}

	trace("FINISH.")
	logger.Info("agent run finished", "duration", time.Since(start), "keys", mem.Len())
	return mem, nil
}
