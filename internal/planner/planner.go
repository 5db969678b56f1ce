package planner

import "github.com/amishk599/jobscout/internal/model"

// Planner turns a goal into an ordered task list.
type Planner interface {
	GenerateTasks(goal string) []model.Task
}

// StaticPlanner always returns the same five tasks, whatever the goal.
type StaticPlanner struct{}

var _ Planner = StaticPlanner{}

// GenerateTasks returns skills, resume, cover, jobs and posts in that order.
// A fresh slice is returned on every call.
func (StaticPlanner) GenerateTasks(_ string) []model.Task {
	return []model.Task{
		{Rationale: "Research skills required", Tool: model.ToolSkills},
		{Rationale: "Draft tailored resume", Tool: model.ToolResume},
		{Rationale: "Draft tailored cover letter", Tool: model.ToolCover},
		{Rationale: "Find matching job listings", Tool: model.ToolJobs},
		{Rationale: "Find related posts for this job", Tool: model.ToolPosts},
	}
}
