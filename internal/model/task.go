package model

import "fmt"

// ToolID identifies one of the agent's tools. The set is closed.
type ToolID string

const (
	ToolSkills ToolID = "skills"
	ToolResume ToolID = "resume"
	ToolCover  ToolID = "cover"
	ToolJobs   ToolID = "jobs"
	ToolPosts  ToolID = "posts"
)

// Tools lists every tool in plan order.
var Tools = []ToolID{ToolSkills, ToolResume, ToolCover, ToolJobs, ToolPosts}

// ParseToolID converts a raw identifier into a ToolID.
func ParseToolID(s string) (ToolID, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// Task is one planned step: why it runs and which tool it invokes.
type Task struct {
	Rationale string
	Tool      ToolID
}
