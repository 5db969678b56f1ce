package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/jobscout/internal/model"
)

func TestStaticPlanner_FixedOrder(t *testing.T) {
	for _, goal := range []string{"Data Analyst", "", "pilot", "  ünïcode  "} {
		tasks := StaticPlanner{}.GenerateTasks(goal)

		assert.Len(t, tasks, 5)
		got := make([]model.ToolID, len(tasks))
		for i, task := range tasks {
			got[i] = task.Tool
			assert.NotEmpty(t, task.Rationale)
		}
		assert.Equal(t, model.Tools, got, "goal %q", goal)
	}
}

func TestStaticPlanner_FreshSlice(t *testing.T) {
	p := StaticPlanner{}
	first := p.GenerateTasks("x")
	first[0].Tool = model.ToolPosts

	assert.Equal(t, model.ToolSkills, p.GenerateTasks("x")[0].Tool)
}
