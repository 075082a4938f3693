package reconcile

import (
	"fmt"
	"strings"
)

// BuildPlan reconciles the two states and returns the results together with
// the actions that turn before into after.
func BuildPlan[T any](adapter Adapter[T], before, after map[string]T) *Plan {
	results := Diff(adapter, before, after)
	summary, actions := buildPlanFromResults(results)

	return &Plan{
		Adapter: adapter.Name(),
		Results: results,
		Actions: actions,
		Summary: summary,
	}
}

// buildPlanFromResults generates a summary and action list from reconciliation results.
func buildPlanFromResults(results []Result) (PlanSummary, []Action) {
	var summary PlanSummary
	actions := []Action{}

	summary.TotalItems = len(results)

	for _, result := range results {
		switch {
		case result.AfterPresent && !result.BeforePresent:
			actions = append(actions, Action{
				Type:   ActionAdd,
				Key:    result.ID,
				Reason: "missing in: before",
			})
			summary.Added++
		case result.BeforePresent && !result.AfterPresent:
			actions = append(actions, Action{
				Type:   ActionRemove,
				Key:    result.ID,
				Reason: "missing in: after",
			})
			summary.Removed++
		case len(result.Mismatch) > 0:
			actions = append(actions, Action{
				Type:   ActionUpdate,
				Key:    result.ID,
				Reason: "mismatch: " + strings.Join(result.Mismatch, ", "),
			})
			summary.Changed++
		default:
			summary.Unchanged++
		}
	}

	return summary, actions
}

// String renders the summary in a compact form for logs and CLIs.
func (s PlanSummary) String() string {
	return fmt.Sprintf("%d added, %d removed, %d changed, %d unchanged", s.Added, s.Removed, s.Changed, s.Unchanged)
}
