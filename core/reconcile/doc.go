// Package reconcile compares two keyed states of the same model and reports
// what changed between them.
//
// The system consists of two parts:
//
// 1. Engine: builds the union of keys from both states, detects presence and
// absence, and asks the adapter for field mismatches.
//
// 2. Adapter: model-specific naming and field comparison. The basket uses one
// to describe how a server sync changed the local view.
//
// # Usage Example
//
//	plan := reconcile.BuildPlan(lineAdapter{}, previous, current)
//	for _, action := range plan.Actions {
//	    fmt.Println(action.Type, action.Key, action.Reason)
//	}
//
// Results and actions are sorted by key, so plans are deterministic and can be
// compared directly in tests.
package reconcile
