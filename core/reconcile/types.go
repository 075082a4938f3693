package reconcile

// Result represents the reconciliation output for a single key.
// It records in which of the two states the key is present and any detected mismatches.
type Result struct {
	// ID is the unique identifier for the entity.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// BeforePresent indicates whether the entity existed in the previous state.
	BeforePresent bool `json:"before_present"`

	// AfterPresent indicates whether the entity exists in the new state.
	AfterPresent bool `json:"after_present"`

	// Mismatch contains descriptions of field changes between the two states.
	// Each string describes a specific change, e.g., "quantity: before=1 after=3".
	Mismatch []string `json:"mismatch"`
}

// ActionType represents the kind of change a key went through.
type ActionType string

const (
	// ActionAdd marks a key that only exists in the new state.
	ActionAdd ActionType = "add"
	// ActionRemove marks a key that only existed in the previous state.
	ActionRemove ActionType = "remove"
	// ActionUpdate marks a key present in both states with changed fields.
	ActionUpdate ActionType = "update"
)

// Action represents one planned or observed change.
type Action struct {
	// Type specifies the change.
	Type ActionType `json:"type"`

	// Key is the entity identifier.
	Key string `json:"key"`

	// Reason explains the change.
	Reason string `json:"reason"`
}

// Plan contains reconciliation results and the actions that lead from the
// previous state to the new one.
type Plan struct {
	// Adapter is the name of the adapter that produced the plan.
	Adapter string `json:"adapter"`

	// Results contains per-entity reconciliation data.
	Results []Result `json:"results"`

	// Actions contains the changes, ordered by key.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// TotalItems is the total number of unique keys across both states.
	TotalItems int `json:"total_items"`

	// Added counts keys only present in the new state.
	Added int `json:"added"`

	// Removed counts keys only present in the previous state.
	Removed int `json:"removed"`

	// Changed counts keys with field differences.
	Changed int `json:"changed"`

	// Unchanged counts keys identical in both states.
	Unchanged int `json:"unchanged"`
}

// Empty reports whether the plan contains no actions.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Actions) == 0
}

// Find returns the result for key, if any.
func (p *Plan) Find(key string) (Result, bool) {
	if p == nil {
		return Result{}, false
	}
	for _, r := range p.Results {
		if r.ID == key {
			return r, true
		}
	}
	return Result{}, false
}
