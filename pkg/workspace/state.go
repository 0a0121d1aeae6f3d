package workspace

import (
	"fmt"
)

// State is the configuration state of a workspace session.
type State int

const (
	Unconfigured State = iota
	SlotsCreated
	ManifestAppliedBestEffort
	DependenciesResolved
	ManifestAppliedAuthoritative
	StagesLinked
	Ready
	Failed
)

var stateNames = map[State]string{
	Unconfigured:                 "Unconfigured",
	SlotsCreated:                 "SlotsCreated",
	ManifestAppliedBestEffort:    "ManifestAppliedBestEffort",
	DependenciesResolved:         "DependenciesResolved",
	ManifestAppliedAuthoritative: "ManifestAppliedAuthoritative",
	StagesLinked:                 "StagesLinked",
	Ready:                        "Ready",
	Failed:                       "Failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InvalidStateError is reported for an operation called
// in the wrong session state.
type InvalidStateError struct {
	Operation string
	State     State
	Expected  State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s requires state %s, but session is %s", e.Operation, e.Expected, e.State)
}

// UndeclaredProducerError is reported if a stage consumes
// the output of another stage, which is not one of its
// transitive predecessors.
type UndeclaredProducerError struct {
	Task     string
	Role     string
	Path     string
	Producer string
}

func (e *UndeclaredProducerError) Error() string {
	return fmt.Sprintf("task %q uses %s (%s) produced by %q, which is no predecessor", e.Task, e.Role, e.Path, e.Producer)
}
