package taskgraph

import (
	"fmt"
)

type DuplicateTaskError struct {
	Task string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q already exists", e.Task)
}

// UnknownTaskError is reported for references to undeclared tasks.
// Dependent is empty for a directly requested task.
type UnknownTaskError struct {
	Task      string
	Dependent string
}

func (e *UnknownTaskError) Error() string {
	if e.Dependent == "" {
		return fmt.Sprintf("unknown task %q", e.Task)
	}
	return fmt.Sprintf("task %q depends on unknown task %q", e.Dependent, e.Task)
}

type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %s", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
