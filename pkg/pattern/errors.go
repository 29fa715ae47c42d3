package pattern

import "fmt"

// CompileError reports a pattern that could not be compiled.
type CompileError struct {
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("could not compile pattern %q: %v", e.Source, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a failure of the regex engine itself while matching.
// It is distinct from a pattern simply not matching.
type ExecutionError struct {
	Source string
	Offset int
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("matching %q at offset %d: %v", e.Source, e.Offset, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
