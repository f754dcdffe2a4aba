package orchestrator

import "fmt"

// UnreachableTargetError fails the run before any remote call when the
// target does not answer the pre-flight check.
type UnreachableTargetError struct {
	TargetURL string
}

func (e *UnreachableTargetError) Error() string {
	return fmt.Sprintf("The URL %v is not available", e.TargetURL)
}

// ScanExecutionError marks a scanner run that exited without producing the
// report file.
type ScanExecutionError struct {
	ScanMode string
}

func (e *ScanExecutionError) Error() string {
	return fmt.Sprintf("An Unexpected error has occurred running the %v scan", e.ScanMode)
}
