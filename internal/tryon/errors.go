package tryon

import (
	"errors"
	"fmt"
)

var (
	// ErrImageDecode marks a malformed inline image payload.
	ErrImageDecode = errors.New("image payload malformed")
	// ErrImageFetch marks a failed remote image download.
	ErrImageFetch = errors.New("image fetch failed")
	// ErrImageMissing marks a local image reference that resolved to nothing.
	ErrImageMissing = errors.New("image not found")
	// ErrPollTimeout marks an exhausted polling budget for a remote task.
	ErrPollTimeout = errors.New("task polling timed out")
)

// SubmitError reports an upstream rejection of a try-on submission.
type SubmitError struct {
	Status int
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("try-on submit rejected: http %d", e.Status)
}

// TaskFailedError reports a remote task that reached the failed state.
type TaskFailedError struct {
	Reason string
}

func (e *TaskFailedError) Error() string {
	return "try-on task failed: " + e.Reason
}
