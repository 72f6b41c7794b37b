package render

// Sentinel errors for renderer failures. Callers distinguish them with
// errors.Is; user-facing messages come from the wrapping ClassifiedError.

import "errors"

var (
	// ErrRendererNotFound indicates the renderer executable could not be started.
	ErrRendererNotFound = errors.New("renderer binary not found")
	// ErrRenderFailed indicates the renderer returned a non-zero exit status.
	ErrRenderFailed = errors.New("renderer exited with non-zero status")
	// ErrArtifactMissing indicates the renderer exited cleanly but the expected image is absent.
	ErrArtifactMissing = errors.New("expected image was not produced")
)
