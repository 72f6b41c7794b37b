// Package errors provides the classified error primitives used across plantdoc.
//
// A ClassifiedError carries a category (config, render, filesystem, ...), a
// severity and structured context next to the wrapped cause. Errors are built
// with the fluent ErrorBuilder:
//
//	err := errors.RenderError("plantuml exited with status 1").
//		WithContext("diagram", name).
//		WithCause(errRenderFailed).
//		Build()
//
// The CLI adapter maps categories to process exit codes for fatal,
// run-level failures (configuration problems). Per-diagram failures never
// reach the adapter; the generator logs and skips them.
package errors
