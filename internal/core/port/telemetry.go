package port

import (
	"context"
	"time"
)

// Span is the minimal tracing surface the core needs.
type Span interface {
	End()
	SetAttributes(attrs map[string]interface{})
	SetStatus(code string, message string)
	RecordError(err error)
}

// Telemetry lets the core and adapters emit telemetry without knowing the
// implementation.
type Telemetry interface {
	// Tracing
	StartStoreSpan(ctx context.Context, store string, operation string, attrs map[string]interface{}) (context.Context, Span)
	StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, Span)

	// State containers
	RecordStoreOperation(ctx context.Context, store string, operation string, duration time.Duration, err error)
	RecordCollectionSize(ctx context.Context, size int)

	// Remote calls
	RecordRemoteCall(ctx context.Context, service string, method string, path string, statusCode int, duration time.Duration, err error)
	RecordThrottled(ctx context.Context, path string)

	// Repository operations
	RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error)

	// Errors
	RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{})
}
