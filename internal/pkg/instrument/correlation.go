package instrument

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// SetCorrelationID stores id on ctx. An empty id yields a freshly generated one.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID, or "" when absent.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
