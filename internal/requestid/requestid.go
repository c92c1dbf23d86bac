// Package requestid carries a correlation id through a context so the
// list controller, the BFF handlers and the backend client log and
// forward the same value.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type key struct{}

// With tags ctx with a correlation id that the data-access client
// forwards to the backend.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

func From(ctx context.Context) string {
	id, _ := ctx.Value(key{}).(string)
	return id
}

func New() string {
	return uuid.NewString()
}

// Ensure returns ctx unchanged when it already carries an id, otherwise
// ctx tagged with a fresh one.
func Ensure(ctx context.Context) context.Context {
	if From(ctx) != "" {
		return ctx
	}
	return With(ctx, New())
}
