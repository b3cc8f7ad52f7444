// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// SystemActor is the actor recorded when no collaborator is authenticated
// (scheduled jobs, CLI tools).
const SystemActor = "SYSTEM"

// Actor identifies the collaborator performing the current request.
type Actor struct {
	ID       string
	Username string
	Role     string
}

type actorContextKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns Actor from context.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// ActorID returns the acting collaborator's ID, or SystemActor when absent.
func ActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil && a.ID != "" {
		return a.ID
	}
	return SystemActor
}
