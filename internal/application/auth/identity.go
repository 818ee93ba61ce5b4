// Package auth transporta la identidad del usuario autenticado dentro del context.
// La emisión de tokens y el login viven fuera de este servicio.
package auth

import "context"

// Roles reconocidos en los tokens.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operador"
)

// Actor usuario que ejecuta la petición.
type Actor struct {
	ID   string
	Role string
}

type actorKey struct{}

// WithActor devuelve un context que transporta el actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext devuelve el actor si fue establecido por el middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.ID == "" {
		return Actor{}, false
	}
	return a, true
}
