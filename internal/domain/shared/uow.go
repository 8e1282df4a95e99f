package shared

import "context"

// UnitOfWork runs a function inside a single transaction scope. Every
// repository call made with the context passed to fn joins that scope,
// so a service operation either commits all of its writes or none of
// them. Nested Execute calls join the enclosing scope instead of
// opening a new one.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
