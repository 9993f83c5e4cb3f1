// CLAUDE:SUMMARY Transport-agnostic endpoint type plus middleware chaining.
// Package kit carries the small transport plumbing shared by the HTTP front
// door and the MCP tool surface: a common endpoint shape, middleware
// composition, and request-scoped context accessors.
package kit

import "context"

// Endpoint is the transport-agnostic unit of work: decoded request in,
// encodable response out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares. The first argument is outermost: it sees the
// request first and the response last.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
