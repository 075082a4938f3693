// Package api is the transport layer for the remote grocery service.
//
// Every server operation is a single GET command carrying the developer and
// application keys, an optional session key, and command-specific parameters.
// Replies are JSON objects with a StatusCode field (0 = success,
// 200 = not authenticated, anything else an unclassified server error).
//
// # Requester
//
// The catalogue, listing and basket packages only depend on the Requester
// interface, so they can be driven by mocks.Requester in tests:
//
//	type Requester interface {
//	    Request(ctx context.Context, command string, params Params) (*Response, error)
//	}
//
// Every Response carries the command and parameters that produced it, which
// is what lets a paginated listing re-request any page with identical filters.
//
// # Sessions
//
// Client performs an anonymous login on the first request if no session
// exists. Customer fields (id, name, forename, branch) are only available after
// a non-anonymous Login; in anonymous mode they fail with ErrNotAuthenticated.
//
// # Usage
//
//	client, err := api.NewClient(cfg.API, api.WithLogger(log))
//	if err := client.Login(ctx, "a@b.com", "pw"); err != nil { ... }
//	resp, err := client.Request(ctx, "productsearch", api.Params{"searchtext": "milk"})
package api
