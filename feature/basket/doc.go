// Package basket keeps a local view of a customer's remote shopping basket.
//
// The server owns the truth. Sync fetches the whole basket and rebuilds the
// local lines from it, returning a reconcile plan that says which lines were
// added, removed or changed since the previous view. Between syncs the
// mutating calls send quantity deltas rather than absolute values:
//
//	SetQuantity(p, 3)   // sends +3
//	SetQuantity(p, 1)   // sends -2
//
// The local quantity only moves after the server accepted the delta, so a
// failed request leaves the view where the server last agreed.
//
// # Ownership
//
// A Basket remembers the customer it was created for. Every mutating call and
// every Sync first asks the session for its customer id and fails with
// api.ErrNotAuthenticated when it differs, before any request is sent.
//
// # Registry
//
// Registry.ForCustomer hands out one Basket per customer id and syncs it on
// first use. Flush forgets all baskets locally without touching the server.
//
// # Concurrency
//
// Each Basket holds its own lock for the full request-then-update sequence of
// a call, so two SetQuantity calls on the same product can never compute their
// deltas from the same stale quantity. The registry lock only guards the map.
package basket
