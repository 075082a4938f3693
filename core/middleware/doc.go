// Package middleware groups the Fiber middleware of the HTTP API.
//
// # Components
//
//   - auth: rejects requests without the configured X-API-Key. An empty key
//     turns the check off, which suits local use.
//   - rayid: tags each request with an X-Ray-ID (kept from the caller or a
//     fresh UUID) and stores it in the ray_id local for logger.WithRayID.
//
// RayID is registered first so the request log and auth failures carry it.
package middleware
