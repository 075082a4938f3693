// Package export uploads JSON snapshots of product listings and baskets to
// S3-compatible object storage.
//
// An export walks every page of a listing through its iterator, so a long
// search costs one request per page. The document is only uploaded once all
// pages arrived; a failed page leaves nothing behind. Objects are named
// <prefix>/<name>-<unix seconds>.json and the bucket is created on first use.
//
// Exports are write-only: nothing in grocer reads them back. List exists so
// operators can see what has been produced.
//
// # HTTP API
//
//	GET  /exports                      stored exports, newest first
//	POST /exports/search?q=milk&name=  export every page of a search
//	POST /exports/basket               export the customer's basket
package export
