// Package listing turns page-oriented server listings into lazy sequences.
//
// A Collection is built from the first page a command returned. Its length and
// page count are fixed from that response; any other page is requested with
// the same command and parameters, only the page number changed, the first
// time it is needed and never again.
//
// # Access patterns
//
//   - At(ctx, n): random access; fetches only the page holding item n.
//   - Page(ctx, p): one page, or every page with All (expensive).
//   - Each(ctx, pages...): range-over-func iteration that fetches page by page.
//
// # Usage
//
//	results, err := listing.NewProducts(registry, client, resp)
//	for p, err := range results.Each(ctx) {
//	    if err != nil { return err }
//	    fmt.Println(p.ID())
//	}
package listing
