// Package pagination fetches every page of a paged IdleMMO endpoint.
//
// List endpoints (item search, character museum) return a "pagination" block
// with current_page and last_page. The batch fetcher reads page 1 to learn
// last_page, then hands the remaining pages to a small worker pool. Each
// worker enqueues its page on the request coordinator, so pages are still
// executed one at a time and rate limit windows are honoured; the pool only
// keeps the coordinator's queue fed.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(svc.ItemSearchPages("ore", model.ItemTypeOre), pagination.DefaultConfig())
//	pages, err := fetcher.FetchAllPages(ctx)
//	items := pagination.Ordered(pages)
//
// The batch fetcher:
//   - Fetches the first page to determine last_page
//   - Spawns a worker pool (default 4 workers)
//   - Distributes remaining pages across workers
//   - Collects results with progress logging
//   - Returns partial data alongside the first error
package pagination
