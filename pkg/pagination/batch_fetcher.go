package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the number of pages waiting in the coordinator queue at once
	MaxConcurrency int
	// Timeout per page fetch, including time spent queued and rate limited
	Timeout time.Duration
	// MaxPages stops the fetch after this many pages (0 = all)
	MaxPages int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        2 * time.Minute,
	}
}

// PageFetcher fetches a single page and reports its pagination block
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) (T, model.Paged, error)
}

// PageFunc adapts a function to PageFetcher
type PageFunc[T any] func(ctx context.Context, page int) (T, model.Paged, error)

// FetchPage calls f.
func (f PageFunc[T]) FetchPage(ctx context.Context, page int) (T, model.Paged, error) {
	return f(ctx, page)
}

// PageResult represents the result of fetching a single page
type PageResult[T any] struct {
	PageNumber int
	Data       T
	Error      error
}

// BatchFetcher handles fetching of every page of an endpoint
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAllPages fetches all pages using a worker pool.
// Returns map of pageNumber -> data for successful pages; on failure the
// pages fetched so far are returned together with the first error.
func (bf *BatchFetcher[T]) FetchAllPages(ctx context.Context) (map[int]T, error) {
	start := time.Now()

	firstCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	first, paged, err := bf.fetcher.FetchPage(firstCtx, 1)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := paged.LastPage
	if totalPages < 1 {
		totalPages = 1
	}
	if bf.config.MaxPages > 0 && totalPages > bf.config.MaxPages {
		totalPages = bf.config.MaxPages
	}

	results := map[int]T{1: first}

	if totalPages == 1 {
		log.Debug().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return results, nil
	}

	log.Info().
		Int("total_pages", totalPages).
		Int("workers", bf.config.MaxConcurrency).
		Msg("Starting page fetch")

	pageQueue := make(chan int, totalPages)
	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	pageResults := make(chan PageResult[T], totalPages)
	errs := make(chan error, bf.config.MaxConcurrency)

	workerCtx, stop := context.WithCancel(ctx)
	defer stop()

	fail := func(err error) {
		select {
		case errs <- err:
		default:
		}
		stop()
	}

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(workerCtx, pageQueue, pageResults, fail, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
		close(errs)
	}()

	fetchedPages := 1
	for result := range pageResults {
		results[result.PageNumber] = result.Data
		fetchedPages++

		if fetchedPages%25 == 0 {
			log.Info().
				Int("fetched", fetchedPages).
				Int("total", totalPages).
				Float64("progress_pct", float64(fetchedPages)/float64(totalPages)*100).
				Msg("Fetch progress")
		}
	}

	if err := <-errs; err != nil {
		log.Warn().
			Err(err).
			Int("fetched_pages", fetchedPages).
			Int("total_pages", totalPages).
			Msg("Page fetch failed - returning partial results")
		return results, fmt.Errorf("partial data (%d/%d pages): %w", fetchedPages, totalPages, err)
	}

	log.Info().
		Int("pages", fetchedPages).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

// worker processes pages from the queue. The first failure cancels the
// remaining workers.
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult[T], fail func(error), wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for pageNum := range pageQueue {
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		data, _, err := bf.fetcher.FetchPage(pageCtx, pageNum)
		cancel()

		if err != nil {
			log.Debug().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageNum).
				Msg("Page fetch failed")

			fail(fmt.Errorf("page %d: %w", pageNum, err))
			return
		}

		results <- PageResult[T]{PageNumber: pageNum, Data: data}
	}
}

// Ordered returns page data sorted by page number.
func Ordered[T any](pages map[int]T) []T {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]T, 0, len(nums))
	for _, n := range nums {
		out = append(out, pages[n])
	}
	return out
}
