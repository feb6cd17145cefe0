package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// BatchResult is the outcome for one file of a directory run. Per-file
// failures are collected here rather than aborting the batch: one bad
// file never blocks the rest.
type BatchResult struct {
	Path   string
	Report *FileReport
	Err    error
}

// ReduceDir reduces every .py file under root with a fixed-size worker
// pool. Files are independent and share nothing but the immutable
// options, so the fan-out needs no coordination beyond the job channel.
// Results come back sorted by path.
func (e *Engine) ReduceDir(ctx context.Context, root string, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".py") && !strings.HasSuffix(path, ".reduced.py") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	jobs := make(chan string)
	results := make([]BatchResult, 0, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				report, rerr := e.ReduceFile(path, "", "", e.DB != nil)
				mu.Lock()
				results = append(results, BatchResult{Path: path, Report: report, Err: rerr})
				mu.Unlock()
			}
		}()
	}

	for _, p := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}
