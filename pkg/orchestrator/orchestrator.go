//go:generate mockgen -package mocks -destination=./mocks/orchestrator.go . Downloader

// Package orchestrator fans a list of URIs out over per-worker download
// coordinators. URIs are partitioned by their mapped local path, so two URIs
// resolving to the same file always land on the same worker and no per-path
// locking is needed.
package orchestrator

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/glorpus-work/siphon/pkg/pathmap"
)

// Downloader is the subset of the download coordinator used by the orchestrator.
type Downloader interface {
	DownloadOne(ctx context.Context, uri string) (string, error)
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // downloading|done|error
	URI   string
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Orchestrator drives one Downloader per worker. Each Downloader is only ever
// used from a single goroutine, matching the coordinator's single-threaded
// contract.
type Orchestrator struct {
	Workers []Downloader
	Mapper  *pathmap.Mapper
	Hooks   Hooks
}

// New creates an Orchestrator over the given per-worker downloaders.
func New(mapper *pathmap.Mapper, workers []Downloader, hooks Hooks) *Orchestrator {
	return &Orchestrator{Workers: workers, Mapper: mapper, Hooks: hooks}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// FetchAll downloads all URIs and returns a map from URI to local path. A
// failing URI does not stop the others; the first error encountered is
// returned alongside the successful results.
func (o *Orchestrator) FetchAll(ctx context.Context, uris []string) (map[string]string, error) {
	if len(o.Workers) == 0 {
		return nil, fmt.Errorf("no download workers configured")
	}

	buckets := make([][]string, len(o.Workers))
	var firstErr error
	for _, uri := range uris {
		path, err := o.Mapper.Map(uri)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			emit(o.Hooks, Event{Phase: "error", URI: uri, Msg: err.Error()})
			continue
		}
		idx := partitionIndex(path, len(o.Workers))
		buckets[idx] = append(buckets[idx], uri)
	}

	results := make(map[string]string, len(uris))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		wg.Add(1)
		go func(dl Downloader, bucket []string) {
			defer wg.Done()
			for _, uri := range bucket {
				emit(o.Hooks, Event{Phase: "downloading", URI: uri})
				path, err := dl.DownloadOne(ctx, uri)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					emit(o.Hooks, Event{Phase: "error", URI: uri, Msg: err.Error()})
					continue
				}
				results[uri] = path
				mu.Unlock()
				emit(o.Hooks, Event{Phase: "done", URI: uri, Msg: path})
			}
		}(o.Workers[i], bucket)
	}
	wg.Wait()

	return results, firstErr
}

// partitionIndex assigns a mapped path to one of n workers.
func partitionIndex(path string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32() % uint32(n))
}
