// Package workerpool runs one function per work item, sequentially or over a
// bounded number of goroutines.
package workerpool

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one item. Done is false both when fn declined to
// act (skip) and when it failed; Err tells them apart.
type Result[T any] struct {
	Item T
	Done bool
	Err  error
}

// Run calls fn for every item. With parallelism <= 1 items run in order on the
// calling goroutine. Otherwise at most parallelism items run at once and the
// completion order is unspecified; results are still indexed like items. A
// failing item never stops the others.
func Run[T any](ctx context.Context, items []T, parallelism int, fn func(context.Context, T) (bool, error)) []Result[T] {
	results := make([]Result[T], len(items))
	if parallelism <= 1 {
		for i, item := range items {
			done, err := fn(ctx, item)
			results[i] = Result[T]{Item: item, Done: done, Err: err}
		}
		return results
	}
	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, item := range items {
		g.Go(func() error {
			done, err := fn(ctx, item)
			results[i] = Result[T]{Item: item, Done: done, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Total     int
}

func Summarize[T any](results []Result[T]) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Done:
			s.Succeeded++
		default:
			s.Skipped++
		}
	}
	return s
}

// LogSummary writes the "succeeded/total" line every bulk command ends with.
func LogSummary(action string, s Summary) {
	log.Info().
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Int("skipped", s.Skipped).
		Int("total", s.Total).
		Msgf("%s done: %d/%d succeeded", action, s.Succeeded, s.Total)
}
