// Package jobs polls AnnoFab server-side jobs until they finish.
package jobs

import (
	"context"
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/rs/zerolog/log"
)

type Lister interface {
	ListJobs(ctx context.Context, projectID, jobType string, limit int) ([]api.Job, string, error)
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeNotFound  Outcome = "not_found"
)

type WaitOptions struct {
	Interval time.Duration
	MaxTries int
}

// Waiter polls the latest job of a type. Sleep is replaceable for tests.
type Waiter struct {
	API   Lister
	Sleep func(context.Context, time.Duration) error
}

func NewWaiter(client Lister) Waiter {
	return Waiter{API: client, Sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wait polls up to opts.MaxTries times. Running out of tries is reported as
// OutcomeTimedOut with a nil error; only API failures are errors.
func (w Waiter) Wait(ctx context.Context, projectID, jobType string, opts WaitOptions) (Outcome, api.Job, error) {
	tries := opts.MaxTries
	if tries < 1 {
		tries = 1
	}
	l := log.With().Str("project_id", projectID).Str("job_type", jobType).Logger()
	for i := 0; i < tries; i++ {
		if i > 0 {
			if err := w.Sleep(ctx, opts.Interval); err != nil {
				return "", api.Job{}, err
			}
		}
		jobs, _, err := w.API.ListJobs(ctx, projectID, jobType, 1)
		if err != nil {
			return "", api.Job{}, err
		}
		if len(jobs) == 0 {
			l.Info().Msg("no job found")
			return OutcomeNotFound, api.Job{}, nil
		}
		job := jobs[0]
		switch job.JobStatus {
		case api.JobStatusSucceeded:
			l.Info().Str("job_id", job.JobID).Msg("job succeeded")
			return OutcomeSucceeded, job, nil
		case api.JobStatusFailed:
			l.Warn().Str("job_id", job.JobID).Msg("job failed")
			return OutcomeFailed, job, nil
		default:
			l.Debug().Str("job_id", job.JobID).Int("try", i+1).Msg("job in progress")
		}
	}
	l.Warn().Int("max_tries", tries).Dur("interval", opts.Interval).Msg("job did not finish in time")
	return OutcomeTimedOut, api.Job{}, nil
}
