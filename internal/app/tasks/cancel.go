package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/confirm"
	"github.com/agisilaos/annofab-cli/internal/workerpool"
	"github.com/rs/zerolog/log"
)

type CancelAcceptanceInput struct {
	ProjectID string
	TaskIDs   []string
	// AcceptorAccountID becomes the task's operator; empty leaves it unassigned.
	AcceptorAccountID string
	Parallelism       int
}

// AcceptanceCanceler sends completed acceptance-phase tasks back to
// not_started. NewAPI is called once per task so parallel workers never share
// a client.
type AcceptanceCanceler struct {
	NewAPI  func() API
	Confirm *confirm.Policy
}

func (c AcceptanceCanceler) Run(ctx context.Context, in CancelAcceptanceInput) workerpool.Summary {
	results := workerpool.Run(ctx, in.TaskIDs, in.Parallelism, func(ctx context.Context, taskID string) (bool, error) {
		done, err := c.CancelTask(ctx, c.NewAPI(), in.ProjectID, taskID, in.AcceptorAccountID)
		if err != nil {
			log.Warn().Err(err).Str("task_id", taskID).Msg("failed to cancel acceptance")
		}
		return done, err
	})
	summary := workerpool.Summarize(results)
	workerpool.LogSummary("task cancel_acceptance", summary)
	return summary
}

func (c AcceptanceCanceler) CancelTask(ctx context.Context, client API, projectID, taskID, acceptorAccountID string) (bool, error) {
	task, _, err := client.GetTask(ctx, projectID, taskID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			log.Warn().Str("task_id", taskID).Msg("task not found; skipped")
			return false, nil
		}
		return false, err
	}
	if task.Phase != api.TaskPhaseAcceptance || task.Status != api.TaskStatusComplete {
		log.Info().Str("task_id", taskID).Str("phase", string(task.Phase)).Str("status", string(task.Status)).
			Msg("task is not a completed acceptance task; skipped")
		return false, nil
	}
	ok, err := c.Confirm.Confirm(fmt.Sprintf("cancel acceptance of task %s?", taskID))
	if err != nil || !ok {
		return false, err
	}
	op := Operator{API: client, AccountID: acceptorAccountID}
	if _, err := op.operate(ctx, task, api.TaskStatusNotStarted, acceptorAccountID); err != nil {
		return false, err
	}
	log.Info().Str("task_id", taskID).Msg("acceptance cancelled")
	return true, nil
}
