package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/inspections"
	"github.com/agisilaos/annofab-cli/internal/confirm"
	"github.com/agisilaos/annofab-cli/internal/workerpool"
	"github.com/rs/zerolog/log"
)

type CompleteInput struct {
	ProjectID        string
	TaskIDs          []string
	Phase            api.TaskPhase
	PhaseStage       *int
	ReplyComment     string
	InspectionStatus api.InspectionStatus
}

// ValidationError is returned for input combinations that can never be
// processed; the CLI maps it to a usage error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func ValidateCompleteInput(in CompleteInput) error {
	switch in.Phase {
	case api.TaskPhaseAnnotation:
		if in.InspectionStatus != "" {
			return &ValidationError{Msg: "--inspection_status can only be used with --phase inspection or acceptance"}
		}
	case api.TaskPhaseInspection, api.TaskPhaseAcceptance:
		if in.ReplyComment != "" {
			return &ValidationError{Msg: "--reply_comment can only be used with --phase annotation"}
		}
		switch in.InspectionStatus {
		case "", api.InspectionStatusErrorCorrected, api.InspectionStatusNoCorrectionRequired:
		default:
			return &ValidationError{Msg: fmt.Sprintf("invalid --inspection_status %q", in.InspectionStatus)}
		}
	default:
		return &ValidationError{Msg: fmt.Sprintf("invalid --phase %q", in.Phase)}
	}
	if in.PhaseStage != nil && *in.PhaseStage < 1 {
		return &ValidationError{Msg: "--phase_stage must be >= 1"}
	}
	return nil
}

// Completer walks each task's open inspection comments and completes the task
// when none block it.
type Completer struct {
	Operator
	Confirm *confirm.Policy
	Now     func() time.Time
}

func NewCompleter(client API, accountID string, policy *confirm.Policy) *Completer {
	return &Completer{
		Operator: Operator{API: client, AccountID: accountID},
		Confirm:  policy,
		Now:      time.Now,
	}
}

// Run processes the tasks in order. Per-task failures are logged and counted;
// only a confirmation that cannot be asked aborts the run.
func (c *Completer) Run(ctx context.Context, in CompleteInput) (workerpool.Summary, error) {
	var fatal error
	results := workerpool.Run(ctx, in.TaskIDs, 1, func(ctx context.Context, taskID string) (bool, error) {
		if fatal != nil {
			return false, nil
		}
		done, err := c.CompleteTask(ctx, in, taskID)
		if err != nil {
			if errors.Is(err, confirm.ErrNotInteractive) {
				fatal = err
				return false, nil
			}
			log.Warn().Err(err).Str("task_id", taskID).Msg("failed to complete task")
		}
		return done, err
	})
	summary := workerpool.Summarize(results)
	workerpool.LogSummary("task complete", summary)
	return summary, fatal
}

// CompleteTask reports whether the task was completed. A skipped task returns
// false with a nil error.
func (c *Completer) CompleteTask(ctx context.Context, in CompleteInput, taskID string) (bool, error) {
	task, _, err := c.API.GetTask(ctx, in.ProjectID, taskID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			log.Warn().Str("task_id", taskID).Msg("task not found; skipped")
			return false, nil
		}
		return false, err
	}
	if !c.targeted(task, in) {
		return false, nil
	}
	switch task.Phase {
	case api.TaskPhaseAnnotation:
		return c.completeForAnnotationPhase(ctx, task, in.ReplyComment)
	case api.TaskPhaseInspection, api.TaskPhaseAcceptance:
		return c.completeForInspectionOrAcceptancePhase(ctx, task, in.InspectionStatus)
	default:
		return false, fmt.Errorf("task %s: unexpected phase %q", task.TaskID, task.Phase)
	}
}

func (c *Completer) targeted(task api.Task, in CompleteInput) bool {
	l := log.With().Str("task_id", task.TaskID).Logger()
	if task.Status == api.TaskStatusComplete {
		l.Info().Msg("task is already complete; skipped")
		return false
	}
	if task.Phase != in.Phase {
		l.Info().Str("phase", string(task.Phase)).Msgf("task is not in phase %s; skipped", in.Phase)
		return false
	}
	if in.PhaseStage != nil && task.PhaseStage != *in.PhaseStage {
		l.Info().Int("phase_stage", task.PhaseStage).Msgf("task is not in phase_stage %d; skipped", *in.PhaseStage)
		return false
	}
	return true
}

// blocking collects, per input data, the comments that prevent completion.
func (c *Completer) blocking(ctx context.Context, task api.Task, pick func([]api.Inspection) []api.Inspection) (map[string][]api.Inspection, int, error) {
	out := map[string][]api.Inspection{}
	total := 0
	for _, inputDataID := range task.InputDataIDList {
		comments, _, err := c.API.GetInspections(ctx, task.ProjectID, task.TaskID, inputDataID)
		if err != nil {
			return nil, 0, fmt.Errorf("get inspections of %s: %w", inputDataID, err)
		}
		if picked := pick(comments); len(picked) > 0 {
			out[inputDataID] = picked
			total += len(picked)
		}
	}
	return out, total, nil
}

func (c *Completer) completeForAnnotationPhase(ctx context.Context, task api.Task, replyComment string) (bool, error) {
	unanswered, total, err := c.blocking(ctx, task, func(comments []api.Inspection) []api.Inspection {
		return inspections.UnansweredRoots(comments, task.StartedDatetime)
	})
	if err != nil {
		return false, err
	}
	if total > 0 && replyComment == "" {
		log.Info().Str("task_id", task.TaskID).Int("unanswered", total).Msg("task has unanswered inspection comments; pass --reply_comment to reply and complete")
		return false, nil
	}
	msg := fmt.Sprintf("complete task %s?", task.TaskID)
	if total > 0 {
		msg = fmt.Sprintf("reply %q to %d comment(s) and complete task %s?", replyComment, total, task.TaskID)
	}
	return c.apply(ctx, task, msg, unanswered, func(working api.Task, comments []api.Inspection) []api.Inspection {
		now := c.Now()
		replies := make([]api.Inspection, 0, len(comments))
		for _, root := range comments {
			replies = append(replies, inspections.NewReply(root, working, c.AccountID, replyComment, now))
		}
		return replies
	})
}

func (c *Completer) completeForInspectionOrAcceptancePhase(ctx context.Context, task api.Task, status api.InspectionStatus) (bool, error) {
	unprocessed, total, err := c.blocking(ctx, task, func(comments []api.Inspection) []api.Inspection {
		return inspections.Unprocessed(comments, task.Phase, task.PhaseStage)
	})
	if err != nil {
		return false, err
	}
	if total > 0 && status == "" {
		log.Info().Str("task_id", task.TaskID).Int("unprocessed", total).Msg("task has unprocessed inspection comments; pass --inspection_status to resolve and complete")
		return false, nil
	}
	msg := fmt.Sprintf("complete task %s?", task.TaskID)
	if total > 0 {
		msg = fmt.Sprintf("set %d comment(s) to %s and complete task %s?", total, status, task.TaskID)
	}
	return c.apply(ctx, task, msg, unprocessed, func(_ api.Task, comments []api.Inspection) []api.Inspection {
		return inspections.WithStatus(comments, status)
	})
}

// apply confirms, takes the task, writes one batch per input data and
// completes. On failure after the task was taken it is put on break.
func (c *Completer) apply(ctx context.Context, task api.Task, msg string, byInput map[string][]api.Inspection, build func(api.Task, []api.Inspection) []api.Inspection) (bool, error) {
	ok, err := c.Confirm.Confirm(msg)
	if err != nil || !ok {
		return false, err
	}
	working, err := c.ChangeToWorking(ctx, task)
	if err != nil {
		return false, fmt.Errorf("change to working: %w", err)
	}
	fail := func(err error) (bool, error) {
		if berr := c.BreakIfWorking(ctx, task.ProjectID, task.TaskID); berr != nil {
			log.Warn().Err(berr).Str("task_id", task.TaskID).Msg("failed to put task on break")
		}
		return false, err
	}
	for _, inputDataID := range task.InputDataIDList {
		comments, ok := byInput[inputDataID]
		if !ok {
			continue
		}
		reqs := inspections.PutRequests(build(working, comments))
		if _, err := c.API.BatchUpdateInspections(ctx, task.ProjectID, task.TaskID, inputDataID, reqs); err != nil {
			return fail(fmt.Errorf("update inspections of %s: %w", inputDataID, err))
		}
	}
	latest, _, err := c.API.GetTask(ctx, task.ProjectID, task.TaskID)
	if err != nil {
		return fail(fmt.Errorf("get task: %w", err))
	}
	if _, err := c.Complete(ctx, latest); err != nil {
		return fail(fmt.Errorf("complete: %w", err))
	}
	log.Info().Str("task_id", task.TaskID).Msg("task completed")
	return true, nil
}
