package cli

import (
	"context"
	"errors"

	"github.com/agisilaos/annofab-cli/internal/annotation"
	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/tasks"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var taskColumns = []string{
	"project_id",
	"task_id",
	"phase",
	"phase_stage",
	"status",
	"account_id",
	"input_data_id_list",
	"started_datetime",
	"updated_datetime",
	"work_time_span",
}

func newTaskCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("task", "Task operations",
		newTaskListCmd(ctx),
		newTaskCompleteCmd(ctx),
		newTaskCancelAcceptanceCmd(ctx),
	)
}

func newTaskListCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		taskIDs   []string
		taskQuery string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&taskIDs, "task_id", "t", nil, "task ids (space separated or file://path)")
	cmd.Flags().StringVar(&taskQuery, "task_query", "", `task filter as JSON, e.g. {"status": "complete", "phase": "acceptance"}`)
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON, output.FormatTaskIDList)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id"); err != nil {
			return err
		}
		ids, err := listFromArgs(taskIDs)
		if err != nil {
			return err
		}
		query, err := taskQueryFromArgs(taskQuery)
		if err != nil {
			return err
		}
		resolved, err := out.resolve(ctx)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, anyProjectMember); err != nil {
			return err
		}
		list, err := listTasks(cmd.Context(), ctx.Client, projectID, ids, query)
		if err != nil {
			return err
		}
		log.Info().Int("tasks", len(list)).Msg("listed tasks")
		return printRecords(ctx, resolved, list, taskColumns, map[output.Format]func(api.Task) string{
			output.FormatTaskIDList: func(t api.Task) string { return t.TaskID },
		})
	}
	return cmd
}

// listTasks reads the given tasks one by one, or pages through the project
// when no id is given. Missing ids are logged and skipped.
func listTasks(c context.Context, client *api.Client, projectID string, taskIDs []string, query *annotation.TaskQuery) ([]api.Task, error) {
	if len(taskIDs) == 0 {
		all, err := client.ListTasks(c, projectID, tasks.ListQuery(query, ""))
		if err != nil {
			return nil, err
		}
		return tasks.FilterTasks(all, nil, query), nil
	}
	found := make([]api.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		task, _, err := client.GetTask(c, projectID, id)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				log.Warn().Str("task_id", id).Msg("task not found; skipped")
				continue
			}
			return nil, err
		}
		found = append(found, task)
	}
	return tasks.FilterTasks(found, nil, query), nil
}

func newTaskCompleteCmd(ctx *Context) *cobra.Command {
	var (
		projectID        string
		taskIDs          []string
		phase            string
		phaseStage       int
		replyComment     string
		inspectionStatus string
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete tasks, replying to or resolving their inspection comments",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&taskIDs, "task_id", "t", nil, "task ids (space separated or file://path)")
	cmd.Flags().StringVar(&phase, "phase", "", "annotation, inspection or acceptance")
	cmd.Flags().IntVar(&phaseStage, "phase_stage", 0, "only complete tasks in this phase stage")
	cmd.Flags().StringVar(&replyComment, "reply_comment", "", "reply to every unanswered comment (annotation phase)")
	cmd.Flags().StringVar(&inspectionStatus, "inspection_status", "", "error_corrected or no_correction_required (inspection/acceptance phase)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "task_id", "phase"); err != nil {
			return err
		}
		ids, err := listFromArgs(taskIDs)
		if err != nil {
			return err
		}
		in := tasks.CompleteInput{
			ProjectID:        projectID,
			TaskIDs:          ids,
			Phase:            api.TaskPhase(phase),
			ReplyComment:     replyComment,
			InspectionStatus: api.InspectionStatus(inspectionStatus),
		}
		if cmd.Flags().Changed("phase_stage") {
			in.PhaseStage = &phaseStage
		}
		if err := tasks.ValidateCompleteInput(in); err != nil {
			return usageError(err)
		}
		member, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOrAccepter)
		if err != nil {
			return err
		}
		completer := tasks.NewCompleter(ctx.Client, member.AccountID, ctx.Confirm)
		completer.Now = ctx.Now
		_, err = completer.Run(cmd.Context(), in)
		return err
	}
	return cmd
}

func newTaskCancelAcceptanceCmd(ctx *Context) *cobra.Command {
	var (
		projectID   string
		taskIDs     []string
		acceptor    string
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "cancel_acceptance",
		Short: "Send completed acceptance tasks back to not_started",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&taskIDs, "task_id", "t", nil, "task ids (space separated or file://path)")
	cmd.Flags().StringVar(&acceptor, "assigned_acceptor_user_id", "", "user id to assign as acceptor (default unassigned)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of tasks processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "task_id"); err != nil {
			return err
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		ids, err := listFromArgs(taskIDs)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOnly); err != nil {
			return err
		}
		acceptorAccountID := ""
		if acceptor != "" {
			m, _, err := ctx.Client.GetProjectMember(cmd.Context(), projectID, acceptor)
			if err != nil {
				if errors.Is(err, api.ErrNotFound) {
					return usageErrorf("user %s is not a member of project %s", acceptor, projectID)
				}
				return err
			}
			acceptorAccountID = m.AccountID
		}
		canceler := tasks.AcceptanceCanceler{
			NewAPI:  func() tasks.API { return workerClient(ctx) },
			Confirm: ctx.Confirm,
		}
		canceler.Run(cmd.Context(), tasks.CancelAcceptanceInput{
			ProjectID:         projectID,
			TaskIDs:           ids,
			AcceptorAccountID: acceptorAccountID,
			Parallelism:       parallelism,
		})
		return nil
	}
	return cmd
}
