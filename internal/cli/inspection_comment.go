package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/inspections"
	"github.com/agisilaos/annofab-cli/internal/app/tasks"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/agisilaos/annofab-cli/internal/workerpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var inspectionColumns = []string{
	"project_id",
	"task_id",
	"input_data_id",
	"inspection_id",
	"phase",
	"phase_stage",
	"commenter_account_id",
	"annotation_id",
	"label_id",
	"parent_inspection_id",
	"phrases",
	"comment",
	"status",
	"created_datetime",
	"updated_datetime",
}

func newInspectionCommentCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("inspection_comment", "Inspection comment operations",
		newInspectionCommentListCmd(ctx),
		newInspectionCommentPutCmd(ctx),
		newInspectionCommentDeleteCmd(ctx),
	)
}

func newInspectionCommentListCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		taskIDs   []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspection comments of tasks",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&taskIDs, "task_id", "t", nil, "task ids (space separated or file://path)")
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON, output.FormatInspectionIDList)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "task_id"); err != nil {
			return err
		}
		ids, err := listFromArgs(taskIDs)
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
		all := []api.Inspection{}
		for _, taskID := range ids {
			task, _, err := ctx.Client.GetTask(cmd.Context(), projectID, taskID)
			if err != nil {
				if errors.Is(err, api.ErrNotFound) {
					log.Warn().Str("task_id", taskID).Msg("task not found; skipped")
					continue
				}
				return err
			}
			for _, inputDataID := range task.InputDataIDList {
				comments, _, err := ctx.Client.GetInspections(cmd.Context(), projectID, taskID, inputDataID)
				if err != nil {
					return fmt.Errorf("task %s input data %s: %w", taskID, inputDataID, err)
				}
				all = append(all, comments...)
			}
		}
		return printRecords(ctx, resolved, all, inspectionColumns, map[output.Format]func(api.Inspection) string{
			output.FormatInspectionIDList: func(c api.Inspection) string { return c.InspectionID },
		})
	}
	return cmd
}

// commentBatch writes the batch requests of one task while the caller holds
// it: the task is taken as working and put on break afterwards, also when a
// batch fails.
func commentBatch[T any](c context.Context, client *api.Client, accountID string, task api.Task, plan inspections.TaskPlan[T], build func(api.Task, inspections.InputDataPlan[T]) []api.BatchInspectionRequest) error {
	op := tasks.Operator{API: client, AccountID: accountID}
	working, err := op.ChangeToWorking(c, task)
	if err != nil {
		return fmt.Errorf("change to working: %w", err)
	}
	var batchErr error
	for _, ip := range plan.InputData {
		if _, err := client.BatchUpdateInspections(c, task.ProjectID, task.TaskID, ip.InputDataID, build(working, ip)); err != nil {
			batchErr = fmt.Errorf("input data %s: %w", ip.InputDataID, err)
			break
		}
	}
	if err := op.BreakIfWorking(c, task.ProjectID, task.TaskID); err != nil {
		log.Warn().Err(err).Str("task_id", task.TaskID).Msg("failed to put task on break")
	}
	return batchErr
}

func runCommentPlan[T any](c context.Context, ctx *Context, projectID, accountID, action string, plan []inspections.TaskPlan[T], parallelism int, build func(api.Task, inspections.InputDataPlan[T]) []api.BatchInspectionRequest) workerpool.Summary {
	results := workerpool.Run(c, plan, parallelism, func(c context.Context, tp inspections.TaskPlan[T]) (bool, error) {
		client := workerClient(ctx)
		task, _, err := client.GetTask(c, projectID, tp.TaskID)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				log.Warn().Str("task_id", tp.TaskID).Msg("task not found; skipped")
				return false, nil
			}
			return false, err
		}
		count := 0
		for _, ip := range tp.InputData {
			count += len(ip.Items)
		}
		ok, err := ctx.Confirm.Confirm(fmt.Sprintf("%s %d inspection comment(s) of task %s?", action, count, tp.TaskID))
		if err != nil || !ok {
			return false, err
		}
		if err := commentBatch(c, client, accountID, task, tp, build); err != nil {
			log.Warn().Err(err).Str("task_id", tp.TaskID).Msgf("failed to %s inspection comments", action)
			return false, err
		}
		log.Info().Str("task_id", tp.TaskID).Int("comments", count).Msgf("inspection comments %s done", action)
		return true, nil
	})
	summary := workerpool.Summarize(results)
	workerpool.LogSummary("inspection_comment "+action, summary)
	return summary
}

func newInspectionCommentPutCmd(ctx *Context) *cobra.Command {
	var (
		projectID   string
		jsonArg     string
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Add inspection comments",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVar(&jsonArg, "json", "", `{"task_id": {"input_data_id": [{"comment": "...", "data": {...}}]}} or file://path`)
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of tasks processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "json"); err != nil {
			return err
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		raw, err := jsonFromArgs(jsonArg)
		if err != nil {
			return err
		}
		plan, err := inspections.ParsePutPlan(raw)
		if err != nil {
			return usageError(err)
		}
		member, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOrAccepter)
		if err != nil {
			return err
		}
		now := ctx.Now()
		runCommentPlan(cmd.Context(), ctx, projectID, member.AccountID, "put", plan, parallelism,
			func(task api.Task, ip inspections.InputDataPlan[inspections.CommentSpec]) []api.BatchInspectionRequest {
				comments := make([]api.Inspection, 0, len(ip.Items))
				for _, spec := range ip.Items {
					comments = append(comments, inspections.NewRoot(spec, task, ip.InputDataID, member.AccountID, now))
				}
				return inspections.PutRequests(comments)
			})
		return nil
	}
	return cmd
}

func newInspectionCommentDeleteCmd(ctx *Context) *cobra.Command {
	var (
		projectID   string
		jsonArg     string
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete inspection comments",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVar(&jsonArg, "json", "", `{"task_id": {"input_data_id": ["inspection_id", ...]}} or file://path`)
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of tasks processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "json"); err != nil {
			return err
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		raw, err := jsonFromArgs(jsonArg)
		if err != nil {
			return err
		}
		plan, err := inspections.ParseDeletePlan(raw)
		if err != nil {
			return usageError(err)
		}
		member, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOrAccepter)
		if err != nil {
			return err
		}
		runCommentPlan(cmd.Context(), ctx, projectID, member.AccountID, "delete", plan, parallelism,
			func(task api.Task, ip inspections.InputDataPlan[string]) []api.BatchInspectionRequest {
				return inspections.DeleteRequests(task.ProjectID, task.TaskID, ip.InputDataID, ip.Items)
			})
		return nil
	}
	return cmd
}
