package cli

import (
	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/jobs"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var jobColumns = []string{
	"project_id",
	"job_type",
	"job_id",
	"job_status",
	"created_datetime",
	"updated_datetime",
}

func newJobCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("job", "Server-side job operations",
		newJobListCmd(ctx),
		newJobWaitCmd(ctx),
	)
}

func newJobListCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		jobType   string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs of a project",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVar(&jobType, "job_type", "", "job type, e.g. gen-annotation")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of jobs (0 means server default)")
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id"); err != nil {
			return err
		}
		if limit < 0 {
			return usageErrorf("--limit must not be negative")
		}
		resolved, err := out.resolve(ctx)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, anyProjectMember); err != nil {
			return err
		}
		list, _, err := ctx.Client.ListJobs(cmd.Context(), projectID, jobType, limit)
		if err != nil {
			return err
		}
		return printRecords[api.Job](ctx, resolved, list, jobColumns, nil)
	}
	return cmd
}

func newJobWaitCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		jobType   string
	)
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the latest job of a type finishes",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVar(&jobType, "job_type", "", "job type, e.g. gen-annotation")
	wait := addWaitFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "job_type"); err != nil {
			return err
		}
		opts, err := wait.options(ctx)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, anyProjectMember); err != nil {
			return err
		}
		outcome, job, err := jobs.NewWaiter(ctx.Client).Wait(cmd.Context(), projectID, jobType, opts)
		if err != nil {
			return err
		}
		log.Info().Str("outcome", string(outcome)).Str("job_id", job.JobID).Msg("job wait finished")
		return nil
	}
	return cmd
}
