package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd(ctx *Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "annofabcli",
		Short:         "Command-line client for AnnoFab",
		Version:       fmt.Sprintf("%s (%s) %s", Version, Commit, Date),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(ctx)
		},
		RunE: groupRunE,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.BoolVar(&ctx.Global.Yes, "yes", false, "answer yes to every confirmation prompt")
	pf.StringVar(&ctx.Global.EndpointURL, "endpoint_url", "", "AnnoFab endpoint URL (default https://annofab.com)")
	pf.StringVar(&ctx.Global.LogDir, "logdir", "", "directory for annofabcli.log (default .log)")
	pf.BoolVar(&ctx.Global.DisableLog, "disable_log", false, "do not write a log file")
	pf.BoolVar(&ctx.Global.Debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newTaskCmd(ctx),
		newInspectionCommentCmd(ctx),
		newInputDataCmd(ctx),
		newAnnotationZipCmd(ctx),
		newJobCmd(ctx),
		newStatisticsCmd(ctx),
	)
	return root
}

// newGroupCmd builds a resource command whose only job is to hold verbs.
func newGroupCmd(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE:  groupRunE,
	}
	cmd.AddCommand(children...)
	return cmd
}

func groupRunE(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
}
