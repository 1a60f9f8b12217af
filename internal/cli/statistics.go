package cli

import (
	"github.com/agisilaos/annofab-cli/internal/annotation"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/spf13/cobra"
)

func newStatisticsCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("statistics", "Statistics derived from annotations",
		newListAnnotationCountCmd(ctx),
	)
}

func newListAnnotationCountCmd(ctx *Context) *cobra.Command {
	var (
		src     annotationSource
		groupBy string
	)
	cmd := &cobra.Command{
		Use:   "list_annotation_count",
		Short: "Count annotations per label",
		Args:  noArgs,
	}
	src.addFlags(cmd)
	cmd.Flags().StringVar(&groupBy, "group_by", string(annotation.GroupByInputData), "input_data_id or task_id")
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		g := annotation.GroupBy(groupBy)
		if g != annotation.GroupByInputData && g != annotation.GroupByTask {
			return usageErrorf("--group_by must be input_data_id or task_id, got %q", groupBy)
		}
		resolved, err := out.resolve(ctx)
		if err != nil {
			return err
		}
		var records []annotation.LabelCountRecord
		err = src.read(cmd, ctx, func(path string, f annotation.Filter) error {
			var err error
			records, err = annotation.CountLabels(path, f, g)
			return err
		})
		if err != nil {
			return err
		}
		return printRecords(ctx, resolved, records, annotation.LabelCountColumns(g), nil)
	}
	return cmd
}
