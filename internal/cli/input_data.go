package cli

import (
	"encoding/json"
	"errors"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/inputdata"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var inputDataColumns = []string{
	"project_id",
	"input_data_id",
	"input_data_name",
	"input_data_path",
	"sign_required",
	"updated_datetime",
}

func newInputDataCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("input_data", "Input data operations",
		newInputDataListCmd(ctx),
		newInputDataUpdateCmd(ctx),
		newInputDataDeleteMetadataKeyCmd(ctx),
		newInputDataCopyCmd(ctx),
	)
}

func inputDataService(ctx *Context, parallelism int) inputdata.Service {
	return inputdata.Service{
		NewAPI:      func() inputdata.API { return workerClient(ctx) },
		Confirm:     ctx.Confirm,
		Parallelism: parallelism,
	}
}

func newInputDataListCmd(ctx *Context) *cobra.Command {
	var (
		projectID    string
		inputDataIDs []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List input data",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&inputDataIDs, "input_data_id", "i", nil, "input data ids (space separated or file://path)")
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON, output.FormatInputDataIDList)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id"); err != nil {
			return err
		}
		ids, err := listFromArgs(inputDataIDs)
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
		var list []api.InputData
		if len(ids) == 0 {
			list, err = ctx.Client.ListInputData(cmd.Context(), projectID, nil)
			if err != nil {
				return err
			}
		} else {
			list = make([]api.InputData, 0, len(ids))
			for _, id := range ids {
				d, _, err := ctx.Client.GetInputData(cmd.Context(), projectID, id)
				if err != nil {
					if errors.Is(err, api.ErrNotFound) {
						log.Warn().Str("input_data_id", id).Msg("input data not found; skipped")
						continue
					}
					return err
				}
				list = append(list, d)
			}
		}
		return printRecords(ctx, resolved, list, inputDataColumns, map[output.Format]func(api.InputData) string{
			output.FormatInputDataIDList: func(d api.InputData) string { return d.InputDataID },
		})
	}
	return cmd
}

func newInputDataUpdateCmd(ctx *Context) *cobra.Command {
	var (
		projectID    string
		jsonArg      string
		inputDataIDs []string
		metadataArg  string
		overwrite    bool
		parallelism  int
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update input data name, path or metadata",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVar(&jsonArg, "json", "", `{"input_data_id": {"input_data_name": "...", "metadata": {...}}} or file://path`)
	cmd.Flags().StringArrayVarP(&inputDataIDs, "input_data_id", "i", nil, "input data ids to receive --metadata")
	cmd.Flags().StringVar(&metadataArg, "metadata", "", "metadata JSON object applied to every --input_data_id")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace metadata instead of merging keys")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of input data processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id"); err != nil {
			return err
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		items, err := updateItemsFromArgs(cmd, jsonArg, inputDataIDs, metadataArg)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOnly); err != nil {
			return err
		}
		inputDataService(ctx, parallelism).Update(cmd.Context(), projectID, items, overwrite)
		return nil
	}
	return cmd
}

// updateItemsFromArgs accepts either --json or --input_data_id with
// --metadata, never both.
func updateItemsFromArgs(cmd *cobra.Command, jsonArg string, inputDataIDs []string, metadataArg string) ([]inputdata.UpdateItem, error) {
	hasJSON := cmd.Flags().Changed("json")
	hasIDs := cmd.Flags().Changed("input_data_id") || cmd.Flags().Changed("metadata")
	switch {
	case hasJSON && hasIDs:
		return nil, usageErrorf("--json cannot be combined with --input_data_id/--metadata")
	case hasJSON:
		raw, err := jsonFromArgs(jsonArg)
		if err != nil {
			return nil, err
		}
		items, err := inputdata.ParseUpdatePlan(raw)
		if err != nil {
			return nil, usageError(err)
		}
		return items, nil
	case cmd.Flags().Changed("input_data_id") && cmd.Flags().Changed("metadata"):
		ids, err := listFromArgs(inputDataIDs)
		if err != nil {
			return nil, err
		}
		raw, err := jsonFromArgs(metadataArg)
		if err != nil {
			return nil, err
		}
		var metadata map[string]string
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, usageErrorf("--metadata must be a JSON object of strings: %v", err)
		}
		return inputdata.MetadataItems(ids, metadata), nil
	default:
		return nil, usageErrorf("either --json or both --input_data_id and --metadata are required")
	}
}

func newInputDataDeleteMetadataKeyCmd(ctx *Context) *cobra.Command {
	var (
		projectID    string
		inputDataIDs []string
		keys         []string
		parallelism  int
	)
	cmd := &cobra.Command{
		Use:   "delete_metadata_key",
		Short: "Remove metadata keys from input data",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringArrayVarP(&inputDataIDs, "input_data_id", "i", nil, "input data ids (space separated or file://path)")
	cmd.Flags().StringArrayVar(&keys, "metadata_key", nil, "metadata keys to delete")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of input data processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "input_data_id", "metadata_key"); err != nil {
			return err
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		ids, err := listFromArgs(inputDataIDs)
		if err != nil {
			return err
		}
		keyList, err := listFromArgs(keys)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOnly); err != nil {
			return err
		}
		inputDataService(ctx, parallelism).DeleteMetadataKeys(cmd.Context(), projectID, ids, keyList)
		return nil
	}
	return cmd
}

func newInputDataCopyCmd(ctx *Context) *cobra.Command {
	var (
		srcProjectID  string
		destProjectID string
		inputDataIDs  []string
		parallelism   int
	)
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy input data to another project",
		Args:  noArgs,
	}
	cmd.Flags().StringVar(&srcProjectID, "src_project_id", "", "source project id")
	cmd.Flags().StringVar(&destProjectID, "dest_project_id", "", "destination project id")
	cmd.Flags().StringArrayVarP(&inputDataIDs, "input_data_id", "i", nil, "input data ids (space separated or file://path)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "number of input data processed at once (requires --yes; defaults to the configured parallelism)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "src_project_id", "dest_project_id", "input_data_id"); err != nil {
			return err
		}
		if srcProjectID == destProjectID {
			return usageErrorf("--src_project_id and --dest_project_id must differ")
		}
		if err := resolveParallelism(cmd, ctx, &parallelism); err != nil {
			return err
		}
		ids, err := listFromArgs(inputDataIDs)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, srcProjectID, anyProjectMember); err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, destProjectID, ownerOnly); err != nil {
			return err
		}
		inputDataService(ctx, parallelism).Copy(cmd.Context(), srcProjectID, destProjectID, ids)
		return nil
	}
	return cmd
}
