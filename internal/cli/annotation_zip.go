package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agisilaos/annofab-cli/internal/annotation"
	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/app/jobs"
	"github.com/agisilaos/annofab-cli/internal/config"
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAnnotationZipCmd(ctx *Context) *cobra.Command {
	return newGroupCmd("annotation_zip", "Simple annotation archive operations",
		newAnnotationZipDownloadCmd(ctx),
		newAnnotationZipUpdateCmd(ctx),
		newAnnotationListCmd(ctx, "list_bounding_box", "List bounding boxes", annotation.BoundingBoxColumns, annotation.ListBoundingBoxes),
		newAnnotationListCmd(ctx, "list_polygon", "List polygons", annotation.PolygonColumns, annotation.ListPolygons),
		newAnnotationListCmd(ctx, "list_polyline", "List polylines", annotation.PolylineColumns, annotation.ListPolylines),
		newAnnotationListCmd(ctx, "list_single_point", "List single points", annotation.SinglePointColumns, annotation.ListSinglePoints),
		newAnnotationListCmd(ctx, "list_range", "List ranges of video or audio annotations", annotation.RangeColumns, annotation.ListRanges),
		newAnnotationListCmd(ctx, "list_3d_bounding_box", "List 3D bounding boxes", annotation.CuboidColumns, annotation.ListCuboids),
	)
}

type waitFlags struct {
	interval int
	maxTries int
}

func addWaitFlags(cmd *cobra.Command) *waitFlags {
	w := &waitFlags{}
	cmd.Flags().IntVar(&w.interval, "wait_interval", 0, "seconds between job status checks (default from config, 60)")
	cmd.Flags().IntVar(&w.maxTries, "wait_max_tries", 0, "maximum job status checks (default from config, 360)")
	return w
}

func (w *waitFlags) options(ctx *Context) (jobs.WaitOptions, error) {
	interval, maxTries := w.interval, w.maxTries
	if interval == 0 {
		interval = ctx.Config.WaitIntervalSeconds
	}
	if maxTries == 0 {
		maxTries = ctx.Config.WaitMaxTries
	}
	if interval < 0 || maxTries < 0 {
		return jobs.WaitOptions{}, usageErrorf("--wait_interval and --wait_max_tries must not be negative")
	}
	return jobs.WaitOptions{Interval: time.Duration(interval) * time.Second, MaxTries: maxTries}, nil
}

// regenerateArchive requests a new archive and waits for the gen-annotation
// job. It reports whether the archive is known to be fresh.
func regenerateArchive(c context.Context, ctx *Context, projectID string, opts jobs.WaitOptions) (bool, error) {
	job, _, err := ctx.Client.UpdateAnnotationArchive(c, projectID)
	if err != nil {
		return false, err
	}
	log.Info().Str("project_id", projectID).Str("job_id", job.JobID).Msg("annotation archive update requested")
	outcome, _, err := jobs.NewWaiter(ctx.Client).Wait(c, projectID, api.JobTypeGenAnnotation, opts)
	if err != nil {
		return false, err
	}
	if outcome == jobs.OutcomeFailed {
		return false, fmt.Errorf("annotation archive update failed for project %s", projectID)
	}
	return outcome == jobs.OutcomeSucceeded, nil
}

func newAnnotationZipDownloadCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		outPath   string
		latest    bool
	)
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the simple annotation zip",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "destination zip file")
	cmd.Flags().BoolVar(&latest, "latest", false, "regenerate the archive and wait before downloading")
	wait := addWaitFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id", "output"); err != nil {
			return err
		}
		opts, err := wait.options(ctx)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, archiveReaders); err != nil {
			return err
		}
		if latest {
			fresh, err := regenerateArchive(cmd.Context(), ctx, projectID, opts)
			if err != nil {
				return err
			}
			if !fresh {
				log.Warn().Str("project_id", projectID).Msg("archive update did not finish; downloading the previous archive")
			}
		}
		return downloadArchive(cmd.Context(), ctx, projectID, outPath)
	}
	return cmd
}

func downloadArchive(c context.Context, ctx *Context, projectID, path string) error {
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, _, err := ctx.Client.DownloadAnnotationArchive(c, projectID, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	log.Info().Str("project_id", projectID).Str("path", path).Int64("bytes", n).Msg("downloaded annotation archive")
	return nil
}

func newAnnotationZipUpdateCmd(ctx *Context) *cobra.Command {
	var (
		projectID string
		waitDone  bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Regenerate the simple annotation zip",
		Args:  noArgs,
	}
	cmd.Flags().StringVarP(&projectID, "project_id", "p", "", "project id")
	cmd.Flags().BoolVar(&waitDone, "wait", false, "wait until the regeneration job finishes")
	wait := addWaitFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := requireFlags(cmd, "project_id"); err != nil {
			return err
		}
		opts, err := wait.options(ctx)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(cmd.Context(), ctx, projectID, ownerOnly); err != nil {
			return err
		}
		if !waitDone {
			job, _, err := ctx.Client.UpdateAnnotationArchive(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			log.Info().Str("project_id", projectID).Str("job_id", job.JobID).Msg("annotation archive update requested")
			return nil
		}
		_, err = regenerateArchive(cmd.Context(), ctx, projectID, opts)
		return err
	}
	return cmd
}

// newAnnotationListCmd builds one list_* extractor command. Records come from
// --annotation (zip or directory) or, with --project_id, from a freshly
// downloaded archive.
func newAnnotationListCmd[R any](ctx *Context, use, short string, columns []string, list func(string, annotation.Filter) ([]R, error)) *cobra.Command {
	var src annotationSource
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  noArgs,
	}
	src.addFlags(cmd)
	out := addOutputFlags(cmd, output.FormatCSV, output.FormatCSV, output.FormatJSON, output.FormatPrettyJSON)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		resolved, err := out.resolve(ctx)
		if err != nil {
			return err
		}
		var records []R
		err = src.read(cmd, ctx, func(path string, f annotation.Filter) error {
			var err error
			records, err = list(path, f)
			return err
		})
		if err != nil {
			return err
		}
		return printRecords(ctx, resolved, records, columns, nil)
	}
	return cmd
}

type annotationSource struct {
	annotationPath string
	projectID      string
	taskIDs        []string
	taskQuery      string
	labelNames     []string
}

func (s *annotationSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.annotationPath, "annotation", "", "simple annotation zip or directory")
	cmd.Flags().StringVarP(&s.projectID, "project_id", "p", "", "download the project's archive instead of --annotation")
	cmd.Flags().StringArrayVarP(&s.taskIDs, "task_id", "t", nil, "task ids (space separated or file://path)")
	cmd.Flags().StringVar(&s.taskQuery, "task_query", "", `task filter JSON, e.g. {"status": "complete", "phase": "acceptance"}`)
	cmd.Flags().StringArrayVar(&s.labelNames, "label_name", nil, "label names to include")
}

// read resolves the annotation path and filter, then calls fn.
func (s *annotationSource) read(cmd *cobra.Command, ctx *Context, fn func(string, annotation.Filter) error) error {
	hasPath, hasProject := cmd.Flags().Changed("annotation"), cmd.Flags().Changed("project_id")
	if hasPath == hasProject {
		return usageErrorf("exactly one of --annotation or --project_id is required")
	}
	taskIDs, err := listFromArgs(s.taskIDs)
	if err != nil {
		return err
	}
	labels, err := listFromArgs(s.labelNames)
	if err != nil {
		return err
	}
	query, err := taskQueryFromArgs(s.taskQuery)
	if err != nil {
		return err
	}
	filter := annotation.NewFilter(taskIDs, labels, query)
	if hasPath {
		return asUsage(fn(s.annotationPath, filter))
	}

	if _, err := requireProjectRole(cmd.Context(), ctx, s.projectID, archiveReaders); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp("", "annofabcli-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	zipPath := filepath.Join(tmp, s.projectID+".zip")
	if err := downloadArchive(cmd.Context(), ctx, s.projectID, zipPath); err != nil {
		return err
	}
	return fn(zipPath, filter)
}

// asUsage turns an unreadable --annotation path into a usage error.
func asUsage(err error) error {
	var pathErr *annotation.PathError
	if errors.As(err, &pathErr) {
		return usageError(err)
	}
	return err
}
