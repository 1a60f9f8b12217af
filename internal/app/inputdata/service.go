package inputdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/confirm"
	"github.com/agisilaos/annofab-cli/internal/workerpool"
	"github.com/rs/zerolog/log"
)

type API interface {
	GetInputData(ctx context.Context, projectID, inputDataID string) (api.InputData, string, error)
	PutInputData(ctx context.Context, projectID, inputDataID string, body map[string]any) (api.InputData, string, error)
}

// Service runs input data mutations item by item. NewAPI is called once per
// item so parallel workers never share a client.
type Service struct {
	NewAPI      func() API
	Confirm     *confirm.Policy
	Parallelism int
}

func (s Service) each(ctx context.Context, action string, ids []string, fn func(context.Context, API, string) (bool, error)) workerpool.Summary {
	results := workerpool.Run(ctx, ids, s.Parallelism, func(ctx context.Context, id string) (bool, error) {
		done, err := fn(ctx, s.NewAPI(), id)
		if err != nil {
			log.Warn().Err(err).Str("input_data_id", id).Msgf("%s failed", action)
		}
		return done, err
	})
	summary := workerpool.Summarize(results)
	workerpool.LogSummary(action, summary)
	return summary
}

// getExisting returns ok=false for an input data that does not exist.
func getExisting(ctx context.Context, client API, projectID, id string) (api.InputData, bool, error) {
	current, _, err := client.GetInputData(ctx, projectID, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			log.Warn().Str("project_id", projectID).Str("input_data_id", id).Msg("input data not found; skipped")
			return api.InputData{}, false, nil
		}
		return api.InputData{}, false, err
	}
	return current, true, nil
}

func (s Service) Update(ctx context.Context, projectID string, items []UpdateItem, overwriteMetadata bool) workerpool.Summary {
	changes := make(map[string]Change, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		changes[it.InputDataID] = it.Change
		ids = append(ids, it.InputDataID)
	}
	return s.each(ctx, "input_data update", ids, func(ctx context.Context, client API, id string) (bool, error) {
		current, ok, err := getExisting(ctx, client, projectID, id)
		if err != nil || !ok {
			return false, err
		}
		if ok, err := s.Confirm.Confirm(fmt.Sprintf("update input data %s?", id)); err != nil || !ok {
			return false, err
		}
		_, _, err = client.PutInputData(ctx, projectID, id, BuildUpdateBody(current, changes[id], overwriteMetadata))
		return err == nil, err
	})
}

func (s Service) DeleteMetadataKeys(ctx context.Context, projectID string, ids, keys []string) workerpool.Summary {
	return s.each(ctx, "input_data delete_metadata_key", ids, func(ctx context.Context, client API, id string) (bool, error) {
		current, ok, err := getExisting(ctx, client, projectID, id)
		if err != nil || !ok {
			return false, err
		}
		body, removed := BuildDeleteMetadataKeyBody(current, keys)
		if len(removed) == 0 {
			log.Debug().Str("input_data_id", id).Msg("no metadata key to delete")
			return false, nil
		}
		if ok, err := s.Confirm.Confirm(fmt.Sprintf("delete metadata keys %v of input data %s?", removed, id)); err != nil || !ok {
			return false, err
		}
		_, _, err = client.PutInputData(ctx, projectID, id, body)
		return err == nil, err
	})
}

// Copy recreates each input data of srcProjectID in destProjectID. Ids that
// already exist in the destination are skipped.
func (s Service) Copy(ctx context.Context, srcProjectID, destProjectID string, ids []string) workerpool.Summary {
	return s.each(ctx, "input_data copy", ids, func(ctx context.Context, client API, id string) (bool, error) {
		src, ok, err := getExisting(ctx, client, srcProjectID, id)
		if err != nil || !ok {
			return false, err
		}
		_, _, err = client.GetInputData(ctx, destProjectID, id)
		switch {
		case err == nil:
			log.Info().Str("input_data_id", id).Msg("input data already exists in destination project; skipped")
			return false, nil
		case !errors.Is(err, api.ErrNotFound):
			return false, err
		}
		if ok, err := s.Confirm.Confirm(fmt.Sprintf("copy input data %s to project %s?", id, destProjectID)); err != nil || !ok {
			return false, err
		}
		_, _, err = client.PutInputData(ctx, destProjectID, id, BuildCopyBody(src))
		return err == nil, err
	})
}
