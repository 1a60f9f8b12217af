// Package inputdata builds the put_input_data bodies behind the input_data
// update, delete_metadata_key and copy commands, and runs them per id.
package inputdata

import (
	"encoding/json"
	"fmt"

	"github.com/agisilaos/annofab-cli/internal/api"
	"github.com/agisilaos/annofab-cli/internal/jsonobject"
)

// Change describes the fields to replace on one input data. Nil fields are
// left as they are.
type Change struct {
	InputDataName *string           `json:"input_data_name,omitempty"`
	InputDataPath *string           `json:"input_data_path,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type UpdateItem struct {
	InputDataID string
	Change      Change
}

// ParseUpdatePlan decodes {input_data_id: {input_data_name, input_data_path,
// metadata}} keeping the written order.
func ParseUpdatePlan(raw json.RawMessage) ([]UpdateItem, error) {
	members, err := jsonobject.Decode[Change](raw)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	out := make([]UpdateItem, 0, len(members))
	for _, m := range members {
		out = append(out, UpdateItem{InputDataID: m.Key, Change: m.Value})
	}
	return out, nil
}

// MetadataItems applies the same metadata to every id.
func MetadataItems(ids []string, metadata map[string]string) []UpdateItem {
	out := make([]UpdateItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, UpdateItem{InputDataID: id, Change: Change{Metadata: metadata}})
	}
	return out
}

func baseBody(current api.InputData) map[string]any {
	metadata := map[string]string{}
	for k, v := range current.Metadata {
		metadata[k] = v
	}
	return map[string]any{
		"input_data_name":       current.InputDataName,
		"input_data_path":       current.InputDataPath,
		"sign_required":         current.SignRequired,
		"metadata":              metadata,
		"last_updated_datetime": current.UpdatedDatetime,
	}
}

// BuildUpdateBody merges ch into current. With overwriteMetadata the metadata
// is replaced; otherwise the given keys are added to or replace existing ones.
func BuildUpdateBody(current api.InputData, ch Change, overwriteMetadata bool) map[string]any {
	body := baseBody(current)
	if ch.InputDataName != nil {
		body["input_data_name"] = *ch.InputDataName
	}
	if ch.InputDataPath != nil {
		body["input_data_path"] = *ch.InputDataPath
	}
	if ch.Metadata != nil {
		metadata := body["metadata"].(map[string]string)
		if overwriteMetadata {
			metadata = map[string]string{}
		}
		for k, v := range ch.Metadata {
			metadata[k] = v
		}
		body["metadata"] = metadata
	}
	return body
}

// BuildDeleteMetadataKeyBody removes keys from current's metadata and returns
// the keys that were actually present. No call is needed when none were.
func BuildDeleteMetadataKeyBody(current api.InputData, keys []string) (map[string]any, []string) {
	body := baseBody(current)
	metadata := body["metadata"].(map[string]string)
	var removed []string
	for _, k := range keys {
		if _, ok := metadata[k]; ok {
			delete(metadata, k)
			removed = append(removed, k)
		}
	}
	return body, removed
}

// BuildCopyBody creates src in another project under the same id.
func BuildCopyBody(src api.InputData) map[string]any {
	body := baseBody(src)
	delete(body, "last_updated_datetime")
	return body
}
