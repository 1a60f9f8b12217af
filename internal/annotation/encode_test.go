package annotation

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the form UnmarshalJSON reads, for test fixtures.
func (d Detail) MarshalJSON() ([]byte, error) {
	data, err := encodeData(d.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawDetail{
		Label:        d.Label,
		AnnotationID: d.AnnotationID,
		Data:         data,
		Attributes:   d.Attributes,
	})
}

// encodeData is the inverse of DecodeData.
func encodeData(d Data) (json.RawMessage, error) {
	if d == nil {
		return json.RawMessage("null"), nil
	}
	fields := map[string]any{"_type": d.Type()}
	switch v := d.(type) {
	case BoundingBox:
		fields["left_top"] = v.LeftTop
		fields["right_bottom"] = v.RightBottom
	case Points:
		fields["points"] = v.Points
	case SinglePoint:
		fields["point"] = v.Point
	case Range:
		fields["begin"] = v.Begin
		fields["end"] = v.End
	case Segmentation:
		fields["data_uri"] = v.DataURI
	case SegmentationV2:
		fields["data_uri"] = v.DataURI
	case Classification:
	case Custom:
		fields["data"] = v.Data
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownDataType, d)
	}
	return json.Marshal(fields)
}
