// Package annotation reads AnnoFab simple-annotation exports and derives
// per-shape geometry records from them.
package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SimpleAnnotation is the JSON document stored for one input data in the
// simple-annotation export (task_id/input_data_id.json).
type SimpleAnnotation struct {
	ProjectID       string   `json:"project_id"`
	TaskID          string   `json:"task_id"`
	TaskStatus      string   `json:"task_status"`
	TaskPhase       string   `json:"task_phase"`
	TaskPhaseStage  int      `json:"task_phase_stage"`
	InputDataID     string   `json:"input_data_id"`
	InputDataName   string   `json:"input_data_name"`
	UpdatedDatetime *string  `json:"updated_datetime"`
	Details         []Detail `json:"details"`
}

type Detail struct {
	Label        string         `json:"label"`
	AnnotationID string         `json:"annotation_id"`
	Data         Data           `json:"-"`
	Attributes   map[string]any `json:"attributes"`
}

type DataType string

const (
	TypeBoundingBox    DataType = "BoundingBox"
	TypePoints         DataType = "Points"
	TypeSinglePoint    DataType = "SinglePoint"
	TypeRange          DataType = "Range"
	TypeSegmentation   DataType = "Segmentation"
	TypeSegmentationV2 DataType = "SegmentationV2"
	TypeClassification DataType = "Classification"
	TypeUnknown        DataType = "Unknown"
)

// AllDataTypes lists every variant of Data.
var AllDataTypes = []DataType{
	TypeBoundingBox,
	TypePoints,
	TypeSinglePoint,
	TypeRange,
	TypeSegmentation,
	TypeSegmentationV2,
	TypeClassification,
	TypeUnknown,
}

var ErrUnknownDataType = errors.New("unknown annotation data _type")

// Data is the closed set of annotation payloads, discriminated by `_type`.
// Only types in this package implement it. Type switches over Data list every
// variant and panic in default.
//
//go-sumtype:decl Data
type Data interface {
	Type() DataType
	sealed()
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BoundingBox struct {
	LeftTop     Point `json:"left_top"`
	RightBottom Point `json:"right_bottom"`
}

// Points is used for both polygons and polylines; the label definition decides
// which one it is.
type Points struct {
	Points []Point `json:"points"`
}

type SinglePoint struct {
	Point Point `json:"point"`
}

// Range is a time span in milliseconds.
type Range struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

type Segmentation struct {
	DataURI string `json:"data_uri"`
}

type SegmentationV2 struct {
	DataURI string `json:"data_uri"`
}

type Classification struct{}

// Custom carries an editor-specific payload as an opaque string. 3D cuboids
// are stored this way.
type Custom struct {
	Data string `json:"data"`
}

func (BoundingBox) Type() DataType    { return TypeBoundingBox }
func (Points) Type() DataType         { return TypePoints }
func (SinglePoint) Type() DataType    { return TypeSinglePoint }
func (Range) Type() DataType          { return TypeRange }
func (Segmentation) Type() DataType   { return TypeSegmentation }
func (SegmentationV2) Type() DataType { return TypeSegmentationV2 }
func (Classification) Type() DataType { return TypeClassification }
func (Custom) Type() DataType         { return TypeUnknown }

func (BoundingBox) sealed()    {}
func (Points) sealed()         {}
func (SinglePoint) sealed()    {}
func (Range) sealed()          {}
func (Segmentation) sealed()   {}
func (SegmentationV2) sealed() {}
func (Classification) sealed() {}
func (Custom) sealed()         {}

type rawDetail struct {
	Label        string          `json:"label"`
	AnnotationID string          `json:"annotation_id"`
	Data         json.RawMessage `json:"data"`
	Attributes   map[string]any  `json:"attributes"`
}

func (d *Detail) UnmarshalJSON(b []byte) error {
	var raw rawDetail
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := DecodeData(raw.Data)
	if err != nil {
		return fmt.Errorf("annotation %s: %w", raw.AnnotationID, err)
	}
	d.Label = raw.Label
	d.AnnotationID = raw.AnnotationID
	d.Data = data
	d.Attributes = raw.Attributes
	return nil
}

// DecodeData selects the Data variant named by `_type`. A missing payload is
// a classification.
func DecodeData(b []byte) (Data, error) {
	if len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return Classification{}, nil
	}
	var tag struct {
		Type DataType `json:"_type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	var (
		data Data
		err  error
	)
	switch tag.Type {
	case TypeBoundingBox:
		data, err = decodeAs[BoundingBox](b)
	case TypePoints:
		data, err = decodeAs[Points](b)
	case TypeSinglePoint:
		data, err = decodeAs[SinglePoint](b)
	case TypeRange:
		data, err = decodeAs[Range](b)
	case TypeSegmentation:
		data, err = decodeAs[Segmentation](b)
	case TypeSegmentationV2:
		data, err = decodeAs[SegmentationV2](b)
	case TypeClassification:
		data = Classification{}
	case TypeUnknown:
		data, err = decodeAs[Custom](b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataType, tag.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", tag.Type, err)
	}
	return data, nil
}

func decodeAs[T Data](b []byte) (Data, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
