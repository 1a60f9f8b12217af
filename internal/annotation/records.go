package annotation

import "fmt"

// DetailContext identifies the annotation a derived record came from.
type DetailContext struct {
	ProjectID       string         `json:"project_id"`
	TaskID          string         `json:"task_id"`
	TaskStatus      string         `json:"task_status"`
	TaskPhase       string         `json:"task_phase"`
	TaskPhaseStage  int            `json:"task_phase_stage"`
	InputDataID     string         `json:"input_data_id"`
	InputDataName   string         `json:"input_data_name"`
	UpdatedDatetime *string        `json:"updated_datetime"`
	Label           string         `json:"label"`
	AnnotationID    string         `json:"annotation_id"`
	Attributes      map[string]any `json:"attributes"`
}

var contextColumns = []string{
	"project_id",
	"task_id",
	"task_status",
	"task_phase",
	"task_phase_stage",
	"input_data_id",
	"input_data_name",
	"updated_datetime",
	"label",
	"annotation_id",
}

func columns(extra ...string) []string {
	out := make([]string, 0, len(contextColumns)+len(extra))
	out = append(out, contextColumns...)
	return append(out, extra...)
}

func newDetailContext(a SimpleAnnotation, d Detail) DetailContext {
	attrs := d.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return DetailContext{
		ProjectID:       a.ProjectID,
		TaskID:          a.TaskID,
		TaskStatus:      a.TaskStatus,
		TaskPhase:       a.TaskPhase,
		TaskPhaseStage:  a.TaskPhaseStage,
		InputDataID:     a.InputDataID,
		InputDataName:   a.InputDataName,
		UpdatedDatetime: a.UpdatedDatetime,
		Label:           d.Label,
		AnnotationID:    d.AnnotationID,
		Attributes:      attrs,
	}
}

// extract applies derive to every label-matching detail of a, keeping order.
func extract[R any](a SimpleAnnotation, f Filter, derive func(DetailContext, Data) (R, bool)) []R {
	var out []R
	for _, d := range a.Details {
		if d.Data == nil || !f.MatchLabel(d.Label) {
			continue
		}
		if r, ok := derive(newDetailContext(a, d), d.Data); ok {
			out = append(out, r)
		}
	}
	return out
}

// listFrom reads annotationPath and concatenates the records of every input data.
func listFrom[R any](annotationPath string, f Filter, perAnnotation func(SimpleAnnotation, Filter) []R) ([]R, error) {
	out := []R{}
	err := Walk(annotationPath, f, func(a SimpleAnnotation) error {
		out = append(out, perAnnotation(a, f)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func unhandled(d Data) string {
	return fmt.Sprintf("unhandled annotation data %T", d)
}

func ptr[T any](v T) *T {
	return &v
}

type BoundingBoxRecord struct {
	DetailContext
	LeftTop     Point   `json:"left_top"`
	RightBottom Point   `json:"right_bottom"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Area        float64 `json:"area"`
	Center      Point   `json:"center"`
}

var BoundingBoxColumns = columns(
	"left_top.x", "left_top.y", "right_bottom.x", "right_bottom.y",
	"width", "height", "area", "center.x", "center.y",
)

func BoundingBoxRecords(a SimpleAnnotation, f Filter) []BoundingBoxRecord {
	return extract(a, f, func(c DetailContext, d Data) (BoundingBoxRecord, bool) {
		switch v := d.(type) {
		case BoundingBox:
			w := v.RightBottom.X - v.LeftTop.X
			h := v.RightBottom.Y - v.LeftTop.Y
			if w < 0 {
				w = -w
			}
			if h < 0 {
				h = -h
			}
			return BoundingBoxRecord{
				DetailContext: c,
				LeftTop:       v.LeftTop,
				RightBottom:   v.RightBottom,
				Width:         w,
				Height:        h,
				Area:          w * h,
				Center:        Point{X: (v.LeftTop.X + v.RightBottom.X) / 2, Y: (v.LeftTop.Y + v.RightBottom.Y) / 2},
			}, true
		case Points, SinglePoint, Range, Segmentation, SegmentationV2, Classification, Custom:
			return BoundingBoxRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListBoundingBoxes(annotationPath string, f Filter) ([]BoundingBoxRecord, error) {
	return listFrom(annotationPath, f, BoundingBoxRecords)
}

type PolygonRecord struct {
	DetailContext
	PointCount        int      `json:"point_count"`
	Area              *float64 `json:"area"`
	Centroid          *Point   `json:"centroid"`
	BoundingBoxWidth  *float64 `json:"bounding_box_width"`
	BoundingBoxHeight *float64 `json:"bounding_box_height"`
}

var PolygonColumns = columns(
	"point_count", "area", "centroid.x", "centroid.y",
	"bounding_box_width", "bounding_box_height",
)

func PolygonRecords(a SimpleAnnotation, f Filter) []PolygonRecord {
	return extract(a, f, func(c DetailContext, d Data) (PolygonRecord, bool) {
		switch v := d.(type) {
		case Points:
			r := PolygonRecord{DetailContext: c, PointCount: len(v.Points)}
			if area, ok := PolygonArea(v.Points); ok {
				r.Area = ptr(area)
				w, h, _ := Extent(v.Points)
				r.BoundingBoxWidth = ptr(w)
				r.BoundingBoxHeight = ptr(h)
			}
			if centroid, ok := PolygonCentroid(v.Points); ok {
				r.Centroid = &centroid
			}
			return r, true
		case BoundingBox, SinglePoint, Range, Segmentation, SegmentationV2, Classification, Custom:
			return PolygonRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListPolygons(annotationPath string, f Filter) ([]PolygonRecord, error) {
	return listFrom(annotationPath, f, PolygonRecords)
}

type PolylineRecord struct {
	DetailContext
	PointCount        int      `json:"point_count"`
	Length            *float64 `json:"length"`
	StartPoint        *Point   `json:"start_point"`
	EndPoint          *Point   `json:"end_point"`
	Midpoint          *Point   `json:"midpoint"`
	BoundingBoxWidth  *float64 `json:"bounding_box_width"`
	BoundingBoxHeight *float64 `json:"bounding_box_height"`
}

var PolylineColumns = columns(
	"point_count", "length",
	"start_point.x", "start_point.y", "end_point.x", "end_point.y",
	"midpoint.x", "midpoint.y",
	"bounding_box_width", "bounding_box_height",
)

func PolylineRecords(a SimpleAnnotation, f Filter) []PolylineRecord {
	return extract(a, f, func(c DetailContext, d Data) (PolylineRecord, bool) {
		switch v := d.(type) {
		case Points:
			pts := v.Points
			r := PolylineRecord{DetailContext: c, PointCount: len(pts)}
			if len(pts) < 2 {
				return r, true
			}
			r.Length = ptr(PolylineLength(pts))
			r.StartPoint = ptr(pts[0])
			r.EndPoint = ptr(pts[len(pts)-1])
			if mid, ok := MeanPoint(pts); ok {
				r.Midpoint = &mid
			}
			w, h, _ := Extent(pts)
			r.BoundingBoxWidth = ptr(w)
			r.BoundingBoxHeight = ptr(h)
			return r, true
		case BoundingBox, SinglePoint, Range, Segmentation, SegmentationV2, Classification, Custom:
			return PolylineRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListPolylines(annotationPath string, f Filter) ([]PolylineRecord, error) {
	return listFrom(annotationPath, f, PolylineRecords)
}

type SinglePointRecord struct {
	DetailContext
	Point Point `json:"point"`
}

var SinglePointColumns = columns("point.x", "point.y")

func SinglePointRecords(a SimpleAnnotation, f Filter) []SinglePointRecord {
	return extract(a, f, func(c DetailContext, d Data) (SinglePointRecord, bool) {
		switch v := d.(type) {
		case SinglePoint:
			return SinglePointRecord{DetailContext: c, Point: v.Point}, true
		case BoundingBox, Points, Range, Segmentation, SegmentationV2, Classification, Custom:
			return SinglePointRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListSinglePoints(annotationPath string, f Filter) ([]SinglePointRecord, error) {
	return listFrom(annotationPath, f, SinglePointRecords)
}

type RangeRecord struct {
	DetailContext
	BeginSecond    float64 `json:"begin_second"`
	EndSecond      float64 `json:"end_second"`
	DurationSecond float64 `json:"duration_second"`
}

var RangeColumns = columns("begin_second", "end_second", "duration_second")

func RangeRecords(a SimpleAnnotation, f Filter) []RangeRecord {
	return extract(a, f, func(c DetailContext, d Data) (RangeRecord, bool) {
		switch v := d.(type) {
		case Range:
			begin, end, duration := v.Seconds()
			return RangeRecord{DetailContext: c, BeginSecond: begin, EndSecond: end, DurationSecond: duration}, true
		case BoundingBox, Points, SinglePoint, Segmentation, SegmentationV2, Classification, Custom:
			return RangeRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListRanges(annotationPath string, f Filter) ([]RangeRecord, error) {
	return listFrom(annotationPath, f, RangeRecords)
}

type CuboidRecord struct {
	DetailContext
	Dimensions    *Size3     `json:"dimensions"`
	Location      *Vector3   `json:"location"`
	Rotation      *Vector3   `json:"rotation"`
	Direction     *Direction `json:"direction"`
	Volume        *float64   `json:"volume"`
	FootprintArea *float64   `json:"footprint_area"`
	BottomZ       *float64   `json:"bottom_z"`
	TopZ          *float64   `json:"top_z"`
}

var CuboidColumns = columns(
	"dimensions.width", "dimensions.height", "dimensions.depth",
	"location.x", "location.y", "location.z",
	"rotation.x", "rotation.y", "rotation.z",
	"direction.front.x", "direction.front.y", "direction.front.z",
	"direction.up.x", "direction.up.y", "direction.up.z",
	"volume", "footprint_area", "bottom_z", "top_z",
)

func CuboidRecords(a SimpleAnnotation, f Filter) []CuboidRecord {
	return extract(a, f, func(c DetailContext, d Data) (CuboidRecord, bool) {
		switch v := d.(type) {
		case Custom:
			shape, isCuboid := v.Cuboid()
			if !isCuboid {
				return CuboidRecord{}, false
			}
			r := CuboidRecord{DetailContext: c}
			if shape == nil {
				return r, true
			}
			bottom, top := shape.ZBounds()
			r.Dimensions = ptr(shape.Dimensions)
			r.Location = ptr(shape.Location)
			r.Rotation = ptr(shape.Rotation)
			r.Direction = ptr(shape.Direction)
			r.Volume = ptr(shape.Volume())
			r.FootprintArea = ptr(shape.FootprintArea())
			r.BottomZ = ptr(bottom)
			r.TopZ = ptr(top)
			return r, true
		case BoundingBox, Points, SinglePoint, Range, Segmentation, SegmentationV2, Classification:
			return CuboidRecord{}, false
		default:
			panic(unhandled(d))
		}
	})
}

func ListCuboids(annotationPath string, f Filter) ([]CuboidRecord, error) {
	return listFrom(annotationPath, f, CuboidRecords)
}
