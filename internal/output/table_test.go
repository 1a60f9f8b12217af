package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type row struct {
	TaskID     string         `json:"task_id"`
	Center     point          `json:"center"`
	Length     *float64       `json:"length"`
	Attributes map[string]any `json:"attributes"`
}

func TestFlatten(t *testing.T) {
	m, err := Flatten(row{
		TaskID:     "t1",
		Center:     point{X: 1.5, Y: 2},
		Attributes: map[string]any{"occluded": true, "note": "n", "tags": []any{"a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"task_id":              "t1",
		"center.x":             "1.5",
		"center.y":             "2.0",
		"attributes.occluded":  "true",
		"attributes.note":      "n",
		"attributes.tags":      `["a"]`,
	}, m)
}

type shapeContext struct {
	TaskPhaseStage int `json:"task_phase_stage"`
}

type shape struct {
	shapeContext
	PointCount int                `json:"point_count"`
	Area       *float64           `json:"area"`
	Scores     map[string]float64 `json:"scores"`
	Counts     map[string]int     `json:"counts"`
	Attributes map[string]any     `json:"attributes"`
}

func TestFlattenKeepsDecimalPointOfFloatFields(t *testing.T) {
	area := 50.0
	m, err := Flatten(shape{
		shapeContext: shapeContext{TaskPhaseStage: 1},
		PointCount:   3,
		Area:         &area,
		Scores:       map[string]float64{"iou": 1},
		Counts:       map[string]int{"car": 2},
		Attributes:   map[string]any{"weight": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", m["task_phase_stage"])
	assert.Equal(t, "3", m["point_count"])
	assert.Equal(t, "50.0", m["area"])
	assert.Equal(t, "1.0", m["scores.iou"])
	assert.Equal(t, "2", m["counts.car"])
	assert.Equal(t, "4", m["attributes.weight"])
}

func TestFlattenFloatFieldFraction(t *testing.T) {
	area := 12.5
	m, err := Flatten(&shape{Area: &area})
	require.NoError(t, err)
	assert.Equal(t, "12.5", m["area"])
	assert.Equal(t, "0", m["point_count"])
}

func TestFlattenSkipsEmptyObjects(t *testing.T) {
	m, err := Flatten(row{TaskID: "t1", Attributes: map[string]any{}})
	require.NoError(t, err)
	_, ok := m["attributes"]
	assert.False(t, ok)
	_, ok = m["length"]
	assert.False(t, ok)
}

func TestBuildTableOrdersColumns(t *testing.T) {
	length := 3.25
	records := []row{
		{TaskID: "t1", Length: &length, Attributes: map[string]any{"z": 1}},
		{TaskID: "t2", Attributes: map[string]any{"a": "x"}},
	}
	table, err := BuildTable(records, []string{"task_id", "center.x", "center.y", "length"})
	require.NoError(t, err)
	assert.Equal(t, []string{"task_id", "center.x", "center.y", "length", "attributes.a", "attributes.z"}, table.Columns)
	assert.Equal(t, [][]string{
		{"t1", "0.0", "0.0", "3.25", "", "1"},
		{"t2", "0.0", "0.0", "", "x", ""},
	}, table.Rows)
}

func TestBuildTableEmptyIsHeaderOnly(t *testing.T) {
	table, err := BuildTable([]row{}, []string{"task_id", "length"})
	require.NoError(t, err)
	assert.Equal(t, []string{"task_id", "length"}, table.Columns)
	assert.Empty(t, table.Rows)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table, DefaultCSVFormat))
	assert.Equal(t, "\ufefftask_id,length\n", buf.String())
}

func TestWriteCSVSeparator(t *testing.T) {
	var buf bytes.Buffer
	table := Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "x y"}}}
	require.NoError(t, WriteCSV(&buf, table, CSVFormat{Sep: '\t'}))
	assert.Equal(t, "a\tb\n1\tx y\n", buf.String())
}
