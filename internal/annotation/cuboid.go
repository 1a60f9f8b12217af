package annotation

import (
	"encoding/json"
	"strings"
)

const cuboidKind = "CUBOID"

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Size3 struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type Direction struct {
	Front Vector3 `json:"front"`
	Up    Vector3 `json:"up"`
}

type CuboidShape struct {
	Dimensions Size3     `json:"dimensions"`
	Location   Vector3   `json:"location"`
	Rotation   Vector3   `json:"rotation"`
	Direction  Direction `json:"direction"`
}

type cuboidPayload struct {
	Kind    string          `json:"kind"`
	Shape   json.RawMessage `json:"shape"`
	Version string          `json:"version"`
}

// Cuboid reports whether the custom payload is a 3D cuboid. The shape is nil
// when the payload says CUBOID but the shape cannot be decoded.
func (c Custom) Cuboid() (shape *CuboidShape, isCuboid bool) {
	var payload cuboidPayload
	if err := json.Unmarshal([]byte(c.Data), &payload); err != nil {
		return nil, false
	}
	if !strings.EqualFold(payload.Kind, cuboidKind) {
		return nil, false
	}
	var s CuboidShape
	if err := json.Unmarshal(payload.Shape, &s); err != nil {
		return nil, true
	}
	return &s, true
}
