// Package geobounds turns a location description into a validated
// latitude/longitude bounding box.
package geobounds

import (
	"encoding/json"
	"fmt"
	"math"
)

// BoundingBox is a rectangular area in decimal degrees.
type BoundingBox struct {
	MinLat      float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat      float64 `json:"max_lat" yaml:"max_lat"`
	MinLng      float64 `json:"min_lng" yaml:"min_lng"`
	MaxLng      float64 `json:"max_lng" yaml:"max_lng"`
	Description string  `json:"description" yaml:"description"`
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lat [%g, %g] lng [%g, %g]", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// Validate checks the ranges: all four values finite, latitude within
// [-90, 90], longitude within [-180, 180] and min strictly below max on
// both axes.
func (b BoundingBox) Validate() error {
	switch {
	case !finite(b.MinLat, b.MaxLat, b.MinLng, b.MaxLng):
		return invalid("coordinates must be finite numbers, got %s", b)
	case b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90:
		return invalid("latitude must be between -90 and 90, got [%g, %g]", b.MinLat, b.MaxLat)
	case b.MinLng < -180 || b.MinLng > 180 || b.MaxLng < -180 || b.MaxLng > 180:
		return invalid("longitude must be between -180 and 180, got [%g, %g]", b.MinLng, b.MaxLng)
	case b.MinLat >= b.MaxLat:
		return invalid("min_lat (%g) must be less than max_lat (%g)", b.MinLat, b.MaxLat)
	case b.MinLng >= b.MaxLng:
		return invalid("min_lng (%g) must be less than max_lng (%g)", b.MinLng, b.MaxLng)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Contains reports whether a point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

var requiredKeys = []string{"min_lat", "max_lat", "min_lng", "max_lng"}

// Parse extracts the JSON object from a model reply and validates it.
// All four coordinates must be JSON numbers; quoted numbers are rejected.
func Parse(reply string) (BoundingBox, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return BoundingBox{}, &Error{Stage: StageParse, Message: "reply contains no JSON object", Cause: err}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return BoundingBox{}, &Error{Stage: StageParse, Message: "reply is not a JSON object", Cause: err}
	}

	values := make(map[string]float64, len(requiredKeys))
	for _, key := range requiredKeys {
		v, ok := fields[key]
		if !ok {
			return BoundingBox{}, invalid("missing %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return BoundingBox{}, invalid("%s must be a number, got %T", key, v)
		}
		values[key] = f
	}

	box := BoundingBox{
		MinLat: values["min_lat"],
		MaxLat: values["max_lat"],
		MinLng: values["min_lng"],
		MaxLng: values["max_lng"],
	}
	if d, ok := fields["description"].(string); ok {
		box.Description = d
	}

	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}
