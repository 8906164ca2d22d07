package mcpserver

import (
	"encoding/json"
	"fmt"

	"storefront/internal/design"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// parsePoints accepts [{"x":1,"y":2}, ...] or [[1,2], ...].
func parsePoints(data string) ([]design.Point, error) {
	var objects []design.Point
	if err := parseJSON(data, &objects); err == nil {
		return objects, nil
	}
	var pairs [][2]float64
	if err := parseJSON(data, &pairs); err != nil {
		return nil, fmt.Errorf("points must be a JSON array of {x,y} objects or [x,y] pairs: %w", err)
	}
	points := make([]design.Point, len(pairs))
	for i, p := range pairs {
		points[i] = design.Point{X: p[0], Y: p[1]}
	}
	return points, nil
}
