package calculator

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Metrics flattens the top-level numeric outputs of a calculation, keyed by
// their JSON names. Booleans are reported as 0 or 1. Nested values are skipped.
func Metrics(values any) (map[string]float64, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outputs: %w", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("outputs are not an object: %w", err)
	}

	metrics := make(map[string]float64, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case float64:
			metrics[key] = v
		case bool:
			if v {
				metrics[key] = 1
			} else {
				metrics[key] = 0
			}
		}
	}
	return metrics, nil
}

// Metric returns one numeric output by its JSON name.
func Metric(values any, name string) (float64, error) {
	metrics, err := Metrics(values)
	if err != nil {
		return 0, err
	}
	v, ok := metrics[name]
	if !ok {
		return 0, fmt.Errorf("output %q is not a numeric result", name)
	}
	return v, nil
}

// MetricNames returns the sorted names of the numeric outputs.
func MetricNames(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
