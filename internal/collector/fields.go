package collector

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"Niveshak/internal/model"
)

// FieldPath locates one snapshot field in a RawQuote. Numeric segments index
// arrays. An empty Path declares a field the provider never supplies.
type FieldPath struct {
	Field model.Field
	Path  []string
}

// FieldMapping is a provider's extraction table, in display order.
type FieldMapping []FieldPath

// Validate checks that every snapshot field is declared exactly once and that
// no path holds an empty segment.
func (m FieldMapping) Validate() error {
	seen := make(map[model.Field]bool, len(m))
	for _, fp := range m {
		if !model.IsSnapshotField(fp.Field) {
			return fmt.Errorf("field mapping: unknown field %q", fp.Field)
		}
		if seen[fp.Field] {
			return fmt.Errorf("field mapping: %q declared twice", fp.Field)
		}
		seen[fp.Field] = true
		for _, seg := range fp.Path {
			if strings.TrimSpace(seg) == "" {
				return fmt.Errorf("field mapping: %q has an empty path segment", fp.Field)
			}
		}
	}
	for _, f := range model.SnapshotFields {
		if !seen[f] {
			return fmt.Errorf("field mapping: %q not declared", f)
		}
	}
	return nil
}

// Extract converts a raw quote into a snapshot. Missing paths and values of
// the wrong type become absent values.
func (m FieldMapping) Extract(raw RawQuote) model.Snapshot {
	entries := make([]model.Entry, 0, len(m))
	for _, fp := range m {
		var v any
		if len(fp.Path) > 0 {
			v = lookup(map[string]any(raw), fp.Path)
		}
		if model.IsText(fp.Field) {
			entries = append(entries, model.Entry{Field: fp.Field, Value: model.TextValue(toText(v))})
		} else {
			entries = append(entries, model.Entry{Field: fp.Field, Value: model.NumberValue(toNumber(v))})
		}
	}
	return model.NewSnapshot(entries)
}

func lookup(node any, path []string) any {
	for _, seg := range path {
		switch n := node.(type) {
		case map[string]any:
			node = n[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil
			}
			node = n[i]
		default:
			return nil
		}
		if node == nil {
			return nil
		}
	}
	return node
}

// toNumber accepts finite numbers only; "NaN" and "Inf" strings are absent.
func toNumber(v any) null.Float {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case int:
		return finite(float64(n))
	case int64:
		return finite(float64(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return finite(f)
		}
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return finite(f)
		}
	}
	return null.Float{}
}

func finite(f float64) null.Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

func toText(v any) null.String {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
