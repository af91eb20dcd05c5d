package parser

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// ParseError reports a chart payload that is not a list of label/value points.
type ParseError struct {
	Index  int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return "chart payload: " + e.Reason
	}
	return fmt.Sprintf("chart point %d: %s", e.Index, e.Reason)
}

var errNotArray = &ParseError{Index: -1, Reason: "expected a JSON array"}

// decodeChart decodes `[{"label": "A", "value": 85}, ...]`.
func decodeChart(body string) ([]types.ChartPoint, error) {
	if !gjson.Valid(body) {
		return nil, &ParseError{Index: -1, Reason: "invalid JSON"}
	}

	root := gjson.Parse(body)
	if !root.IsArray() {
		return nil, errNotArray
	}

	points := make([]types.ChartPoint, 0)
	var decodeErr error
	index := 0
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			decodeErr = &ParseError{Index: index, Reason: "expected an object"}
			return false
		}
		value := item.Get("value")
		if value.Type != gjson.Number {
			decodeErr = &ParseError{Index: index, Reason: "value must be a number"}
			return false
		}
		v := value.Float()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			decodeErr = &ParseError{Index: index, Reason: "value is not finite"}
			return false
		}
		points = append(points, types.ChartPoint{
			Label: item.Get("label").String(),
			Value: v,
		})
		index++
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return points, nil
}
