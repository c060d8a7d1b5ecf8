package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrNotObject is returned when model output holds no JSON object
var ErrNotObject = errors.New("response is not a JSON object")

// DecodeObject parses model output as strict JSON, then as repaired JSON, then as Hjson.
// Markdown code fences around the payload are stripped first.
func DecodeObject(text string) (map[string]any, error) {
	payload := stripFences(text)
	if payload == "" {
		return nil, ErrNotObject
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err == nil && obj != nil {
		return obj, nil
	}

	if repaired, err := jsonrepair.RepairJSON(payload); err == nil {
		obj = nil
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}

	var lenient any
	if err := hjson.Unmarshal([]byte(payload), &lenient); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	if m, ok := lenient.(map[string]any); ok {
		return m, nil
	}
	return nil, ErrNotObject
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
