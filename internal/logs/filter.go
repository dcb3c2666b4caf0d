package logs

import (
	"encoding/json"
	"strings"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Filter selects JSON log lines by minimum level, component, and correlation
// ID. The zero Filter matches every line; any set field drops lines that are
// not JSON objects.
type Filter struct {
	MinLevel      string
	Component     string
	CorrelationID string
}

func (f Filter) empty() bool {
	return f.MinLevel == "" && f.Component == "" && f.CorrelationID == ""
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	var entry struct {
		Level         string `json:"level"`
		Component     string `json:"component"`
		CorrelationID string `json:"correlation_id"`
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return false
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		got, known := levelRank[strings.ToLower(entry.Level)]
		if ok && (!known || got < want) {
			return false
		}
	}
	if f.Component != "" && !strings.EqualFold(entry.Component, f.Component) {
		return false
	}
	if f.CorrelationID != "" && entry.CorrelationID != f.CorrelationID {
		return false
	}
	return true
}
