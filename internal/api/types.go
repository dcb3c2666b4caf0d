package api

import (
	"encoding/json"

	"clipper/internal/clip"
	"clipper/internal/deps"
	"clipper/internal/preflight"
)

// DetectRequest is the body of POST /api/detect.
type DetectRequest struct {
	Source    string   `json:"source"`
	StartTime *float64 `json:"start_time,omitempty"`
	Threshold *int     `json:"threshold,omitempty"`
}

// DetectResponse carries the detected clips.
type DetectResponse struct {
	Clips []clip.Clip `json:"clips"`
}

// ExportRequest is the body of POST /api/export. Clips is kept raw so the
// clip list codec performs validation.
type ExportRequest struct {
	Clips      json.RawMessage `json:"clips"`
	OutputPath string          `json:"output_path"`
}

// ExportResponse reports where the export was written.
type ExportResponse struct {
	OutputPath string `json:"output_path"`
}

// ErrorResponse is returned for any failed request. Kind is one of the
// clip.Kind* values, or "invalid_request" / "unauthorized" when the daemon
// rejects a request before it reaches an operation.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult is a single preflight outcome.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse aggregates daemon runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	APIBind      string             `json:"api_bind"`
	TempDir      string             `json:"temp_dir"`
	LockPath     string             `json:"lock_path,omitempty"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Checks       []CheckResult      `json:"checks,omitempty"`
}

// NewErrorResponse classifies err for the wire.
func NewErrorResponse(err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{}
	}
	return ErrorResponse{Error: err.Error(), Kind: clip.Kind(err)}
}

// FromDependencyStatuses converts dependency checks into DTOs.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Path:        s.Path,
			Detail:      s.Detail,
		})
	}
	return out
}

// FromPreflightResults converts preflight results into DTOs.
func FromPreflightResults(results []preflight.Result) []CheckResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
