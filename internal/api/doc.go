// Package api is the public operation surface shared by the CLI and the
// daemon.
//
// # Operations
//
// DetectSilence: run silence analysis on a source, filling omitted start
// offset and threshold from the [analysis] config section.
//
// ExportClips: decode a JSON clip list and export it into one file.
// ExportClipList takes already decoded clips (the library export path).
//
// # Wire types
//
// DetectRequest/DetectResponse, ExportRequest/ExportResponse, StatusResponse
// and ErrorResponse are the HTTP payloads. Field names are snake_case to
// match the clip list format (input_video, start_time, end_time), so a
// DetectResponse's clips can be posted back unchanged as an ExportRequest.
package api
