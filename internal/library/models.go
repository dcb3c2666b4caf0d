package library

import (
	"time"

	"clipper/internal/clip"
)

// Recording groups the takes and clips of one piece of content.
type Recording struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Take is one captured media file belonging to a recording. FilePath is
// empty until the capture has been written.
type Take struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	FilePath    string    `json:"file_path,omitempty"`
	TakeNumber  int       `json:"take_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredClip is a persisted speech clip. Position orders the active clips of
// a recording for export; archived clips keep their position but are hidden.
type StoredClip struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	TakeID      string    `json:"take_id"`
	Start       float64   `json:"start_time"`
	End         float64   `json:"end_time"`
	Position    int       `json:"position"`
	Text        string    `json:"text,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

// Duration returns the clip length in seconds.
func (c StoredClip) Duration() float64 {
	return c.End - c.Start
}

// Clip converts the stored row into an exportable clip cut from source.
func (c StoredClip) Clip(source string) clip.Clip {
	return clip.Clip{Source: source, Start: c.Start, End: c.End}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
