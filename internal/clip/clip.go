package clip

import (
	"fmt"
	"math"
	"strings"
)

// Clip identifies a time-bounded segment of a source media file.
// Clips are values: producers build them once and consumers never mutate them.
type Clip struct {
	Source string  `json:"input_video"`
	Start  float64 `json:"start_time"`
	End    float64 `json:"end_time"`
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Validate reports whether the clip satisfies start >= 0 and end > start
// with a non-empty source.
func (c Clip) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("clip source is empty")
	}
	if math.IsNaN(c.Start) || math.IsInf(c.Start, 0) || math.IsNaN(c.End) || math.IsInf(c.End, 0) {
		return fmt.Errorf("clip %s has non-finite bounds", c.Source)
	}
	if c.Start < 0 {
		return fmt.Errorf("clip %s starts before zero (%.3f)", c.Source, c.Start)
	}
	if c.End <= c.Start {
		return fmt.Errorf("clip %s ends at %.3f, not after start %.3f", c.Source, c.End, c.Start)
	}
	return nil
}

func (c Clip) String() string {
	return fmt.Sprintf("%s [%.2f-%.2f]", c.Source, c.Start, c.End)
}
