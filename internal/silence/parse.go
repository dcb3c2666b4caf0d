package silence

import (
	"bufio"
	"math"
	"strconv"
	"strings"
)

const (
	endMarker      = "silence_end:"
	durationMarker = "silence_duration:"
)

// period is one silence interval reported by the detector. End is absolute
// within the source (already shifted by the analysis start offset).
type period struct {
	End      float64
	Duration float64
}

// Start returns where the silence began. It may be negative when the
// detector's clock disagrees with the prober; callers use it as reported.
func (p period) Start() float64 {
	return p.End - p.Duration
}

// parsePeriods scans detector diagnostics and returns one period per
// well-formed end marker, in the order they appear. Start markers and any
// line that does not parse are ignored.
func parsePeriods(diagnostics string, startOffset float64) []period {
	var periods []period
	scanner := bufio.NewScanner(strings.NewReader(diagnostics))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p, ok := parseEndMarker(scanner.Text())
		if !ok {
			continue
		}
		p.End += startOffset
		periods = append(periods, p)
	}
	return periods
}

// parseEndMarker extracts end and duration from a line shaped like
//
//	[silencedetect @ 0x55d] silence_end: 12.48 | silence_duration: 2.113
//
// The duration label is optional as long as a labelled value follows the pipe.
func parseEndMarker(line string) (period, bool) {
	idx := strings.Index(line, endMarker)
	if idx < 0 {
		return period{}, false
	}
	rest := line[idx+len(endMarker):]
	endField, durationField, found := strings.Cut(rest, "|")
	if !found {
		return period{}, false
	}
	end, ok := parseNumber(endField)
	if !ok {
		return period{}, false
	}

	durationField = strings.TrimSpace(durationField)
	if label := strings.Index(durationField, durationMarker); label >= 0 {
		durationField = durationField[label+len(durationMarker):]
	} else if _, value, hasLabel := strings.Cut(durationField, ":"); hasLabel {
		durationField = value
	} else {
		return period{}, false
	}
	duration, ok := parseNumber(durationField)
	if !ok || duration <= 0 {
		return period{}, false
	}
	return period{End: end, Duration: duration}, true
}

// parseNumber reads the first whitespace-delimited token as a finite float.
func parseNumber(field string) (float64, bool) {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
