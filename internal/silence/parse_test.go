package silence

import "testing"

const sampleDiagnostics = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'take.mp4':
  Duration: 00:00:30.02, start: 0.000000, bitrate: 1205 kb/s
[silencedetect @ 0x55d5c0a4b2c0] silence_start: 8
[silencedetect @ 0x55d5c0a4b2c0] silence_end: 10 | silence_duration: 2
frame=  750 fps=0.0 q=-0.0 size=N/A time=00:00:12.00 bitrate=N/A speed=24x
[silencedetect @ 0x55d5c0a4b2c0] silence_start: 14.5
[silencedetect @ 0x55d5c0a4b2c0] silence_end: 16.25 | silence_duration: 1.75
size=N/A time=00:00:30.02 bitrate=N/A speed=40x
`

func TestParsePeriodsReadsEndMarkers(t *testing.T) {
	periods := parsePeriods(sampleDiagnostics, 0)
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %v", periods)
	}
	if periods[0].End != 10 || periods[0].Duration != 2 {
		t.Fatalf("unexpected first period %+v", periods[0])
	}
	if periods[1].End != 16.25 || periods[1].Duration != 1.75 {
		t.Fatalf("unexpected second period %+v", periods[1])
	}
	if periods[1].Start() != 14.5 {
		t.Fatalf("expected derived start 14.5, got %v", periods[1].Start())
	}
}

func TestParsePeriodsAppliesStartOffset(t *testing.T) {
	periods := parsePeriods("[silencedetect @ 0x1] silence_end: 4 | silence_duration: 1\n", 30)
	if len(periods) != 1 || periods[0].End != 34 || periods[0].Duration != 1 {
		t.Fatalf("unexpected periods %v", periods)
	}
}

func TestParseEndMarkerTolerance(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		ok       bool
		end      float64
		duration float64
	}{
		{name: "canonical", line: "[silencedetect @ 0x1] silence_end: 12.48 | silence_duration: 2.113", ok: true, end: 12.48, duration: 2.113},
		{name: "no spaces", line: "silence_end:3|silence_duration:1.5", ok: true, end: 3, duration: 1.5},
		{name: "other label", line: "silence_end: 3 | dur: 1.5", ok: true, end: 3, duration: 1.5},
		{name: "trailing text", line: "silence_end: 3 | silence_duration: 1.5 extra", ok: true, end: 3, duration: 1.5},
		{name: "crlf", line: "silence_end: 3 | silence_duration: 1.5\r", ok: true, end: 3, duration: 1.5},
		{name: "start marker", line: "[silencedetect @ 0x1] silence_start: 8"},
		{name: "missing pipe", line: "silence_end: 3 silence_duration: 1.5"},
		{name: "missing label", line: "silence_end: 3 | 1.5"},
		{name: "bad end", line: "silence_end: abc | silence_duration: 1.5"},
		{name: "bad duration", line: "silence_end: 3 | silence_duration: x"},
		{name: "zero duration", line: "silence_end: 3 | silence_duration: 0"},
		{name: "nan", line: "silence_end: NaN | silence_duration: 1"},
		{name: "inf duration", line: "silence_end: 3 | silence_duration: inf"},
		{name: "empty", line: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := parseEndMarker(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v (%+v)", ok, tc.ok, p)
			}
			if ok && (p.End != tc.end || p.Duration != tc.duration) {
				t.Fatalf("got %+v, want end %v duration %v", p, tc.end, tc.duration)
			}
		})
	}
}

func TestParsePeriodsNegativeStartKept(t *testing.T) {
	periods := parsePeriods("silence_end: 1 | silence_duration: 1.4\n", 0)
	if len(periods) != 1 {
		t.Fatalf("expected period kept, got %v", periods)
	}
	if periods[0].Start() >= 0 {
		t.Fatalf("expected negative start to be reported as-is, got %v", periods[0].Start())
	}
}
