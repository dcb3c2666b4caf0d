package silence

import (
	"math"
	"testing"

	"clipper/internal/clip"
	"clipper/internal/logging"
)

const tolerance = 1e-9

func assertClips(t *testing.T, got []clip.Clip, want [][2]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d clips, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if math.Abs(got[i].Start-w[0]) > tolerance || math.Abs(got[i].End-w[1]) > tolerance {
			t.Fatalf("clip %d = [%v, %v], want [%v, %v]", i, got[i].Start, got[i].End, w[0], w[1])
		}
	}
}

func TestDeriveNoSilenceSpansWholeSource(t *testing.T) {
	clips := deriveClips(nil, "a.mp4", 0, 120, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 120}})
	if clips[0].Source != "a.mp4" {
		t.Fatalf("expected source tag, got %q", clips[0].Source)
	}
}

func TestDeriveNoSilenceShortOrUnknownSource(t *testing.T) {
	if clips := deriveClips(nil, "a.mp4", 0, 1.0, logging.NewNop()); len(clips) != 0 {
		t.Fatalf("expected no clips for 1s source, got %v", clips)
	}
	if clips := deriveClips(nil, "a.mp4", 0, 0, logging.NewNop()); len(clips) != 0 {
		t.Fatalf("expected no clips for unknown duration, got %v", clips)
	}
}

func TestDeriveSingleSilence(t *testing.T) {
	periods := []period{{End: 10, Duration: 2}}
	clips := deriveClips(periods, "a.mp4", 0, 20, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 8}, {10, 20}})
}

func TestDeriveShortGapDiscardedAfterPadding(t *testing.T) {
	// Gap [5, 5.4] pads to [5, 5.7], still under the minimum.
	periods := []period{
		{End: 5, Duration: 2},
		{End: 7.4, Duration: 2},
	}
	clips := deriveClips(periods, "a.mp4", 0, 30, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 3}, {7.4, 30}})
}

func TestDerivePaddedGapKept(t *testing.T) {
	periods := []period{
		{End: 5, Duration: 1},
		{End: 8.2, Duration: 2},
	}
	clips := deriveClips(periods, "a.mp4", 0, 30, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 4}, {5, 6.5}, {8.2, 30}})
}

func TestDerivePaddingClampedToTotal(t *testing.T) {
	periods := []period{
		{End: 5, Duration: 1},
		{End: 12, Duration: 0.9},
	}
	// Gap [5, 11.1] pads to 11.4 but the source ends at 11.2.
	clips := deriveClips(periods, "a.mp4", 0, 11.2, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 4}, {5, 11.2}})
}

func TestDeriveUnknownTotalSkipsTrailingClip(t *testing.T) {
	periods := []period{{End: 10, Duration: 2}}
	clips := deriveClips(periods, "a.mp4", 0, 0, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 8}})
}

func TestDeriveHonorsStartOffset(t *testing.T) {
	periods := []period{{End: 40, Duration: 5}}
	clips := deriveClips(periods, "a.mp4", 30, 60, logging.NewNop())
	assertClips(t, clips, [][2]float64{{30, 35}, {40, 60}})
}

func TestDeriveDuplicateEndMarkersCollapse(t *testing.T) {
	periods := []period{
		{End: 10, Duration: 2},
		{End: 10, Duration: 2},
	}
	clips := deriveClips(periods, "a.mp4", 0, 20, logging.NewNop())
	assertClips(t, clips, [][2]float64{{0, 8}, {10, 20}})
}

func TestDeriveLeadingSilenceAtStart(t *testing.T) {
	periods := []period{{End: 3, Duration: 3}}
	clips := deriveClips(periods, "a.mp4", 0, 10, logging.NewNop())
	assertClips(t, clips, [][2]float64{{3, 10}})
}

func TestDeriveInvariantHolds(t *testing.T) {
	periods := []period{
		{End: 1.2, Duration: 0.9},
		{End: 2.5, Duration: 0.8},
		{End: 4.0, Duration: 1.0},
		{End: 9.75, Duration: 3.1},
		{End: 10.6, Duration: 0.8},
		{End: 15.0, Duration: 2.0},
	}
	for _, offset := range []float64{0, 0.5, 2} {
		for _, total := range []float64{0, 11, 16, 40} {
			for _, c := range deriveClips(periods, "a.mp4", offset, total, logging.NewNop()) {
				if c.Start >= c.End {
					t.Fatalf("offset %v total %v: clip %v has start >= end", offset, total, c)
				}
				if c.Duration() < MinClipLength {
					t.Fatalf("offset %v total %v: clip %v shorter than minimum", offset, total, c)
				}
				if total > 0 && c.End > total {
					t.Fatalf("offset %v total %v: clip %v exceeds total", offset, total, c)
				}
			}
		}
	}
}
