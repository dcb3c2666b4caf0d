// Package silence finds speech in a media source by inverting silence.
//
// Analyzer runs ffmpeg's silencedetect filter (the detector) and an ffprobe
// duration query (the prober) concurrently. The detector's stderr is scanned
// line by line for end markers of the form
//
//	silence_end: <end> | silence_duration: <duration>
//
// and the gaps between consecutive silences become candidate clips. Gaps that
// run into a following silence receive EndPadding seconds of trailing slack,
// every end is clamped to the probed duration when it is known, and anything
// shorter than MinClipLength is dropped.
//
// Unparsable lines are skipped and a failed probe only removes the upper
// clamp; the analysis itself fails only when the detector cannot run.
package silence
