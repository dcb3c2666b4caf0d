package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/api"
	"clipper/internal/clip"
	"clipper/internal/library"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		startOffset float64
		threshold   int
		takeID      string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "detect [source]",
		Short: "Find the speech clips between silences in a media file",
		Long: "Detect runs ffmpeg's silence detector over a media file and prints the speech clips between the silences.\n" +
			"With --take the clips replace the take's active clips in the library, and the source defaults to the take's file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = strings.TrimSpace(args[0])
			}
			takeID = strings.TrimSpace(takeID)

			var take *library.Take
			if takeID != "" {
				if err := ctx.withLibrary(func(store *library.Store) error {
					var err error
					take, err = store.GetTake(cmd.Context(), takeID)
					return err
				}); err != nil {
					return err
				}
				if source == "" {
					source = take.FilePath
				}
			}
			if source == "" {
				return fmt.Errorf("a source file is required (pass a path or a --take with media)")
			}

			var startPtr *float64
			if cmd.Flags().Changed("start") {
				startPtr = &startOffset
			}
			var thresholdPtr *int
			if cmd.Flags().Changed("threshold") {
				thresholdPtr = &threshold
			}

			clips, err := runDetect(cmd, ctx, source, startPtr, thresholdPtr)
			if err != nil {
				return err
			}

			if take != nil {
				if err := ctx.withLibrary(func(store *library.Store) error {
					saved, err := store.SaveClipsForTake(cmd.Context(), take.ID, clips)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d clips to take %d of recording %s\n", len(saved), take.TakeNumber, take.RecordingID)
					return nil
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput || !isTerminal(out) {
				data, err := clip.EncodeList(clips)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			if len(clips) == 0 {
				fmt.Fprintln(out, "No speech clips found")
				return nil
			}
			fmt.Fprintln(out, renderClipTable(clips))
			return nil
		},
	}

	cmd.Flags().Float64Var(&startOffset, "start", 0, "Seconds to skip at the start of the source")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Silence threshold in dB (negative)")
	cmd.Flags().StringVar(&takeID, "take", "", "Save the detected clips to this library take")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the clip list as JSON")
	return cmd
}

func runDetect(cmd *cobra.Command, ctx *commandContext, source string, start *float64, threshold *int) ([]clip.Clip, error) {
	if ctx.remote() {
		client, err := ctx.daemonClient()
		if err != nil {
			return nil, err
		}
		clips, err := client.Detect(cmd.Context(), api.DetectRequest{Source: source, StartTime: start, Threshold: threshold})
		return clips, wrapDaemonError(err, ctx.configValue())
	}
	svc, err := ctx.service()
	if err != nil {
		return nil, err
	}
	return svc.DetectSilence(cmd.Context(), source, start, threshold)
}

func renderClipTable(clips []clip.Clip) string {
	rows := make([][]string, 0, len(clips))
	for i, c := range clips {
		rows = append(rows, []string{
			strconv.Itoa(i),
			formatSeconds(c.Start),
			formatSeconds(c.End),
			formatSeconds(c.Duration()),
			c.Source,
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Duration", "Source"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
