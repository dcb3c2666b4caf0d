package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/clip"
	"clipper/internal/library"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		clipsPath   string
		recordingID string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Concatenate clips into a single media file",
		Long: "Export cuts each clip out of its source, then joins the pieces in order into the output file.\n" +
			"Clips come from a JSON clip list (--clips FILE, or - for stdin) or from a library recording's active clips.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clipsPath = strings.TrimSpace(clipsPath)
			recordingID = strings.TrimSpace(recordingID)
			outputPath = strings.TrimSpace(outputPath)
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			if (clipsPath == "") == (recordingID == "") {
				return fmt.Errorf("exactly one of --clips or --recording is required")
			}

			var (
				clips []clip.Clip
				raw   []byte
				err   error
			)
			if clipsPath != "" {
				raw, err = readClipList(cmd.InOrStdin(), clipsPath)
				if err != nil {
					return err
				}
			} else {
				err = ctx.withLibrary(func(store *library.Store) error {
					var listErr error
					clips, listErr = store.ExportList(cmd.Context(), recordingID)
					return listErr
				})
				if err != nil {
					return err
				}
			}

			written, err := runExport(cmd, ctx, raw, clips, outputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVar(&clipsPath, "clips", "", "JSON clip list file, or - to read stdin")
	cmd.Flags().StringVar(&recordingID, "recording", "", "Export the active clips of this library recording")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination media file")
	return cmd
}

func readClipList(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, clip.Wrap(clip.ErrIO, "read clip list", "stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, "read clip list", path, err)
	}
	return data, nil
}

// runExport sends either a raw JSON clip list or an already decoded one to
// the local service or the daemon.
func runExport(cmd *cobra.Command, ctx *commandContext, raw []byte, clips []clip.Clip, outputPath string) (string, error) {
	if ctx.remote() {
		if raw != nil {
			decoded, err := clip.DecodeList(raw)
			if err != nil {
				return "", err
			}
			clips = decoded
		}
		client, err := ctx.daemonClient()
		if err != nil {
			return "", err
		}
		written, err := client.Export(cmd.Context(), clips, outputPath)
		return written, wrapDaemonError(err, ctx.configValue())
	}

	svc, err := ctx.service()
	if err != nil {
		return "", err
	}
	if raw != nil {
		return svc.ExportClips(cmd.Context(), raw, outputPath)
	}
	return svc.ExportClipList(cmd.Context(), clips, outputPath)
}
