package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/library"
)

func newRecordingCommand(ctx *commandContext) *cobra.Command {
	recordingCmd := &cobra.Command{
		Use:   "recording",
		Short: "Manage library recordings",
	}

	var createFile string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a recording, optionally with a first take",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				rec, err := store.CreateRecording(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created recording %s (%s)\n", rec.ID, rec.Name)
				if createFile == "" {
					return nil
				}
				take, err := store.AddTake(cmd.Context(), rec.ID, createFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added take %d (%s)\n", take.TakeNumber, take.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&createFile, "file", "", "Media file for the first take")

	var listJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recordings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				recordings, err := store.ListRecordings(cmd.Context())
				if err != nil {
					return err
				}
				if listJSON {
					if recordings == nil {
						recordings = []library.Recording{}
					}
					return writeJSON(cmd, recordings)
				}
				out := cmd.OutOrStdout()
				if len(recordings) == 0 {
					fmt.Fprintln(out, "No recordings")
					return nil
				}
				rows := make([][]string, 0, len(recordings))
				for _, rec := range recordings {
					rows = append(rows, []string{rec.ID, rec.Name, formatTimestamp(rec.CreatedAt), formatTimestamp(rec.UpdatedAt)})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Created", "Updated"}, rows, nil))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print recordings as JSON")

	var showJSON bool
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recording with its takes and active clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				rec, err := store.GetRecording(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				takes, err := store.TakesForRecording(cmd.Context(), rec.ID)
				if err != nil {
					return err
				}
				clips, err := store.ClipsForRecording(cmd.Context(), rec.ID)
				if err != nil {
					return err
				}
				if showJSON {
					return writeJSON(cmd, recordingDetail{
						Recording: *rec,
						Takes:     nonNilTakes(takes),
						Clips:     nonNilClips(clips),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording: %s\n", rec.Name)
				fmt.Fprintf(out, "ID:        %s\n", rec.ID)
				fmt.Fprintf(out, "Created:   %s\n", formatTimestamp(rec.CreatedAt))
				fmt.Fprintf(out, "Updated:   %s\n", formatTimestamp(rec.UpdatedAt))
				fmt.Fprintln(out)
				if len(takes) == 0 {
					fmt.Fprintln(out, "No takes")
				} else {
					fmt.Fprintln(out, renderTakeTable(takes))
				}
				fmt.Fprintln(out)
				if len(clips) == 0 {
					fmt.Fprintln(out, "No active clips")
					return nil
				}
				fmt.Fprintln(out, renderStoredClipTable(clips, takeNumbers(takes)))
				return nil
			})
		},
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the recording as JSON")

	renameCmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.RenameRecording(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed recording %s\n", args[0])
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recording with its takes and clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.DeleteRecording(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted recording %s\n", args[0])
				return nil
			})
		},
	}

	recordingCmd.AddCommand(createCmd, listCmd, showCmd, renameCmd, deleteCmd)
	return recordingCmd
}

func newTakeCommand(ctx *commandContext) *cobra.Command {
	takeCmd := &cobra.Command{
		Use:   "take",
		Short: "Manage the takes of a recording",
	}

	addCmd := &cobra.Command{
		Use:   "add <recording-id> [file]",
		Short: "Append a take to a recording",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 2 {
				file = args[1]
			}
			return ctx.withLibrary(func(store *library.Store) error {
				take, err := store.AddTake(cmd.Context(), args[0], file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added take %d (%s)\n", take.TakeNumber, take.ID)
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <recording-id>",
		Short: "List a recording's takes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if _, err := store.GetRecording(cmd.Context(), args[0]); err != nil {
					return err
				}
				takes, err := store.TakesForRecording(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(takes) == 0 {
					fmt.Fprintln(out, "No takes")
					return nil
				}
				fmt.Fprintln(out, renderTakeTable(takes))
				return nil
			})
		},
	}

	setFileCmd := &cobra.Command{
		Use:   "set-file <take-id> <file>",
		Short: "Point a take at its media file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.UpdateTakeFilePath(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated take %s\n", args[0])
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <take-id>",
		Short: "Delete a take and its clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.DeleteTake(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted take %s\n", args[0])
				return nil
			})
		},
	}

	takeCmd.AddCommand(addCmd, listCmd, setFileCmd, deleteCmd)
	return takeCmd
}

func newClipCommand(ctx *commandContext) *cobra.Command {
	clipCmd := &cobra.Command{
		Use:   "clip",
		Short: "Manage a recording's stored clips",
	}

	var archived bool
	listCmd := &cobra.Command{
		Use:   "list <recording-id>",
		Short: "List a recording's clips in export order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if _, err := store.GetRecording(cmd.Context(), args[0]); err != nil {
					return err
				}
				var (
					clips []library.StoredClip
					err   error
				)
				if archived {
					clips, err = store.ArchivedClips(cmd.Context(), args[0])
				} else {
					clips, err = store.ClipsForRecording(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				takes, err := store.TakesForRecording(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(clips) == 0 {
					fmt.Fprintln(out, "No clips")
					return nil
				}
				fmt.Fprintln(out, renderStoredClipTable(clips, takeNumbers(takes)))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&archived, "archived", false, "List archived clips instead of active ones")

	archiveCmd := &cobra.Command{
		Use:   "archive <clip-id>",
		Short: "Hide a clip from export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.ArchiveClip(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived clip %s\n", args[0])
				return nil
			})
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <clip-id>",
		Short: "Return an archived clip to the export list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.RestoreClip(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored clip %s\n", args[0])
				return nil
			})
		},
	}

	reorderCmd := &cobra.Command{
		Use:   "reorder <recording-id> <clip-id>...",
		Short: "Set the export order of a recording's clips",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.ReorderClips(cmd.Context(), args[0], args[1:]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d clips\n", len(args)-1)
				return nil
			})
		},
	}

	clipCmd.AddCommand(listCmd, archiveCmd, restoreCmd, reorderCmd)
	return clipCmd
}

type recordingDetail struct {
	library.Recording
	Takes []library.Take       `json:"takes"`
	Clips []library.StoredClip `json:"clips"`
}

func renderTakeTable(takes []library.Take) string {
	rows := make([][]string, 0, len(takes))
	for _, take := range takes {
		file := take.FilePath
		if file == "" {
			file = "-"
		}
		rows = append(rows, []string{strconv.Itoa(take.TakeNumber), take.ID, file, formatTimestamp(take.CreatedAt)})
	}
	return renderTable(
		[]string{"Take", "ID", "File", "Created"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderStoredClipTable(clips []library.StoredClip, numbers map[string]int) string {
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		take := "-"
		if n, ok := numbers[c.TakeID]; ok {
			take = strconv.Itoa(n)
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Position),
			c.ID,
			take,
			formatSeconds(c.Start),
			formatSeconds(c.End),
			formatSeconds(c.Duration()),
		})
	}
	return renderTable(
		[]string{"Pos", "ID", "Take", "Start", "End", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func takeNumbers(takes []library.Take) map[string]int {
	numbers := make(map[string]int, len(takes))
	for _, take := range takes {
		numbers[take.ID] = take.TakeNumber
	}
	return numbers
}

func nonNilTakes(takes []library.Take) []library.Take {
	if takes == nil {
		return []library.Take{}
	}
	return takes
}

func nonNilClips(clips []library.StoredClip) []library.StoredClip {
	if clips == nil {
		return []library.StoredClip{}
	}
	return clips
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
