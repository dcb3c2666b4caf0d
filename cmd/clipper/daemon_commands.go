package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/daemonctl"
	"clipper/internal/daemonrun"
	"clipper/internal/deps"
	"clipper/internal/preflight"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var (
		serveLevel       string
		serveDevelopment bool
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipper daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    strings.TrimSpace(serveLevel),
				Development: serveDevelopment,
			})
		},
	}
	serveCmd.Flags().StringVar(&serveLevel, "log-level", "", "Override logging.level for this run")
	serveCmd.Flags().BoolVar(&serveDevelopment, "development", false, "Add source locations to log lines")

	var stopGrace time.Duration
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running clipper daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cmd.Context(), ctx.configValue(), stopGrace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(stdout, "Daemon did not exit in %s; killed pid %d\n", stopGrace, result.PID)
				return nil
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}
	stopCmd.Flags().DurationVar(&stopGrace, "grace", 5*time.Second, "How long to wait before killing the daemon")

	return []*cobra.Command{serveCmd, stopCmd}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		probePath  string
		checkTools bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and directory status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), cfg, daemonctl.NewClientFromConfig(cfg))
			if err != nil {
				return err
			}

			ffprobeBinary := deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.Tools.FFprobe)
			if checkTools {
				runner := newToolRunner(ctx.log())
				snapshot.Checks = append(snapshot.Checks, api.FromPreflightResults([]preflight.Result{
					preflight.CheckToolVersion(cmd.Context(), runner, "FFmpeg", cfg.FFmpegBinary()),
					preflight.CheckToolVersion(cmd.Context(), runner, "FFprobe", ffprobeBinary),
				})...)
			}

			var probe *preflight.MediaProbe
			if path := strings.TrimSpace(probePath); path != "" {
				result := preflight.ProbeMedia(cmd.Context(), newToolRunner(ctx.log()), ffprobeBinary, path)
				probe = &result
			}

			if jsonOutput {
				return writeJSON(cmd, statusOutput{StatusResponse: snapshot, Probe: probeOutput(probe)})
			}
			renderStatus(cmd, cfg, snapshot, probe)
			return nil
		},
	}

	cmd.Flags().StringVar(&probePath, "probe", "", "Inspect a media file with ffprobe")
	cmd.Flags().BoolVar(&checkTools, "check-tools", false, "Run ffmpeg/ffprobe -version to confirm they start")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

type mediaProbeOutput struct {
	Path     string  `json:"path"`
	Found    bool    `json:"found"`
	Readable bool    `json:"readable"`
	Format   string  `json:"format,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Video    int     `json:"video_streams"`
	Audio    int     `json:"audio_streams"`
	Error    string  `json:"error,omitempty"`
}

type statusOutput struct {
	*api.StatusResponse
	Probe *mediaProbeOutput `json:"probe,omitempty"`
}

func probeOutput(probe *preflight.MediaProbe) *mediaProbeOutput {
	if probe == nil {
		return nil
	}
	return &mediaProbeOutput{
		Path:     probe.Path,
		Found:    probe.Found,
		Readable: probe.Readable,
		Format:   probe.Format,
		Duration: probe.Duration,
		Video:    probe.Video,
		Audio:    probe.Audio,
		Error:    probe.Error,
	}
}

func renderStatus(cmd *cobra.Command, cfg *config.Config, snapshot *api.StatusResponse, probe *preflight.MediaProbe) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, daemonLine(snapshot, colorize))
	fmt.Fprintln(stdout, renderStatusLine("API bind", statusInfo, cfg.Paths.APIBind, colorize))
	fmt.Fprintln(stdout, renderStatusLine("API token", statusInfo, yesNo(cfg.Paths.APIToken != ""), colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(snapshot.Dependencies, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if len(snapshot.Checks) == 0 {
		fmt.Fprintln(stdout, renderStatusLine("Checks", statusInfo, "none reported", colorize))
	}
	for _, line := range checkLines(snapshot.Checks, colorize) {
		fmt.Fprintln(stdout, line)
	}

	if probe == nil {
		return
	}
	fmt.Fprintln(stdout)
	for _, line := range renderSectionHeader("Media", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Probe", probeKind(*probe), probe.Detail(), colorize))
}

func probeKind(probe preflight.MediaProbe) statusKind {
	switch {
	case !probe.Found || !probe.Readable:
		return statusError
	case probe.Audio == 0:
		return statusWarn
	default:
		return statusOK
	}
}
