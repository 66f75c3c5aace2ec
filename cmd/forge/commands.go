package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joik2ww/forge/internal/builder"
	"github.com/joik2ww/forge/internal/config"
	"github.com/joik2ww/forge/internal/discover"
	"github.com/joik2ww/forge/internal/history"
	"github.com/joik2ww/forge/internal/notify"
	"github.com/joik2ww/forge/internal/report"
	"github.com/joik2ww/forge/internal/toolchain"
	"github.com/joik2ww/forge/internal/watch"
	"github.com/joik2ww/forge/internal/workspace"
)

var (
	watchSchedule string
	historyRuns   int
)

func init() {
	// build command (also the root's default action)
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build every discovered script",
		RunE:  runBuild,
	}
	rootCmd.AddCommand(buildCmd)

	// doctor command
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the interpreter and compiler installation",
		RunE:  runDoctor,
	}
	rootCmd.AddCommand(doctorCmd)

	// clean command
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Reset the scratch and dist directories",
		RunE:  runClean,
	}
	rootCmd.AddCommand(cleanCmd)

	// watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild scripts when they change",
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron expression for scheduled full rebuilds")
	rootCmd.AddCommand(watchCmd)

	// history command
	historyCmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show past runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyRuns, "runs", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

// buildSession wires the collaborators one run needs
type buildSession struct {
	cfg      *config.Config
	layout   config.Layout
	reporter *report.Reporter
	orch     *builder.Orchestrator
	ws       *workspace.Workspace
}

func newBuildSession(ctx context.Context, cfg *config.Config) (*buildSession, error) {
	baseDir, err := cfg.ResolveBaseDir()
	if err != nil {
		return nil, err
	}
	layout := cfg.Layout(baseDir)
	reporter := report.New(os.Stdout)

	tc := toolchain.New(cfg.Toolchain)
	if err := tc.Probe(ctx); err != nil {
		return nil, fmt.Errorf("environment check failed: %w", err)
	}

	ws := workspace.New(layout)
	if err := ws.Ensure(); err != nil {
		return nil, err
	}
	ws.Clean()

	return &buildSession{
		cfg:      cfg,
		layout:   layout,
		reporter: reporter,
		ws:       ws,
		orch: &builder.Orchestrator{
			Layout:   layout,
			Compiler: builder.NewPyInstaller(tc),
			Progress: reporter,
		},
	}, nil
}

func (s *buildSession) scan() ([]discover.Target, error) {
	return discover.Scan(discover.Options{
		BaseDir:  s.layout.BaseDir,
		ToolsDir: s.layout.ToolsDir,
		Flagship: s.cfg.General.Flagship,
		Exclude:  s.cfg.General.LauncherScript,
	})
}

// buildAll runs one full build pass: build, post-clean, report, record,
// notify. The workspace is pristine on entry: newBuildSession pre-cleans and
// every pass post-cleans.
func (s *buildSession) buildAll(ctx context.Context, targets []discover.Target) builder.Summary {
	runID := history.NewRunID()
	started := time.Now()
	sum := s.orch.Run(ctx, targets)
	s.ws.Clean()
	s.reporter.Summary(sum, s.layout)
	s.record(runID, sum, started)
	s.notifyRun(runID, sum)
	return sum
}

// record persists the run to the history database, best-effort
func (s *buildSession) record(runID string, sum builder.Summary, started time.Time) {
	store, err := history.New(s.cfg.General.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.BeginRun(runID, started); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: recording run: %v\n", err)
		return
	}
	for _, res := range sum.Results {
		if err := store.RecordBuild(runID, res); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording build: %v\n", err)
		}
	}
	if err := store.FinishRun(runID, sum.Found, sum.Built, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: recording run: %v\n", err)
	}
}

func (s *buildSession) notifyRun(runID string, sum builder.Summary) {
	notifier := notify.NewMultiNotifier(
		notify.NewDesktopNotifier(s.cfg.Notifications.Desktop),
		notify.NewSlackNotifier(s.cfg.Notifications.SlackWebhook),
	)
	if err := notifier.Send(notify.RunFinished(runID, sum.Found, sum.Built)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: notification failed: %v\n", err)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := newBuildSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	session.reporter.Header(version)

	targets, err := session.scan()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no scripts found in %s or %s", session.layout.BaseDir, session.layout.ToolsDir)
	}

	session.buildAll(cmd.Context(), targets)
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tc := toolchain.New(cfg.Toolchain)
	if err := tc.Probe(cmd.Context()); err != nil {
		return err
	}

	interp, compiler, err := tc.Versions(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("interpreter: %s (%s)\n", tc.Interpreter, interp)
	fmt.Printf("compiler:    %s %s\n", tc.CompilerModule, compiler)
	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	baseDir, err := cfg.ResolveBaseDir()
	if err != nil {
		return err
	}

	ws := workspace.New(cfg.Layout(baseDir))
	if err := ws.Ensure(); err != nil {
		return err
	}
	ws.Clean()
	fmt.Println("workspace cleaned")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := newBuildSession(ctx, cfg)
	if err != nil {
		return err
	}
	session.reporter.Header(version)

	// Initial full pass; an empty tree is not fatal in watch mode
	targets, err := session.scan()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		session.reporter.NoScripts(session.layout)
	} else {
		session.buildAll(ctx, targets)
	}

	if watchSchedule != "" {
		return watchCron(ctx, session, watchSchedule)
	}
	return watchFs(ctx, session, cfg)
}

// watchFs rebuilds changed scripts as fsnotify reports them
func watchFs(ctx context.Context, session *buildSession, cfg *config.Config) error {
	rebuilds := make(chan []string, 1)
	w, err := watch.New(func(changed []string) {
		select {
		case rebuilds <- changed:
		default:
		}
	}, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
	if err != nil {
		return err
	}
	defer w.Stop()

	for _, root := range []string{session.layout.BaseDir, session.layout.ToolsDir} {
		if err := w.AddRoot(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}
	w.Start(ctx)
	fmt.Printf("watching %s and %s for changes\n", session.layout.BaseDir, session.layout.ToolsDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-rebuilds:
			targets, err := session.scan()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: rescan failed: %v\n", err)
				continue
			}
			matched := matchTargets(targets, changed)
			if len(matched) == 0 {
				continue
			}
			session.buildAll(ctx, matched)
		}
	}
}

// watchCron runs full rebuilds on a cron schedule
func watchCron(ctx context.Context, session *buildSession, expr string) error {
	gate, err := watch.NewScheduleGate(expr)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	fmt.Printf("next scheduled rebuild: %s\n", gate.Next().Format(time.RFC3339))

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if !gate.Due(now) {
				continue
			}
			targets, err := session.scan()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: rescan failed: %v\n", err)
				continue
			}
			if len(targets) == 0 {
				session.reporter.NoScripts(session.layout)
				continue
			}
			session.buildAll(ctx, targets)
			fmt.Printf("next scheduled rebuild: %s\n", gate.Next().Format(time.RFC3339))
		}
	}
}

// matchTargets filters targets down to the changed source files
func matchTargets(targets []discover.Target, changed []string) []discover.Target {
	set := make(map[string]struct{}, len(changed))
	for _, path := range changed {
		set[path] = struct{}{}
	}
	var matched []discover.Target
	for _, t := range targets {
		if _, ok := set[t.SourcePath]; ok {
			matched = append(matched, t)
		}
	}
	return matched
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.New(cfg.General.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		return showRunBuilds(store, args[0])
	}

	runs, err := store.ListRuns(historyRuns)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tFOUND\tBUILT\tSTATUS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Found, r.Built, r.Status)
	}
	return w.Flush()
}

func showRunBuilds(store *history.Store, runID string) error {
	builds, err := store.ListBuilds(runID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCRIPT\tRESULT\tOUTPUT\tSIZE")
	for _, b := range builds {
		result := "ok"
		if !b.Succeeded {
			result = "failed: " + b.Error
		}
		size := "-"
		if b.ArtifactSize > 0 {
			size = humanize.Bytes(uint64(b.ArtifactSize))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.BaseName, result, b.OutputPath, size)
	}
	return w.Flush()
}
