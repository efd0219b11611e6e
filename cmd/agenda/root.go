package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agenda/internal/agenda"
	"agenda/internal/auth"
	"agenda/internal/config"
	"agenda/internal/session"
	"agenda/internal/storage"
	"agenda/internal/ui"
)

type rootOptions struct {
	configPath string
	verbose    bool
	user       string
}

// app holds the services shared by every command. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	auth     *auth.Service
	agenda   *agenda.Service
	sessions *session.Manager

	in      *bufio.Reader
	closers []func() error
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRootCmd() (*cobra.Command, *app) {
	var opts rootOptions
	a := &app{}

	root := &cobra.Command{
		Use:   "agenda",
		Short: "Personal notes and tasks with due-date reminders",
		Long: `Agenda keeps notes and dated tasks per user account and reminds you of
tasks due tomorrow while you are logged in.

Run without a subcommand to open the interactive interface.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default "+config.ResolveConfigPath()+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "Account used by non-interactive commands")

	root.AddCommand(
		newRegisterCmd(a),
		newNoteCmd(a, &opts),
		newTaskCmd(a, &opts),
		newRemindCmd(a, &opts),
		newExportCmd(a, &opts),
	)
	return root, a
}

func (a *app) open(cmd *cobra.Command, opts rootOptions) error {
	path := opts.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	// The interactive interface owns the terminal, so its logs go to a file.
	interactive := !cmd.HasParent()
	logger, err := a.newLogger(cmd.ErrOrStderr(), opts.verbose, interactive)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.StoreOptions(logger))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	interval, err := cfg.ReminderInterval()
	if err != nil {
		return err
	}
	a.auth = auth.NewService(store.Users(), auth.WithLogger(logger))
	a.agenda = agenda.NewService(store, logger)
	a.sessions = session.NewManager(a.auth, a.agenda.TaskLister(),
		session.WithInterval(interval),
		session.WithLogger(logger),
	)
	a.in = bufio.NewReader(cmd.InOrStdin())
	logger.Debug("opened", "config", path, "backend", cfg.Backend)
	return nil
}

func (a *app) newLogger(stderr io.Writer, verbose, interactive bool) (*slog.Logger, error) {
	level, err := config.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	w := stderr
	file := a.cfg.LogFile
	if file == "" && interactive {
		file = filepath.Join(a.cfg.StoreOptions(nil).DataDir, "agenda.log")
	}
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		w = f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) runUI(ctx context.Context) error {
	changes, err := a.store.Watch(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrWatchUnsupported) {
			return err
		}
		a.logger.Debug("live reload disabled", "backend", a.cfg.Backend)
	}
	return ui.Run(ctx, ui.Deps{
		Config:   a.cfg,
		Auth:     a.auth,
		Sessions: a.sessions,
		Agenda:   a.agenda,
		Changes:  changes,
		Logger:   a.logger,
	})
}
