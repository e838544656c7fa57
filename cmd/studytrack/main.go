package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/studytrack/internal/api"
	"github.com/pbaille/studytrack/internal/catalog"
	"github.com/pbaille/studytrack/internal/config"
	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/logger"
	"github.com/pbaille/studytrack/internal/store"
	"github.com/pbaille/studytrack/internal/tracker"
	"github.com/pbaille/studytrack/internal/tui"
)

var (
	configPath string
	dbPath     string
	pagePath   string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "studytrack",
		Short:        "Track reviewed and studied topics per subject",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	root.PersistentFlags().StringVar(&pagePath, "page", "", "study page (file or URL) listing default subjects")

	root.AddCommand(statusCmd())
	root.AddCommand(checkCmd(true))
	root.AddCommand(checkCmd(false))
	root.AddCommand(dateCmd())
	root.AddCommand(addCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(reconcileCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(tuiCmd())

	return root
}

// session is an opened tracker plus what must be released afterwards
type session struct {
	ctrl  *tracker.Controller
	cfg   *config.Config
	log   *logger.Logger
	close func()
}

func openSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = dbPath
	}
	if pagePath != "" {
		cfg.Catalog.Page = pagePath
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	subjects := cfg.Subjects
	if cfg.Catalog.Page != "" {
		subjects, err = catalog.Load(cfg.Catalog.Page)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	if len(subjects) == 0 {
		return nil, errors.New("no subjects configured: set subjects in the config file or pass --page")
	}

	ks, closeStore, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return &session{
		ctrl: tracker.NewController(ks, subjects, log.With("component", "tracker")),
		cfg:  cfg,
		log:  log,
		close: func() {
			closeStore()
			log.Sync()
		},
	}, nil
}

func openStore(cfg *config.Config, log *logger.Logger) (store.KeyStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemory(), func() {}, nil
	case config.BackendRedis:
		r, err := store.NewRedis(cfg.Store.RedisAddr, cfg.Store.RedisPrefix, log)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	default:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
		s, err := store.NewSQLite(cfg.Store.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [subject]",
		Short: "Show topics and progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				st, err := s.ctrl.Subject(args[0])
				if err != nil {
					return err
				}
				printSubject(out, st.View())
				return nil
			}

			board := s.ctrl.Board()
			for _, sv := range board.Subjects {
				printSubject(out, sv)
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Overall  %s\n", bar(board.Global))
			return nil
		},
	}
}

func checkCmd(on bool) *cobra.Command {
	use, short := "check", "Mark a topic reviewed or studied"
	if !on {
		use, short = "uncheck", "Clear a topic's reviewed or studied mark"
	}

	return &cobra.Command{
		Use:   use + " [subject] [topic] [reviewed|studied]",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := tracker.ParseField(args[2])
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			var u domain.Update
			switch field {
			case domain.FieldReviewed:
				u, err = s.ctrl.SetReviewed(args[0], args[1], on)
			case domain.FieldStudied:
				u, err = s.ctrl.SetStudied(args[0], args[1], on)
			default:
				return fmt.Errorf("use the date command for %q", args[2])
			}
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func dateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date [subject] [topic] [YYYY-MM-DD]",
		Short: "Set a topic's review date (omit the date to clear it)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 3 {
				date = strings.TrimSpace(args[2])
			}
			if err := tracker.ValidDate(date); err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.ctrl.SetDate(args[0], args[1], date)
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [subject] [topic...]",
		Short: "Add a topic to a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args[1:], " ")

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.ctrl.Add(args[0], topic)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", strings.TrimSpace(topic), args[0])
			printUpdate(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [subject] [topic]",
		Short: "Remove a topic and its stored state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.ctrl.Remove(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[1], args[0])
			printUpdate(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [subject]",
		Short: "Re-apply stored topic lists and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			subjects := s.ctrl.Subjects()
			if len(args) == 1 {
				subjects = args
			}
			for _, name := range subjects {
				u, err := s.ctrl.Reconcile(name)
				if err != nil {
					return err
				}
				printSubject(cmd.OutOrStdout(), u.Subject)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			return api.New(s.ctrl, addr, s.log).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and check off topics in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			return tui.Run(s.ctrl)
		},
	}
}

func printSubject(w io.Writer, sv domain.SubjectView) {
	fmt.Fprintf(w, "%s  %s\n", sv.Name, bar(sv.Progress))
	for _, t := range sv.Topics {
		fmt.Fprintf(w, "  %s %s  %s", mark(t.Reviewed), mark(t.Studied), t.Name)
		if t.Date != "" {
			fmt.Fprintf(w, "  (%s)", t.Date)
		}
		fmt.Fprintln(w)
	}
}

func printUpdate(w io.Writer, u domain.Update) {
	fmt.Fprintf(w, "%s  %s\n", u.Subject.Name, bar(u.Subject.Progress))
	fmt.Fprintf(w, "Overall  %s\n", bar(u.Global))
}

func mark(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// bar renders progress as a 20-cell text bar
func bar(p domain.Progress) string {
	filled := p.Pct / 5
	return fmt.Sprintf("%s%s %3d%% (%d/%d)",
		strings.Repeat("#", filled), strings.Repeat("-", 20-filled), p.Pct, p.Done, p.Total)
}
