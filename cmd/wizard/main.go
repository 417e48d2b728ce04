package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/persistence"
	"social-support-wizard/internal/suggestion"
	"social-support-wizard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errStaleSuggestion = errors.New("suggestion discarded: the form changed while it was being generated")

type options struct {
	configPath string
	resume     bool
	language   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wizard",
		Short:         "Social support application wizard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resumed := a.wizard.Start(cmd.Context())
			p := tea.NewProgram(tui.New(cmd.Context(), a.wizard, resumed), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./configs/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.resume, "resume", false, "resume the saved draft instead of starting over")
	root.PersistentFlags().StringVar(&opts.language, "lang", "", "interface language (en or ar)")

	root.AddCommand(newSuggestCmd(opts), newDraftCmd(opts))
	return root
}

// app loads configuration, applies flag overrides and wires the runtime.
func (o *options) app(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.resume {
		cfg.Form.ResumeDraft = true
	}
	if o.language != "" {
		cfg.Form.Language = string(models.ParseLanguage(o.language))
	}
	return newApp(cmd.Context(), cfg)
}

// draftStore is the persistence backend opened by the draft commands, which need nothing else.
type draftStore struct {
	*persistence.Adapter
	key   string
	zap   *zap.Logger
	close func() error
}

func (o *options) drafts(cmd *cobra.Command) (*draftStore, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	backend, closeBackend, err := persistence.NewBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	return &draftStore{
		Adapter: persistence.NewAdapter(backend, logger.NewZapAdapter(zapLog)),
		key:     cfg.Form.DraftKey,
		zap:     zapLog,
		close:   closeBackend,
	}, nil
}

// Close releases the backend connection and flushes the log.
func (d *draftStore) Close() error {
	err := d.close()
	_ = d.zap.Sync()
	return err
}

func newSuggestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <field>",
		Short: "Print a suggestion for a step-3 field using the saved draft as context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := args[0]
			if !models.IsMultiline(field) {
				return fmt.Errorf("%q is not a free-text field; choose one of %v", field, models.Step3Fields)
			}

			opts.resume = true
			a, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			a.wizard.Start(cmd.Context())

			out, err := a.wizard.RequestSuggestion(cmd.Context(), field)
			if err != nil {
				return err
			}
			return printSuggestion(cmd.OutOrStdout(), out)
		},
	}
}

// printSuggestion writes a successful outcome and turns every other outcome into an error.
func printSuggestion(w io.Writer, out *suggestion.Outcome) error {
	switch {
	case out.Message != "":
		return errors.New(out.Message)
	case out.Stale:
		return errStaleSuggestion
	case out.Suggestion == "":
		return errors.New("no suggestion was produced")
	}
	_, err := fmt.Fprintf(w, "[%s]\n%s\n", out.Provider, out.Suggestion)
	return err
}

func newDraftCmd(opts *options) *cobra.Command {
	draft := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or discard the saved draft",
	}

	draft.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved draft as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := opts.drafts(cmd)
			if err != nil {
				return err
			}
			defer drafts.Close()

			state, ok := drafts.LoadForm(cmd.Context(), drafts.key)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved draft")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	})

	draft.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := opts.drafts(cmd)
			if err != nil {
				return err
			}
			defer drafts.Close()

			drafts.Clear(cmd.Context(), drafts.key)
			fmt.Fprintln(cmd.OutOrStdout(), "draft cleared")
			return nil
		},
	})
	return draft
}
