package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/hamed0406/ruok/internal/config"
	"github.com/hamed0406/ruok/internal/domain"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <monitor.yaml>",
		Short: "Check a monitor file and the environment without probing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reg, err := config.Load(args[0])
			if err != nil {
				for _, e := range multierr.Errors(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "✖", e)
				}
				return fmt.Errorf("%s is invalid", args[0])
			}
			printSummary(out, reg)
			preflight(out, config.FromEnv())
			return nil
		},
	}
}

func printSummary(w io.Writer, reg domain.Registry) {
	fmt.Fprintf(w, "✔ %d service(s), %d notification channel(s)\n", len(reg.Services), len(reg.Channels))
	for _, name := range reg.Services.Names() {
		s := reg.Services[name]
		fmt.Fprintf(w, "  %s every %s -> %s [%s]\n", name, s.Interval, s.URL, strings.Join(s.Notifications, ", "))
	}
}

func preflight(w io.Writer, cfg config.Config) {
	warn := func(msg string) { fmt.Fprintln(w, "⚠", msg) }
	if !cfg.APIEnabled() {
		fmt.Fprintln(w, "✔ status API disabled")
		return
	}
	fmt.Fprintln(w, "✔ status API on", cfg.Addr)
	if len(cfg.PublicAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; /api routes are open.")
	}
	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS is empty; any origin may read the status API.")
	}
}
