package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mytimetable-export/internal/calendar"
	"github.com/pfrederiksen/mytimetable-export/internal/config"
	"github.com/pfrederiksen/mytimetable-export/internal/logger"
	"github.com/pfrederiksen/mytimetable-export/internal/scraper"
	"github.com/pfrederiksen/mytimetable-export/internal/session"
	"github.com/pfrederiksen/mytimetable-export/internal/timetable"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// DefaultFilename is used when the user submits an empty output filename.
const DefaultFilename = "mytimetable"

const progressLayout = "Mon 02 Jan 2006"

var (
	flagConfig  string
	flagEnvFile string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mytimetable-export",
		Short: "Export a university timetable to an iCalendar file",
		Long: `Export a university's weekly HTML timetable to an iCalendar (.ics) file.
Fetches one timetable page per week over a date range using a session cookie
and writes one calendar event per activity.`,
		RunE:          runExport,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (optional)")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "Path to the session token env file")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// runExport orchestrates the whole pipeline: session setup, the week loop,
// and final serialization. It is the only layer that turns a failure into
// process termination.
func runExport(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	prompter := NewPrompter(os.Stdin, os.Stdout)
	store := session.NewEnvStore(flagEnvFile)

	token, fromInput, err := resolveSessionToken(prompter, store)
	if err != nil {
		return err
	}
	if fromInput {
		if err := offerToSaveToken(prompter, store, token); err != nil {
			return err
		}
	}

	client := scraper.New(cfg, token)

	// Probe fetch of the current week: an expired or invalid session token
	// must fail here, before any user input is collected or output written.
	probe, err := client.FetchWeek(time.Time{})
	if err != nil {
		return err
	}
	if err := scraper.CheckAuthentication(probe); err != nil {
		return err
	}

	window, err := readWindow(prompter)
	if err != nil {
		return err
	}

	filename, err := prompter.ReadLine(fmt.Sprintf("Please enter a filename for your calendar file (default: '%s'): ", DefaultFilename))
	if err != nil {
		return err
	}
	if filename == "" {
		filename = DefaultFilename
	}

	export := calendar.NewExport()
	walker := timetable.NewWalker(client, export, cfg.RequestInterval(), func(weekStart, weekEnd time.Time) {
		fmt.Fprintf(os.Stdout, "\rProcessing %s to %s...",
			weekStart.Format(progressLayout), weekEnd.Format(progressLayout))
	})

	if err := walker.Walk(window); err != nil {
		fmt.Fprintln(os.Stdout)
		return err
	}
	fmt.Fprintln(os.Stdout)

	path := filename + ".ics"
	if err := export.WriteFile(path); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Calendar exported to '%s' successfully.\n", path)
	logger.Info("export complete", logger.Fields{"events": export.Len(), "file": path})

	return nil
}

// resolveSessionToken returns the session token and whether it came from
// interactive input rather than the store.
func resolveSessionToken(p *Prompter, store session.Store) (string, bool, error) {
	saved, err := store.Load()
	if err != nil {
		return "", false, err
	}

	if saved != "" {
		reuse, err := p.ReadBool("Found your cookie token saved in .env file. Do you wish to use it? (y/n): ")
		if err != nil {
			return "", false, err
		}
		if reuse {
			return saved, false, nil
		}
	}

	token, err := p.ReadSecret("Please input mytimetable_session cookie value: ")
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// offerToSaveToken persists a freshly entered token if the user agrees.
func offerToSaveToken(p *Prompter, store session.Store, token string) error {
	save, err := p.ReadBool("Do you want to save your cookie in .env file? (y/n): ")
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	return store.Save(token)
}

// readWindow collects the inclusive date range for the export.
func readWindow(p *Prompter) (timetable.Window, error) {
	start, err := p.ReadDate("Please enter the start date (YYYY-MM-DD): ")
	if err != nil {
		return timetable.Window{}, err
	}
	end, err := p.ReadDate("Please enter the end date (YYYY-MM-DD): ")
	if err != nil {
		return timetable.Window{}, err
	}
	return timetable.NewWindow(start, end)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
