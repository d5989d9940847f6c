package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/cal2prompt/internal/calendar"
	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/logging"
	"github.com/teemow/cal2prompt/internal/prompt"
	"github.com/teemow/cal2prompt/internal/server"
)

var (
	configPath string
	debugMode  bool

	sinceFlag     string
	untilFlag     string
	todayFlag     bool
	thisWeekFlag  bool
	thisMonthFlag bool
	nextWeekFlag  bool
)

// rootCmd represents the base command for the cal2prompt application
var rootCmd = &cobra.Command{
	Use:   "cal2prompt",
	Short: "Fetches your schedule and converts it into a single LLM prompt",
	Long: `cal2prompt fetches your schedule (e.g., from Google Calendar) and converts
it into a single LLM prompt.

It can run as:
  - A standalone CLI tool (default): prints the rendered prompt to stdout
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cal2prompt version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the config file (default: $CAL2PROMPT_CONFIG or ~/.config/cal2prompt/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVar(&sinceFlag, "since", "", "Start date (YYYY-MM-DD). Requires --until.")
	rootCmd.Flags().StringVar(&untilFlag, "until", "", "End date (YYYY-MM-DD). Requires --since.")
	rootCmd.Flags().BoolVar(&todayFlag, "today", false, "Fetch events for today only.")
	rootCmd.Flags().BoolVar(&thisWeekFlag, "this-week", false, "Fetch events for the current week (Mon-Sun).")
	rootCmd.Flags().BoolVar(&thisMonthFlag, "this-month", false, "Fetch events for the current month (1st - end).")
	rootCmd.Flags().BoolVar(&nextWeekFlag, "next-week", false, "Fetch events for the upcoming week (Mon-Sun).")
	rootCmd.Flags().BoolP("version", "V", false, "Print version")
	rootCmd.MarkFlagsRequiredTogether("since", "until")

	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfigAndLogger performs the startup shared by CLI and MCP mode. A
// .env in the working directory may carry the OAuth client secrets the
// config references via ${VAR}.
func loadConfigAndLogger() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.Setup(os.Stderr, level)

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	since, until := resolveWindow(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := server.NewServerContext(ctx, cfg, logger)
	defer func() {
		_ = sc.Shutdown()
	}()

	// CLI mode authorizes every configured account up front.
	sources, err := sc.AllSources(ctx)
	if err != nil {
		return err
	}

	days, err := sc.Aggregator().FetchDays(ctx, sources, since, until)
	if err != nil {
		return err
	}

	out, err := prompt.Render(cfg.Template, days)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

// resolveWindow picks the date range for CLI mode: an explicit
// --since/--until pair wins, otherwise the first shortcut flag set, with
// --today as the fallback.
func resolveWindow(cfg *config.Config) (string, string) {
	if sinceFlag != "" && untilFlag != "" {
		return sinceFlag, untilFlag
	}

	shortcut := chooseShortcut(todayFlag, thisWeekFlag, thisMonthFlag, nextWeekFlag)
	w := calendar.NewWindowCalculator(nil, cfg.Location).Resolve(shortcut)
	return w.Since, w.Until
}

func chooseShortcut(today, thisWeek, thisMonth, nextWeek bool) calendar.Shortcut {
	switch {
	case today:
		return calendar.Today
	case thisWeek:
		return calendar.ThisWeek
	case thisMonth:
		return calendar.ThisMonth
	case nextWeek:
		return calendar.NextWeek
	}
	return calendar.Today
}
