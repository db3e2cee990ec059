package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"kiosk-go/internal/app"
	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a KioskApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Run", "Sync").
func newApp(cmd *cobra.Command, operation string) (*app.KioskApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	a, err := app.NewKioskApp(cmd.Context(), cfg, operation, app.Options{Debug: debug})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// stdinIsTerminal reports whether the operator is typing at a terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassphrase prompts for a passphrase without echo on a terminal and
// reads one line from stdin otherwise.
func readPassphrase(prompt string) (string, error) {
	if !stdinIsTerminal() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// parseMonth parses YYYY-MM, defaulting to the month of now when s is empty.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// formatReportRow renders the marked days of a ledger row as "DD IN-OUT" entries.
func formatReportRow(row kiosk.LedgerRow) string {
	var days []string
	for i := range kiosk.LedgerDays {
		in, out := row.In[i], row.Out[i]
		if in == "" && out == "" {
			continue
		}
		if in == "" {
			in = "--:-- --"
		}
		if out == "" {
			out = "--:-- --"
		}
		days = append(days, fmt.Sprintf("%02d %s-%s", i+1, in, out))
	}
	if len(days) == 0 {
		return "(no marks)"
	}
	return strings.Join(days, ", ")
}

var rootCmd = &cobra.Command{
	Use:          "kiosk",
	Short:        "Face recognition attendance kiosk",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		stationID, _ := cmd.Flags().GetString("station")
		if stationID == "" {
			stationID = uuid.New().String()
		}

		// Create config with defaults
		cfg := config.NewConfig(stationID, defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Station ID: %s\n", stationID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Station ID:  %s\n", cfg.StationID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("DB Dir:      %s\n", cfg.DBDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Camera:      %s %s\n", cfg.Camera.Type, cfg.Camera.Device)
		fmt.Printf("Face engine: %s %s\n", cfg.Face.Type, cfg.Face.ServiceURL)
		fmt.Printf("Time source: %s %s (max drift %s)\n", cfg.Time.Type, cfg.Time.Server, cfg.Time.MaxDrift)
		fmt.Printf("Ledger:      %s (direction from %s)\n", cfg.Ledger.Type, cfg.Ledger.DirectionSource)
		if cfg.Metrics.Addr != "" {
			fmt.Printf("Metrics:     %s\n", cfg.Metrics.Addr)
		}
		if cfg.Replication.Enabled {
			fmt.Printf("Replication: %s vault %q, encryption %s\n",
				cfg.Replication.Vault.Type, cfg.Replication.Vault.Name, cfg.Replication.Encryption.Type)
		} else {
			fmt.Printf("Replication: disabled\n")
		}
		return nil
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive kiosk",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Run")
		if err != nil {
			return err
		}
		defer a.Close()

		prompt := ""
		if stdinIsTerminal() {
			prompt = "kiosk> "
		}
		return a.Run(cmd.Context(), os.Stdin, os.Stdout, prompt)
	},
}

// printOutcome turns the popup of a one-shot capture into the exit status.
func printOutcome(msg app.Message) error {
	if !msg.Succeeded() {
		return fmt.Errorf("%s: %s", strings.ToLower(msg.Title), msg.Text)
	}
	return nil
}

// login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Recognize the person at the camera and record attendance",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		a, err := newApp(cmd, "Login")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		msg, err := a.Login(ctx, os.Stdout)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		return printOutcome(msg)
	},
}

// register command
var registerCmd = &cobra.Command{
	Use:   "register NAME",
	Short: "Record an enrollment clip for a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		a, err := newApp(cmd, "Register")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		msg, err := a.Register(ctx, os.Stdout, args[0])
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		return printOutcome(msg)
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the attendance ledger of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		monthFlag, _ := cmd.Flags().GetString("month")

		a, err := newApp(cmd, "Report")
		if err != nil {
			return err
		}
		defer a.Close()

		year, month, err := parseMonth(monthFlag, a.Now())
		if err != nil {
			return err
		}

		rows, err := a.Report(year, month)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Printf("No attendance recorded for %s %d.\n", month, year)
			return nil
		}

		fmt.Printf("Attendance for %s %d:\n\n", month, year)
		for _, row := range rows {
			fmt.Printf("%-20s  %s\n", row.Username, formatReportRow(row))
		}
		return nil
	},
}

// users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Users")
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.Users()
		if err != nil {
			return err
		}

		if len(users) == 0 {
			fmt.Println("No users enrolled.")
			return nil
		}
		for _, u := range users {
			fmt.Println(u)
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replicate staged clips and ledgers to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		statusOnly, _ := cmd.Flags().GetBool("status")

		a, err := newApp(cmd, "Sync")
		if err != nil {
			return err
		}
		defer a.Close()

		if statusOnly {
			count, size, err := a.QueueStatus()
			if err != nil {
				return err
			}
			fmt.Printf("%d artifact(s) staged, %d bytes\n", count, size)
			return nil
		}

		count, err := a.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed after %d artifact(s): %w", count, err)
		}

		fmt.Printf("Replicated %d artifact(s)\n", count)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage replica encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the replica encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		if stdinIsTerminal() {
			confirm, err := readPassphrase("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if confirm != passphrase {
				return fmt.Errorf("passphrases do not match")
			}
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("creating keys: %w", err)
		}
		fmt.Println("Encryption keys created. Keep the passphrase safe: replicas cannot be restored without it.")
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore PATH",
	Short: "Restore a replicated file (path relative to db_dir)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd, "Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		rel := filepath.Clean(args[0])
		if output == "" {
			output = filepath.Base(rel)
		}

		var passphrase string
		if a.EncryptionEnabled() {
			if passphrase, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}

		f, err := os.OpenFile(output, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		if err := a.Restore(rel, passphrase, f); err != nil {
			f.Close()
			os.Remove(output)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}

		fmt.Printf("Restored %s to %s\n", rel, output)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug-level log records")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("station", "", "Station ID (default: a new UUID)")
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().Duration("timeout", 2*time.Minute, "Give up if no face is seen")
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().Duration("timeout", 2*time.Minute, "Give up if the capture does not finish")
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("month", "m", "", "Month to report as YYYY-MM (default: current month)")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("status", false, "Only show what is waiting to be replicated")
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("output", "o", "", "Output file (default: base name of PATH)")
}
