// Lpac-console manages the eSIM chip of an OpenWrt router running
// luci-app-lpac.
//
// It talks to the luci-app-lpac CGI API over HTTP and offers an interactive
// console plus a scriptable command for every read and action: profiles,
// notifications, downloads, chip information and backend settings.
//
// Usage:
//
//	lpac-console [command] [flags]
//
// Running without arguments launches the interactive console.
// See 'lpac-console --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/lpac-console/internal/config"
	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/logging"
	"github.com/muurk/lpac-console/internal/version"
)

// Environment variables read after .env is loaded
const (
	envRouter  = "LPAC_CONSOLE_ROUTER"
	envSession = "LPAC_CONSOLE_SESSION"
)

// errReported fails a command whose error was already printed
var errReported = errors.New("error already reported")

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lpac-console",
	Short: "eSIM management console for OpenWrt routers",
	Long: `A management console for the eSIM chip of an OpenWrt router running
luci-app-lpac.

Lists, enables, renames and deletes profiles, downloads new ones, handles
pending notifications and edits the lpac backend settings through the
luci-app-lpac CGI API.

If no command is specified, the interactive console will launch automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	routerFlag   string
	apiPath      string
	session      string
	outputFormat string
	logLevel     string
	logFile      string
	postEncoding string
	readTimeout  int
	assumeYes    bool
)

// registry is loaded once by setup for every command
var registry *config.Registry

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// set here: both refer back to rootCmd
	rootCmd.PersistentPreRunE = setup
	rootCmd.RunE = runTUI

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&routerFlag, "router", "r", "", "Router name, address or URL (env "+envRouter+")")
	pf.StringVar(&apiPath, "api-path", "", "Path of the luci-app-lpac API (default "+gateway.DefaultAPIPath+")")
	pf.StringVar(&session, "session", "", "LuCI sysauth session token (env "+envSession+")")
	pf.StringVar(&outputFormat, "format", "", "Output format for reads (detailed, compact, json)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	pf.StringVar(&logFile, "log-file", "", "Write logs to a file instead of stderr")
	pf.StringVar(&postEncoding, "post-encoding", "", "Action body encoding (json or form)")
	pf.IntVar(&readTimeout, "read-timeout", 0, "Timeout for reads in seconds (0 uses the saved preference)")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmations (typed tokens are still required)")

	rootCmd.AddCommand(versionCmd)
}

// setup runs before every command: .env, logging, then the saved registry
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if routerFlag == "" {
		routerFlag = os.Getenv(envRouter)
	}
	if session == "" {
		session = os.Getenv(envSession)
	}

	path := logFile
	if path == "" && isInteractive(cmd) && (logLevel != "" || os.Getenv(logging.LogLevelEnvVar) != "") {
		// the console owns the terminal
		if dir, err := config.GetConfigDir(); err == nil && os.MkdirAll(dir, 0o700) == nil {
			path = filepath.Join(dir, "lpac-console.log")
		}
	}
	if err := logging.Initialize(logLevel, path); err != nil {
		return err
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	registry = reg

	prefs := registry.Preferences
	if outputFormat == "" {
		outputFormat = prefs.Format
	}
	if readTimeout == 0 {
		readTimeout = prefs.ReadTimeout
	}

	logging.Debug("Command starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", version.Version),
		zap.String("router", routerFlag),
	)
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == tuiCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
