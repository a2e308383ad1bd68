package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/lpac-console/internal/config"
	"github.com/muurk/lpac-console/internal/discovery"
	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/logging"
	"github.com/muurk/lpac-console/internal/tui"
	"github.com/muurk/lpac-console/internal/ui"
	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// scan probes at most this many routers at once
const probeConcurrency = 4

// Read and discovery command flags
var (
	scanTimeout int
	scanAll     bool
	scanSave    bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chipCmd)
	rootCmd.AddCommand(aboutCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(routersCmd)
	rootCmd.AddCommand(tuiCmd)

	routersCmd.AddCommand(routersListCmd)
	routersCmd.AddCommand(routersAddCmd)
	routersCmd.AddCommand(routersRemoveCmd)
	routersCmd.AddCommand(routersDefaultCmd)
}

// commandContext is cancelled by Ctrl+C. Actions have no timeout of their
// own, so this is the only way to stop waiting for one.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// clientFor builds a gateway client for a saved or ad-hoc router. Flags
// override what the registry remembers.
func clientFor(r *config.Router) (*gateway.Client, error) {
	client := gateway.NewClient(r.Address)

	path := apiPath
	if path == "" {
		path = r.APIPath
	}
	client.SetAPIPath(path)

	encoding := postEncoding
	if encoding == "" {
		encoding = r.PostEncoding
	}
	enc, err := gateway.ParsePostEncoding(encoding)
	if err != nil {
		return nil, err
	}
	client.SetEncoding(enc)
	client.SetSession(session)
	if readTimeout > 0 {
		client.SetReadTimeout(time.Duration(readTimeout) * time.Second)
	}
	return client, nil
}

// newClient resolves --router against the registry
func newClient() (*gateway.Client, *config.Router, error) {
	r := registry.Resolve(routerFlag)
	if r == nil {
		return nil, nil, fmt.Errorf("no router specified. Use --router, set %s or save one with 'lpac-console routers add'", envRouter)
	}
	client, err := clientFor(r)
	if err != nil {
		return nil, nil, err
	}
	return client, r, nil
}

// savedRouter reports whether r is an entry of the registry
func savedRouter(r *config.Router) bool {
	for _, saved := range registry.Routers {
		if saved == r {
			return true
		}
	}
	return false
}

// routerForAddress returns the saved router with address, or an ad-hoc one
func routerForAddress(address string) *config.Router {
	for _, name := range registry.Names() {
		if r := registry.GetRouter(name); r.Address == address {
			return r
		}
	}
	return &config.Router{Address: address}
}

// rememberContact records a successful check_lpac against a saved router
func rememberContact(r *config.Router, snap *loader.Snapshot) {
	status, err := snap.Lpac()
	if err != nil || !bool(status.Installed) || !savedRouter(r) {
		return
	}
	registry.MarkSeen(r.Address, string(status.Version))
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save router registry", zap.Error(err))
	}
}

func newPrinter() *ui.Printer {
	return ui.NewPrinter(os.Stdout)
}

func routerDetail(client *gateway.Client) workflow.Detail {
	return workflow.Detail{Label: "Router", Value: client.BaseURL}
}

// readCommand builds a command that loads v and prints it
func readCommand(v loader.View, use, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, v)
		},
	}
}

func runRead(cmd *cobra.Command, v loader.View) error {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	client, router, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	p := newPrinter()
	if format == ui.FormatDetailed {
		p.PrintHeader(v.Title, cmd.CommandPath(), routerDetail(client))
	}

	snap := loader.New(client).Load(ctx, v)
	if err := p.PrintSnapshot(snap, format); err != nil {
		return err
	}
	rememberContact(router, snap)

	switch view.SelectBranch(snap).Branch {
	case view.BranchUnavailable, view.BranchError:
		return errReported
	}
	return nil
}

var statusCmd = readCommand(loader.Dashboard, "status", "Show the eSIM dashboard",
	`Show the chip status, EID, profile counts, pending notifications and
free memory of the eUICC.`)

var chipCmd = readCommand(loader.Chip, "chip", "Show chip information",
	`Show the EID, platform and EUICCInfo2 details of the eUICC.`)

var aboutCmd = readCommand(loader.About, "about", "Show backend versions",
	`Show the versions of luci-app-lpac, lpac, OpenWrt and LuCI on the router.
This works even when lpac is not installed.`)

// scanCmd discovers routers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for OpenWrt routers on the network",
	Long: `Scan for OpenWrt routers using mDNS/DNS-SD discovery.

Every router found is probed with check_lpac to see whether luci-app-lpac
answers and lpac is installed.`,
	Example: `  # Scan with the saved timeout (5 seconds by default)
  lpac-console scan

  # Longer scan listing every HTTP service, not only LuCI
  lpac-console scan --timeout 15 --all

  # Remember every router that has lpac installed
  lpac-console scan --save`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (0 uses the saved preference)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "List every HTTP service, not only likely LuCI routers")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Save routers with lpac installed to the registry")
}

// probeResult is the check_lpac answer of one discovered router
type probeResult struct {
	router *discovery.Router
	status gateway.LpacStatus
	err    error
}

func newScanner() *discovery.Scanner {
	s := discovery.NewScanner()
	timeout := scanTimeout
	if timeout <= 0 {
		timeout = registry.Preferences.ScanTimeout
	}
	if timeout > 0 {
		s.Timeout = time.Duration(timeout) * time.Second
	}
	s.LuCIOnly = !scanAll
	return s
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	scanner := newScanner()
	fmt.Printf("Scanning for OpenWrt routers (timeout: %s)...\n\n", scanner.Timeout)

	routers, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(routers) == 0 {
		fmt.Println("No routers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the router advertises its web interface over mDNS (umdns)")
		fmt.Println("  - Check that this computer is on the same network segment")
		fmt.Println("  - Try --all to list every HTTP service, or increase --timeout")
		fmt.Println("  - Use --router to specify the address manually if discovery fails")
		return nil
	}

	results := probeRouters(ctx, routers)

	fmt.Printf("Found %d router(s):\n\n", len(results))
	for i, res := range results {
		r := res.router
		fmt.Printf("%d. %s\n", i+1, r.Instance)
		fmt.Printf("   Address:  %s\n", r.BaseURL())
		if r.Hostname != "" {
			fmt.Printf("   Hostname: %s\n", r.Hostname)
		}
		switch {
		case res.err != nil:
			fmt.Printf("   lpac:     %s\n", gateway.ShortMessage(res.err))
		case !bool(res.status.Installed):
			fmt.Printf("   lpac:     not installed\n")
		default:
			fmt.Printf("   lpac:     installed %s\n", res.status.Version)
		}
		fmt.Println()
	}

	if scanSave {
		saved, err := saveProbed(results)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d router(s)\n", saved)
	}

	fmt.Println("Use 'lpac-console --router <address>' to manage a router")
	return nil
}

// probeRouters asks every router for check_lpac concurrently
func probeRouters(ctx context.Context, routers []*discovery.Router) []probeResult {
	results := make([]probeResult, len(routers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, r := range routers {
		i, r := i, r
		results[i].router = r
		g.Go(func() error {
			client, err := clientFor(&config.Router{Address: r.BaseURL()})
			if err != nil {
				results[i].err = err
				return nil
			}
			env, err := client.Get(gctx, gateway.EndpointCheckLpac)
			if err == nil {
				err = env.DecodeData(&results[i].status)
			}
			results[i].err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func saveProbed(results []probeResult) (int, error) {
	saved := 0
	for _, res := range results {
		if res.err != nil || !bool(res.status.Installed) {
			continue
		}
		name := res.router.Instance
		if name == "" {
			name = res.router.Hostname
		}
		if _, err := registry.AddRouter(name, res.router.BaseURL()); err != nil {
			return saved, err
		}
		registry.MarkSeen(res.router.BaseURL(), string(res.status.Version))
		saved++
	}
	if saved == 0 {
		return 0, nil
	}
	if err := registry.Save(); err != nil {
		return 0, fmt.Errorf("failed to save routers: %w", err)
	}
	return saved, nil
}

// routersCmd manages the saved router registry
var routersCmd = &cobra.Command{
	Use:   "routers",
	Short: "Manage saved routers",
	Long: `Manage the routers remembered in the configuration file.

A saved router can be selected by name with --router. The default router
is used when --router is not given.`,
	Args: cobra.NoArgs,
	RunE: runRoutersList,
}

var routersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved routers",
	Args:  cobra.NoArgs,
	RunE:  runRoutersList,
}

func runRoutersList(cmd *cobra.Command, args []string) error {
	names := registry.Names()
	if len(names) == 0 {
		fmt.Println("No saved routers. Use 'lpac-console routers add <name> <address>' or 'lpac-console scan --save'.")
		return nil
	}

	for _, name := range names {
		r := registry.GetRouter(name)
		marker := " "
		if name == registry.Default {
			marker = "*"
		}
		fmt.Printf("%s %-16s %s\n", marker, name, r.Address)
		if r.LpacVersion != "" || !r.LastSeen.IsZero() {
			fmt.Printf("  %-16s lpac %s, last seen %s\n", "",
				view.OrDefault(r.LpacVersion, "unknown"), r.LastSeen.Format(time.DateTime))
		}
	}
	return nil
}

var routersAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Save a router",
	Example: `  lpac-console routers add home 192.168.1.1
  lpac-console routers add lab https://10.0.0.1 --api-path /cgi-bin/luci/admin/network/lpac/api`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := registry.AddRouter(args[0], args[1])
		if err != nil {
			return err
		}
		if apiPath != "" {
			r.APIPath = apiPath
		}
		if postEncoding != "" {
			enc, err := gateway.ParsePostEncoding(postEncoding)
			if err != nil {
				return err
			}
			r.PostEncoding = string(enc)
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save router: %w", err)
		}
		fmt.Printf("✓ Saved router %q (%s)\n", args[0], r.Address)
		return nil
	},
}

var routersRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a saved router",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := registry.RemoveRouter(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("✓ Removed router %q\n", args[0])
		return nil
	},
}

var routersDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Use a saved router when --router is not given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := registry.SetDefault(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("✓ Default router is now %q\n", args[0])
		return nil
	},
}

// tuiCmd launches the interactive console
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive console",
	Long: `Launch the interactive console.

With a router (from --router, the environment or the default saved router)
the console opens straight on the dashboard. Otherwise it starts on the
router picker, which lists saved routers and scans the network.`,
	Example: `  # Launch with the default router
  lpac-console
  # Or explicitly:
  lpac-console tui --router 192.168.1.1

  # Start on the profiles view
  lpac-console tui --view profiles`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var startView string

func init() {
	tuiCmd.Flags().StringVar(&startView, "view", loader.Dashboard.Name, "View to open first")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if _, ok := loader.ViewByName(startView); !ok && startView != "" {
		return fmt.Errorf("unknown view %q", startView)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	opts := tui.Options{
		StartView: startView,
		Context:   ctx,
		Connect: func(address string) tui.Backend {
			r := routerForAddress(address)
			client, err := clientFor(r)
			if err != nil {
				// only a bad saved encoding gets here; fall back to JSON
				logging.Warn("Invalid router settings", zap.String("address", address), zap.Error(err))
				client = gateway.NewClient(r.Address)
				client.SetSession(session)
			}
			return client
		},
		Scan: func(ctx context.Context) ([]*discovery.Router, error) {
			return newScanner().Scan(ctx)
		},
	}

	for _, name := range registry.Names() {
		opts.Saved = append(opts.Saved, tui.SavedRouter{Name: name, Address: registry.GetRouter(name).Address})
	}

	if r := registry.Resolve(routerFlag); r != nil {
		client, err := clientFor(r)
		if err != nil {
			return err
		}
		opts.Backend = client
		opts.Router = view.OrDefault(routerFlag, registry.Default)
	}

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}
