package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/ui"
	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// Action command flags
var (
	dlActivationCode   string
	dlSMDP             string
	dlMatchingID       string
	dlConfirmationCode string
	dlIMEI             string
	dlManual           bool

	notifRemove  bool
	resetConfirm string
)

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(factoryResetCmd)
	rootCmd.AddCommand(settingsCmd)

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesEnableCmd)
	profilesCmd.AddCommand(profilesDisableCmd)
	profilesCmd.AddCommand(profilesRenameCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsProcessCmd)
	notificationsCmd.AddCommand(notificationsRemoveCmd)
	notificationsCmd.AddCommand(notificationsProcessAllCmd)
	notificationsCmd.AddCommand(notificationsRemoveAllCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	df := downloadCmd.Flags()
	df.StringVarP(&dlActivationCode, "activation-code", "a", "", "LPA activation code (LPA:1$smdp$matching-id)")
	df.StringVar(&dlSMDP, "smdp", "", "SM-DP+ address for a manual download (default from settings)")
	df.StringVar(&dlMatchingID, "matching-id", "", "Matching ID for a manual download")
	df.StringVar(&dlConfirmationCode, "confirmation-code", "", "Confirmation code, if the carrier requires one")
	df.StringVar(&dlIMEI, "imei", "", "IMEI to report to the SM-DP+ server")
	df.BoolVar(&dlManual, "manual", false, "Download by SM-DP+ address and matching ID instead of an activation code")

	notificationsProcessCmd.Flags().BoolVar(&notifRemove, "remove", true, "Remove the notification after processing")
	factoryResetCmd.Flags().StringVar(&resetConfirm, "confirm", "", "Confirmation token (must be exactly "+workflow.FactoryResetToken+")")
}

// actionRun is one loaded view an action is started from
type actionRun struct {
	client  *gateway.Client
	loader  *loader.Loader
	snap    *loader.Snapshot
	printer *ui.Printer
	format  ui.Format
	ctx     context.Context
	stop    context.CancelFunc

	// show is printed after a success that reloads
	show loader.View
}

// openView loads v for an action. An unavailable or failed view is printed
// and reported, so no action is ever offered for it.
func openView(cmd *cobra.Command, v loader.View, title string) (*actionRun, error) {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	client, router, err := newClient()
	if err != nil {
		return nil, err
	}

	ctx, stop := commandContext(cmd)
	a := &actionRun{
		client:  client,
		loader:  loader.New(client),
		printer: newPrinter(),
		format:  format,
		ctx:     ctx,
		stop:    stop,
		show:    v,
	}
	a.printer.PrintHeader(title, cmd.CommandPath(), routerDetail(client))

	a.snap = a.loader.Load(ctx, v)
	rememberContact(router, a.snap)

	switch sel := view.SelectBranch(a.snap); sel.Branch {
	case view.BranchUnavailable, view.BranchError:
		a.printer.PrintResult(ui.NewSelectionResult(sel))
		stop()
		return nil, errReported
	}
	return a, nil
}

func (a *actionRun) close() {
	a.stop()
}

func (a *actionRun) feedback() *ui.TerminalFeedback {
	fb := ui.NewTerminalFeedback(os.Stdin, os.Stdout)
	fb.AssumeYes = assumeYes
	return fb
}

// offers reports whether action is among controls
func offers(controls []view.Control, action view.Action) bool {
	return slices.ContainsFunc(controls, func(c view.Control) bool {
		return c.Action == action
	})
}

// run drives op to completion and prints the outcome. A declined
// confirmation is not a failure.
func (a *actionRun) run(op workflow.Operation, fb *ui.TerminalFeedback) error {
	var r workflow.Reloader
	if a.show.Name == a.snap.View.Name {
		r = a.loader
	}

	out := workflow.NewController(a.client).Run(a.ctx, op, fb, r)
	a.printer.PrintOutcome(out)

	switch {
	case out.Cancelled:
		return nil
	case !out.Succeeded():
		return errReported
	}

	if !out.Reload {
		return nil
	}
	snap := a.loader.Current()
	if r == nil {
		snap = a.loader.Load(a.ctx, a.show)
	}
	if snap != nil && a.format == ui.FormatDetailed {
		return a.printer.PrintSnapshot(snap, a.format)
	}
	return nil
}

// notify reports a problem found before anything was sent
func (a *actionRun) notify(level workflow.Level, err error) error {
	ui.NewTerminalFeedback(os.Stdin, os.Stdout).Notify(level, gateway.ShortMessage(err))
	if level == workflow.LevelInfo {
		return nil
	}
	return errReported
}

// profilesCmd lists and manages installed profiles
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and manage installed profiles",
	Long: `List the profiles installed on the eUICC, or enable, disable, rename
and delete one of them by ICCID.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, loader.Profiles)
	},
}

var profilesListCmd = readCommand(loader.Profiles, "list", "List installed profiles",
	`List every profile on the eUICC with its ICCID, state and provider.`)

// findProfile returns the index of the profile with iccid in a.snap
func (a *actionRun) findProfile(iccid string) (int, gateway.Profile, error) {
	profiles, _ := a.snap.Profiles()
	for i, p := range profiles {
		if p.ICCID == iccid {
			return i, p, nil
		}
	}
	return -1, gateway.Profile{}, fmt.Errorf("no profile with ICCID %s", iccid)
}

// profileCommand builds a command acting on one profile by ICCID
func profileCommand(use, short string, action view.Action, build func(gateway.Profile) workflow.Operation, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			iccid := strings.TrimSpace(args[0])
			if err := gateway.ValidateICCID(iccid); err != nil {
				return errors.New(gateway.ShortMessage(err))
			}

			a, err := openView(cmd, loader.Profiles, short)
			if err != nil {
				return err
			}
			defer a.close()

			idx, p, err := a.findProfile(iccid)
			if err != nil {
				return err
			}
			if !offers(view.ItemActions(a.snap, idx), action) {
				return fmt.Errorf("cannot %s profile %s: it is %s", action, iccid, p.State)
			}

			fb := a.feedback()
			if len(args) > 1 {
				fb.PresetText(args[1])
			}
			return a.run(build(p), fb)
		},
	}
}

var profilesEnableCmd = profileCommand("enable <iccid>", "Enable a profile",
	view.ActionEnable, workflow.EnableProfile, cobra.ExactArgs(1))

var profilesDisableCmd = profileCommand("disable <iccid>", "Disable a profile",
	view.ActionDisable, workflow.DisableProfile, cobra.ExactArgs(1))

var profilesRenameCmd = profileCommand("rename <iccid> [nickname]", "Set the nickname of a profile",
	view.ActionRename, workflow.RenameProfile, cobra.RangeArgs(1, 2))

var profilesDeleteCmd = profileCommand("delete <iccid>", "Permanently delete a profile",
	view.ActionDelete, workflow.DeleteProfile, cobra.ExactArgs(1))

// downloadCmd installs a new profile
var downloadCmd = &cobra.Command{
	Use:   "download [activation-code]",
	Short: "Download a new profile",
	Long: `Download and install a new profile on the eUICC.

Give either an LPA activation code or, with --manual, the SM-DP+ address
and matching ID separately. A manual download without --smdp uses the
default SM-DP+ server from the backend settings.`,
	Example: `  # Download from an activation code (QR code contents)
  lpac-console download 'LPA:1$smdp.example.com$MATCHING-ID'

  # Manual download
  lpac-console download --manual --smdp smdp.example.com --matching-id MATCHING-ID`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := openView(cmd, loader.Download, "Download Profile")
	if err != nil {
		return err
	}
	defer a.close()
	a.show = loader.Profiles

	req := gateway.DownloadRequest{
		ActivationCode:   dlActivationCode,
		SMDP:             dlSMDP,
		MatchingID:       dlMatchingID,
		ConfirmationCode: dlConfirmationCode,
		IMEI:             dlIMEI,
	}
	if len(args) == 1 && req.ActivationCode == "" {
		req.ActivationCode = args[0]
	}
	if dlManual || (req.ActivationCode == "" && req.SMDP != "") {
		req.Mode = gateway.DownloadManual
	}
	if req.Manual() && strings.TrimSpace(req.SMDP) == "" {
		settings, _ := a.snap.Settings()
		req.SMDP = settings[gateway.SettingDefaultSMDP]
	}

	op, err := workflow.DownloadProfile(req)
	if err != nil {
		return a.notify(workflow.LevelError, err)
	}
	return a.run(op, a.feedback())
}

// notificationsCmd lists and handles pending notifications
var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List and handle pending notifications",
	Long: `List the notifications pending on the eUICC, process them with their
SM-DP+ servers or remove them without processing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, loader.Notifications)
	},
}

var notificationsListCmd = readCommand(loader.Notifications, "list", "List pending notifications",
	`List every pending notification with its sequence number, operation and
SM-DP+ address.`)

// findNotification returns the index of the notification with seq in a.snap
func (a *actionRun) findNotification(seq int) (int, gateway.Notification, error) {
	notes, _ := a.snap.Notifications()
	for i, n := range notes {
		if n.SeqNumber == seq {
			return i, n, nil
		}
	}
	return -1, gateway.Notification{}, fmt.Errorf("no notification with sequence number %d", seq)
}

// notificationCommand builds a command acting on one notification
func notificationCommand(use, short string, action view.Action, build func(gateway.Notification) workflow.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid sequence number %q", args[0])
			}

			a, err := openView(cmd, loader.Notifications, short)
			if err != nil {
				return err
			}
			defer a.close()

			idx, n, err := a.findNotification(seq)
			if err != nil {
				return err
			}
			if !offers(view.ItemActions(a.snap, idx), action) {
				return fmt.Errorf("cannot %s notification %d", action, seq)
			}

			fb := a.feedback()
			if f := cmd.Flags().Lookup("remove"); f != nil && f.Changed {
				fb.PresetOption(notifRemove)
			}
			return a.run(build(n), fb)
		},
	}
}

var notificationsProcessCmd = notificationCommand("process <seq>", "Process a notification",
	view.ActionProcess, func(n gateway.Notification) workflow.Operation {
		return workflow.ProcessNotification(n, notifRemove)
	})

var notificationsRemoveCmd = notificationCommand("remove <seq>", "Remove a notification without processing",
	view.ActionRemove, workflow.RemoveNotification)

// bulkCommand builds a command acting on every pending notification
func bulkCommand(use, short string, build func(count int) (workflow.Operation, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openView(cmd, loader.Notifications, short)
			if err != nil {
				return err
			}
			defer a.close()

			notes, _ := a.snap.Notifications()
			op, err := build(len(notes))
			if errors.Is(err, workflow.ErrNothingPending) {
				return a.notify(workflow.LevelInfo, err)
			}
			if err != nil {
				return err
			}
			return a.run(op, a.feedback())
		},
	}
}

var notificationsProcessAllCmd = bulkCommand("process-all", "Process every pending notification",
	workflow.ProcessAllNotifications)

var notificationsRemoveAllCmd = bulkCommand("remove-all", "Remove every pending notification",
	workflow.RemoveAllNotifications)

// discoverCmd queries the SM-DS server
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover profiles waiting on the SM-DS server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openView(cmd, loader.Settings, "Discover Profiles")
		if err != nil {
			return err
		}
		defer a.close()
		return a.run(workflow.DiscoverProfiles(), a.feedback())
	},
}

// factoryResetCmd wipes the chip
var factoryResetCmd = &cobra.Command{
	Use:   "factory-reset",
	Short: "Delete every profile and reset the eUICC",
	Long: `Delete every profile and reset the eUICC to its factory state.

The confirmation token RESET must be typed at the prompt or passed with
--confirm. --yes never answers it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openView(cmd, loader.Settings, "Factory Reset eUICC")
		if err != nil {
			return err
		}
		defer a.close()
		a.show = loader.Profiles

		fb := a.feedback()
		if cmd.Flags().Changed("confirm") {
			fb.PresetText(resetConfirm)
		}
		return a.run(workflow.FactoryReset(), fb)
	},
}

// settingsCmd shows and edits the backend configuration
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the lpac backend settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, loader.Settings)
	},
}

var settingsShowCmd = readCommand(loader.Settings, "show", "Show the backend settings",
	`Show the APDU and HTTP drivers and the default SM-DP+ server configured
for lpac on the router.`)

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change backend settings",
	Long: `Change one or more backend settings. The remaining settings are sent
unchanged, since the backend only accepts the configuration as a whole.`,
	Example: `  lpac-console settings set apdu_driver=pcsc
  lpac-console settings set default_smdp=smdp.example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSettingsSet,
}

// applySettings merges key=value assignments into a copy of current
func applySettings(current gateway.Settings, assignments []string, apduDrivers []string) (gateway.Settings, error) {
	draft := current.Clone()
	for _, kv := range assignments {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected key=value", kv)
		}
		draft[key] = strings.TrimSpace(value)
	}

	if smdp := draft[gateway.SettingDefaultSMDP]; smdp != "" {
		if err := gateway.ValidateSMDP(smdp); err != nil {
			return nil, errors.New(gateway.ShortMessage(err))
		}
	}
	driver := draft[gateway.SettingAPDUDriver]
	if options := view.DriverOptions(apduDrivers, current[gateway.SettingAPDUDriver]); !slices.Contains(options, driver) {
		return nil, fmt.Errorf("unknown APDU driver %q (available: %s)", driver, strings.Join(options, ", "))
	}
	return draft, nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := openView(cmd, loader.Settings, "Save Settings")
	if err != nil {
		return err
	}
	defer a.close()

	current, _ := a.snap.Settings()
	draft, err := applySettings(current, args, a.snap.APDUDrivers())
	if err != nil {
		return err
	}
	if !offers(view.Actions(a.snap), view.ActionSaveSettings) {
		return errors.New("settings cannot be saved for this router")
	}
	return a.run(workflow.SaveSettings(draft), a.feedback())
}
