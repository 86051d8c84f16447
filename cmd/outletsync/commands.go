package main

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/outletsync/outletsync/internal/catalog"
	"github.com/outletsync/outletsync/internal/cloud"
	"github.com/outletsync/outletsync/internal/config"
	"github.com/outletsync/outletsync/internal/discovery"
	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/reconcile"
	"github.com/outletsync/outletsync/internal/topology"
)

var (
	scanTimeout int
	refresh     bool
	overHTTP    bool
	endpoint    string
	dispatchURL string
)

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configureCmd)
}

// loadStack builds the shared config/client/catalog trio used by every
// device command. The catalog cache is used when present; --refresh or a
// missing cache triggers a refresh from the cloud.
func loadStack() (*config.Config, *cloud.Client, *catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := applyLogLevel(cfg); err != nil {
		return nil, nil, nil, err
	}
	if cfg.AccessToken == "" {
		return nil, nil, nil, fmt.Errorf("no access token configured; run 'outletsync configure' first")
	}

	client := cloud.NewClient(cfg.APIEndpoint, cfg.AccessToken)
	client.SetTimeout(cfg.Timeout())

	cat := catalog.New()
	path, err := config.GetCatalogPath()
	if err != nil {
		return nil, nil, nil, err
	}

	if !refresh {
		if err := cat.Load(path); err == nil && cat.Len() > 0 {
			return cfg, client, cat, nil
		}
	}

	if err := cat.Refresh(client); err != nil {
		return nil, nil, nil, err
	}
	if err := cat.Save(path); err != nil {
		return nil, nil, nil, err
	}
	return cfg, client, cat, nil
}

// applyLogLevel re-initializes logging when the config file pins a level,
// overriding the environment-driven default set at startup.
func applyLogLevel(cfg *config.Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	return logging.Initialize(cfg.LogLevel)
}

// newEngine wires the reconciliation engine over the configured gateways.
// Commands go over the WebSocket dispatch channel when one is configured,
// unless --http forces the plain HTTP path.
func newEngine(cfg *config.Config, client *cloud.Client, cat *catalog.Catalog) *reconcile.Engine {
	var gateway reconcile.CommandGateway = client
	if cfg.DispatchEndpoint != "" && !overHTTP {
		gateway = cloud.NewDispatch(cfg.DispatchEndpoint, cfg.AccessToken)
	}

	engine := reconcile.New(client, gateway, cat)

	v := cfg.Verification
	if v.MaxRetries > 0 {
		engine.SetVerification(reconcile.VerificationOptions{
			MaxRetries:    v.MaxRetries,
			InitialDelay:  time.Duration(v.InitialDelayMS) * time.Millisecond,
			RetryInterval: time.Duration(v.RetryIntervalMS) * time.Millisecond,
			MaxInterval:   time.Duration(v.MaxIntervalMS) * time.Millisecond,
		})
	}
	return engine
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List known devices",
	Long: `List the devices in the cached catalog.

Use --refresh to fetch the latest device list from the cloud before listing.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh the catalog from the cloud first")
}

func runDevices(cmd *cobra.Command, args []string) error {
	_, _, cat, err := loadStack()
	if err != nil {
		return err
	}

	devices := cat.Devices()
	if len(devices) == 0 {
		fmt.Println("No devices in catalog. Try 'outletsync devices --refresh'.")
		return nil
	}

	fmt.Printf("Known devices (%d):\n\n", len(devices))
	for _, dev := range devices {
		fmt.Printf("  %s  [%s]\n", dev, topology.Resolve(dev))
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <device-id>",
	Short: "Show a device's live state",
	Long:  `Fetch and display the current parameter values for a device.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	_, client, cat, err := loadStack()
	if err != nil {
		return err
	}

	deviceID := args[0]
	dev := cat.Find(deviceID)
	if dev == nil {
		return fmt.Errorf("device %s not found in catalog", deviceID)
	}

	snap, err := client.Snapshot(deviceID)
	if err != nil {
		return fmt.Errorf("failed to read device state: %w", err)
	}

	fmt.Printf("%s\n\n", dev)
	if topology.Resolve(dev) == topology.MultiOutlet {
		for _, outlet := range snap.Outlets {
			fmt.Printf("  outlet %d:\n", outlet.Outlet)
			for k, v := range outlet.Params {
				fmt.Printf("    %s = %v\n", k, v)
			}
		}
		return nil
	}
	for k, v := range snap.Params {
		fmt.Printf("  %s = %v\n", k, v)
	}
	return nil
}

var setCmd = &cobra.Command{
	Use:   "set <device-id> <param=value | outlet:param=value> ...",
	Short: "Reconcile device parameters toward desired values",
	Long: `Set one or more device parameters.

Only parameters whose live value differs from the requested value are
written; the whole batch goes out as a single request and every change is
read back to confirm the device converged.

For multi-outlet devices, prefix each parameter with the outlet index.`,
	Example: `  # Turn a single switch off
  outletsync set 10004b093a switch=off

  # Outlet 2 of a power strip on, outlet 3 off, in one write
  outletsync set 10007f2c11 2:switch=on 3:switch=off`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&overHTTP, "http", false, "Submit over HTTP even when a dispatch endpoint is configured")
	setCmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh the catalog from the cloud first")
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, client, cat, err := loadStack()
	if err != nil {
		return err
	}

	deviceID := args[0]
	changes := make([]reconcile.DesiredChange, 0, len(args)-1)
	for _, arg := range args[1:] {
		ch, err := parseChange(arg)
		if err != nil {
			return err
		}
		changes = append(changes, ch)
	}

	engine := newEngine(cfg, client, cat)
	res := engine.Reconcile(deviceID, changes)

	for _, msg := range res.Messages {
		fmt.Printf("  %s\n", msg)
	}
	fmt.Printf("\nOutcome: %s\n", res.Outcome)

	if !res.Converged() {
		return fmt.Errorf("device did not reach the desired state")
	}
	return nil
}

// parseChange parses "param=value" or "outlet:param=value". Values stay
// strings; the engine's loose comparison handles numeric text.
func parseChange(arg string) (reconcile.DesiredChange, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return reconcile.DesiredChange{}, fmt.Errorf("invalid change %q (expected param=value)", arg)
	}

	if prefix, param, ok := strings.Cut(key, ":"); ok {
		outlet, err := strconv.Atoi(prefix)
		if err != nil || param == "" {
			return reconcile.DesiredChange{}, fmt.Errorf("invalid change %q (expected outlet:param=value)", arg)
		}
		return reconcile.OutletSet(outlet, param, value), nil
	}

	return reconcile.Set(key, value), nil
}

var searchCmd = &cobra.Command{
	Use:   "search <device-id> <key>",
	Short: "Search a device's cached metadata",
	Long: `Search the device's cached metadata tree for a key and print the first
value found. Useful for introspecting vendor fields that have no dedicated
command (firmware version, signal strength, network details).`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, _, cat, err := loadStack()
	if err != nil {
		return err
	}

	deviceID, key := args[0], args[1]
	value, found := cat.SearchParameter(key, deviceID)
	if !found {
		return fmt.Errorf("no %q found in metadata for device %s", key, deviceID)
	}
	fmt.Printf("%s: %v\n", key, value)
	return nil
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan for devices on the local network",
	Long: `Scan for smart switches advertising LAN mode via mDNS.

This is a reachability check only; reconciliation always goes through the
cloud gateways.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for devices (timeout: %ds)...\n\n", scanTimeout)

	devices, err := discovery.ScanForDevices(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nDevices only advertise on the LAN when LAN mode is enabled.")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device)
	}
	return nil
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the application configuration",
	Long: `Write the endpoints and access token to the configuration file.

The access token is prompted without echo and stored with user-only file
permissions. Token acquisition (OAuth2 login) happens outside this tool.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&endpoint, "endpoint", "", "HTTP API base URL")
	configureCmd.Flags().StringVar(&dispatchURL, "dispatch", "", "WebSocket dispatch URL (optional)")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if endpoint != "" {
		cfg.APIEndpoint = endpoint
	}
	if dispatchURL != "" {
		cfg.DispatchEndpoint = dispatchURL
	}

	fmt.Print("Access token: ")
	token, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if len(token) > 0 {
		cfg.AccessToken = string(token)
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	path, _ := config.GetConfigPath()
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}
