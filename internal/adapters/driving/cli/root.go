// Package cli provides the refsync command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
	"github.com/custodia-labs/refsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Need selects the services a command requires.
type Need int

const (
	NeedSync Need = 1 << iota
	NeedCatalogue
	NeedIdentity
)

// Options are passed to the bootstrap function.
type Options struct {
	ConfigPath string
	DryRun     bool
	Progress   driven.ProgressReporter
	Need       Need
}

// Services are the driving ports the commands use.
type Services struct {
	Sync      driving.SyncOrchestrator
	Catalogue driving.CatalogueService
	Identity  driving.IdentityService

	// MetricsTextfile is where run metrics are written, if set.
	MetricsTextfile string

	// Close releases storage handles.
	Close func() error
}

// BootstrapFunc builds services from configuration.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

// Service instances. Commands bootstrap them lazily; tests assign them.
var (
	bootstrap        BootstrapFunc
	syncOrchestrator driving.SyncOrchestrator
	catalogueService driving.CatalogueService
	identityService  driving.IdentityService
	metricsTextfile  string
)

var rootCmd = &cobra.Command{
	Use:   "refsync",
	Short: "Synchronise IGDB reference data into a local database",
	Long: `refsync pulls reference data from the IGDB game catalogue and upserts
it into a relational table in batches, reporting progress as it goes.

Credentials are read from ~/.refsync/config.toml or REFSYNC_IGDB_CLIENT_ID
and REFSYNC_IGDB_CLIENT_SECRET.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.refsync/config.toml)")
}

// SetBootstrap installs the function used to build services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), renderError(err))
	}
	return err
}

// ensureServices bootstraps the services in need that are not yet set.
// The returned function releases what was opened.
func ensureServices(ctx context.Context, opts Options) (func(), error) {
	missing := Need(0)
	if opts.Need&NeedSync != 0 && syncOrchestrator == nil {
		missing |= NeedSync
	}
	if opts.Need&NeedCatalogue != 0 && catalogueService == nil {
		missing |= NeedCatalogue
	}
	if opts.Need&NeedIdentity != 0 && identityService == nil {
		missing |= NeedIdentity
	}
	if missing == 0 {
		return func() {}, nil
	}
	if bootstrap == nil {
		return nil, errors.New(serviceName(missing) + " service not configured")
	}

	opts.ConfigPath = configPath
	opts.Need = missing
	svc, err := bootstrap(ctx, opts)
	if err != nil {
		return nil, err
	}

	if svc.Sync != nil {
		syncOrchestrator = svc.Sync
	}
	if svc.Catalogue != nil {
		catalogueService = svc.Catalogue
	}
	if svc.Identity != nil {
		identityService = svc.Identity
	}
	metricsTextfile = svc.MetricsTextfile

	return func() {
		if missing&NeedSync != 0 {
			syncOrchestrator = nil
		}
		if missing&NeedCatalogue != 0 {
			catalogueService = nil
		}
		if missing&NeedIdentity != 0 {
			identityService = nil
		}
		if svc.Close != nil {
			if err := svc.Close(); err != nil {
				logger.Warn("close storage: %v", err)
			}
		}
	}, nil
}

func serviceName(n Need) string {
	switch {
	case n&NeedSync != 0:
		return "sync"
	case n&NeedCatalogue != 0:
		return "catalogue"
	default:
		return "identity"
	}
}
