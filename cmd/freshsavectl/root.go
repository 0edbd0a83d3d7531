package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freshsave/internal/bootstrap"
	"freshsave/internal/config"
	"freshsave/internal/domain/inventory"
	"freshsave/pkg/logger"
)

var (
	configPath   string
	driverFlag   string
	badgerPath   string
	collectionID string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "freshsavectl",
	Short:         "freshsavectl manages a FreshSave inventory store",
	Long:          "freshsavectl seeds, lists, exports and imports household inventory items in any FreshSave document store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $FRESHSAVE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Store driver override: postgres, appwrite, badger or memory")
	rootCmd.PersistentFlags().StringVar(&badgerPath, "badger-path", "", "Badger data directory override")
	rootCmd.PersistentFlags().StringVar(&collectionID, "collection", "", "Collection override")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")
}

// session is everything a command needs to talk to the store.
type session struct {
	cfg     *config.Config
	log     *logger.Logger
	backend *bootstrap.Backend
}

func (s *session) Close() { s.backend.Close() }

// openSession loads config, applies flag overrides and opens the store.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if driverFlag != "" {
		cfg.Store.Driver = driverFlag
	}
	if badgerPath != "" {
		cfg.Badger.Path = badgerPath
	}
	if collectionID != "" {
		cfg.Store.CollectionID = collectionID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Nop()
	if verbose {
		if log, err = logger.New(logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}}); err != nil {
			return nil, err
		}
	}

	backend, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, backend: backend}, nil
}

func newRepo(s *session) inventory.Repository {
	return bootstrap.NewRepository(s.backend, s.cfg, s.log)
}
