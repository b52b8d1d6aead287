package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/config"
	"github.com/cppla/greenhabit/models"
	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and seed the tip catalog, then exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = utils.Logger.Sync() }()

	st, _, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	utils.Logger.Info("migration complete", zap.String("driver", cfg.DBDriver))
	return nil
}

// openStore opens the database, migrates it and seeds tips. It reports whether the tip
// catalog was seeded.
func openStore(cmd *cobra.Command, cfg config.AppConfig) (*store.Store, bool, error) {
	db, err := config.OpenDatabase(cfg, models.All()...)
	if err != nil {
		return nil, false, err
	}
	st := store.New(db, cfg.QueryTimeout())

	seeded, err := st.SeedTips(cmd.Context(), store.DefaultTips)
	if err != nil {
		closeStore(st)
		return nil, false, fmt.Errorf("seed tips: %w", err)
	}
	if seeded {
		utils.Logger.Info("seeded tip catalog", zap.Int("tips", len(store.DefaultTips)))
	}
	return st, seeded, nil
}

func closeStore(st *store.Store) {
	if sqlDB, err := st.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}
