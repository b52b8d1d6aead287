package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/config"
	"github.com/cppla/greenhabit/controllers"
	"github.com/cppla/greenhabit/routes"
	"github.com/cppla/greenhabit/session"
	"github.com/cppla/greenhabit/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = utils.Logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, seeded, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	rc := connectRedis(cmd.Context(), cfg)
	if rc != nil {
		defer func() { _ = rc.Close() }()
	}

	sessions, err := session.NewManager(sessionStore(cfg, rc), []byte(cfg.SessionSecret),
		session.WithLogger(utils.Logger))
	if err != nil {
		return err
	}

	r := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Cache:    tipCache(cmd.Context(), cfg, rc, seeded),
		Clock:    time.Now,
		Location: loc,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(cmd.Context(), ":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	utils.Logger.Info("server stopped")
	return nil
}

// connectRedis returns nil when Redis is not wanted or not reachable.
func connectRedis(ctx context.Context, cfg config.AppConfig) *redis.Client {
	if !cfg.RedisEnabled && cfg.SessionStore != "redis" {
		return nil
	}
	rc, err := utils.NewRedisClient(ctx, cfg)
	if err != nil {
		utils.Logger.Warn("redis unavailable, using in-process stores", zap.Error(err))
		return nil
	}
	return rc
}

// tipCache drops a cached catalog left in Redis by an earlier database when tips were
// just seeded.
func tipCache(ctx context.Context, cfg config.AppConfig, rc *redis.Client, seeded bool) *utils.Cache {
	cache := utils.NewCache(rc, time.Duration(cfg.TipCacheTTLSec)*time.Second)
	if seeded {
		cache.Invalidate(ctx, controllers.TipsCacheKey)
	}
	return cache
}

func sessionStore(cfg config.AppConfig, rc *redis.Client) session.Store {
	if cfg.SessionStore == "redis" {
		if rc != nil {
			return session.NewRedisStore(rc)
		}
		utils.Logger.Warn("redis not connected, session store falls back to memory")
	}
	return session.NewMemoryStore()
}
