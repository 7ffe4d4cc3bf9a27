package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kbase/internal/config"
	"github.com/kbase/internal/db"
	"github.com/kbase/internal/handler"
	"github.com/kbase/internal/logger"
	"github.com/kbase/internal/router"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	// 按需创建初始管理员账号
	if err := db.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	api := handler.NewAPI(db.DB, cfg, log)
	r := router.Setup(cfg, api)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to run server")
	}
}
