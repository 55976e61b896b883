package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/comissoes-next/internal/app"
	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	os.Exit(run())
}

func run() int {
	rawMode := flag.String("mode", string(app.ModeAll), "运行模式: all | api | worker")
	flag.Parse()

	mode, err := app.ParseMode(*rawMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	banner(mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	release := cfg.Server.Mode == "release"

	if err := checkSecrets(cfg, release); err != nil {
		logger.Errorw("server_config_rejected", "error", err)
		return 1
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.OpenDatabase(cfg.Database, !release); err != nil {
		logger.Errorw("server_database_failed", "error", err)
		return 1
	}

	err = app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
	if err != nil {
		logger.Errorw("server_exit", "error", err)
		return 1
	}
	return 0
}

// checkSecrets release 模式下弱密钥直接拒绝启动，其余情况只告警
func checkSecrets(cfg *config.Config, release bool) error {
	if isWeakSecret(cfg.JWT.SecretKey) {
		if release {
			return fmt.Errorf("jwt.secret_key is weak or still the default")
		}
		logger.Warnw("server_weak_jwt_secret")
	}
	if strings.TrimSpace(cfg.Internal.Token) == "" {
		logger.Warnw("server_internal_token_missing")
	}
	if release && cfg.Admin.Password == "" {
		logger.Warnw("server_default_admin_password")
	}
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func banner(mode app.Mode) {
	fmt.Println(ansiCyan + ansiBold + "Comissões Next" + ansiReset + ansiDim + " · motor de comissões" + ansiReset)
	fmt.Println(ansiDim + "mode=" + string(mode) + ansiReset)
}
