package app

import (
	"errors"
	"net"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/provider"
	"github.com/comissoes-next/internal/router"
	"github.com/comissoes-next/internal/worker"

	"go.uber.org/zap"
)

var errNoServices = errors.New("no services for mode")

// BuildRunner 按模式组装服务。
// all 模式下队列未启用时只启动 HTTP，同步任务在请求内执行。
func BuildRunner(cfg *config.Config, container *provider.Container, mode Mode, log *zap.SugaredLogger) (*Runner, error) {
	var services []Service

	if mode.servesHTTP() {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host, cfg.Server.Port, engine))
	}

	if mode.runsWorker() {
		svc, err := worker.NewService(&cfg.Queue, cfg.Commission, worker.NewConsumer(container))
		switch {
		case err == nil:
			services = append(services, svc)
		case mode == ModeAll:
			log.Warnw("app_worker_skipped", "error", err)
		default:
			return nil, err
		}
	}

	if len(services) == 0 {
		return nil, errNoServices
	}
	return NewRunner(services...), nil
}

// Run 组装依赖并运行到收到信号
func Run(opts Options) error {
	opts = opts.withDefaults()
	cfg := opts.Config
	if cfg == nil {
		return errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if _, err := models.InitDefaultAdmin(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
		opts.Logger.Warnw("app_init_default_admin_failed", "error", err)
	}

	runner, err := BuildRunner(cfg, container, opts.Mode, opts.Logger)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
