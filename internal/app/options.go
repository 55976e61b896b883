package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"

	"go.uber.org/zap"
)

// Mode 进程角色
type Mode string

const (
	ModeAll    Mode = "all"
	ModeAPI    Mode = "api"
	ModeWorker Mode = "worker"
)

// ParseMode 空值视为 all
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, api or worker)", raw)
	}
}

func (m Mode) servesHTTP() bool { return m == ModeAll || m == ModeAPI }

func (m Mode) runsWorker() bool { return m == ModeAll || m == ModeWorker }

// 进行中的同步批次需要时间落库
const defaultShutdownTimeout = 30 * time.Second

type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            Mode
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
