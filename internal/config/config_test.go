package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaultsCommissionSection(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Commission.BatchSize != 50 {
		t.Fatalf("expected batch size 50, got %d", cfg.Commission.BatchSize)
	}
	if cfg.Commission.DefaultPercent != 5 {
		t.Fatalf("expected default percent 5, got %v", cfg.Commission.DefaultPercent)
	}
	if cfg.Commission.StreamItemDelay().Milliseconds() != 50 {
		t.Fatalf("unexpected item delay: %v", cfg.Commission.StreamItemDelay())
	}
	if cfg.Commission.StreamBatchDelay().Milliseconds() != 300 {
		t.Fatalf("unexpected batch delay: %v", cfg.Commission.StreamBatchDelay())
	}
	if cfg.Commission.ScheduleInterval() != 0 {
		t.Fatalf("schedule should be disabled by default")
	}
	if cfg.Commission.JobStaleMinutes != 30 || cfg.Commission.JobStaleAfter().Minutes() != 30 {
		t.Fatalf("unexpected stale job threshold: %v", cfg.Commission.JobStaleAfter())
	}
}

func TestCommissionConfigNormalize(t *testing.T) {
	cfg := CommissionConfig{
		BatchSize:               0,
		StreamItemDelayMS:       -1,
		DefaultPercent:          150,
		ScheduleIntervalMinutes: -5,
		JobStaleMinutes:         -1,
	}
	cfg.normalize()
	if cfg.BatchSize != 50 {
		t.Fatalf("expected batch size fallback, got %d", cfg.BatchSize)
	}
	if cfg.StreamItemDelayMS != 0 {
		t.Fatalf("expected non-negative item delay, got %d", cfg.StreamItemDelayMS)
	}
	if cfg.DefaultPercent != 5 {
		t.Fatalf("expected percent fallback, got %v", cfg.DefaultPercent)
	}
	if cfg.ScheduleIntervalMinutes != 0 {
		t.Fatalf("expected schedule disabled, got %d", cfg.ScheduleIntervalMinutes)
	}
	if cfg.JobStaleMinutes != 30 {
		t.Fatalf("expected stale threshold fallback, got %d", cfg.JobStaleMinutes)
	}
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "COMMISSION_DOTENV_NEW=from_file\nCOMMISSION_DOTENV_KEEP=from_file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv failed: %v", err)
	}
	t.Setenv("COMMISSION_DOTENV_KEEP", "from_env")
	t.Cleanup(func() { _ = os.Unsetenv("COMMISSION_DOTENV_NEW") })

	loadDotEnv(path)

	if got := os.Getenv("COMMISSION_DOTENV_NEW"); got != "from_file" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
	if got := os.Getenv("COMMISSION_DOTENV_KEEP"); got != "from_env" {
		t.Fatalf("existing env should win, got %q", got)
	}

	// 文件不存在时静默跳过
	loadDotEnv(filepath.Join(dir, "missing.env"))
}
