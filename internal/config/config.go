package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/comissoes-next/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Security   SecurityConfig   `mapstructure:"security"`
	Email      EmailConfig      `mapstructure:"email"`
	Commission CommissionConfig `mapstructure:"commission"`
	Internal   InternalConfig   `mapstructure:"internal"`
	Admin      AdminConfig      `mapstructure:"admin"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
	// SlowQueryMs 慢查询阈值（毫秒），0 表示关闭
	SlowQueryMs int `mapstructure:"slow_query_ms"`
}

// SlowQueryThreshold 慢查询阈值
func (c DatabaseConfig) SlowQueryThreshold() time.Duration {
	if c.SlowQueryMs <= 0 {
		return 0
	}
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit  RateLimitConfig `mapstructure:"login_rate_limit"`
	StreamRateLimit RateLimitConfig `mapstructure:"stream_rate_limit"`
}

// RateLimitConfig 固定窗口限流，窗口内最多 MaxAttempts 次
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// CommissionConfig 佣金同步配置
type CommissionConfig struct {
	BatchSize               int     `mapstructure:"batch_size"`
	StreamItemDelayMS       int     `mapstructure:"stream_item_delay_ms"`
	StreamBatchDelayMS      int     `mapstructure:"stream_batch_delay_ms"`
	DefaultPercent          float64 `mapstructure:"default_percent"`
	DefaultNotifyRecipient  string  `mapstructure:"default_notify_recipient"`
	ScheduleIntervalMinutes int     `mapstructure:"schedule_interval_minutes"` // 0 表示关闭定时对账
	JobCacheTTLSeconds      int     `mapstructure:"job_cache_ttl_seconds"`
	JobStaleMinutes         int     `mapstructure:"job_stale_minutes"` // 处理中超过该时长视为已中断
}

// StreamItemDelay 进度流中每条订单之间的间隔
func (c CommissionConfig) StreamItemDelay() time.Duration {
	return time.Duration(c.StreamItemDelayMS) * time.Millisecond
}

// StreamBatchDelay 进度流中批与批之间的间隔
func (c CommissionConfig) StreamBatchDelay() time.Duration {
	return time.Duration(c.StreamBatchDelayMS) * time.Millisecond
}

// ScheduleInterval 定时对账间隔
func (c CommissionConfig) ScheduleInterval() time.Duration {
	return time.Duration(c.ScheduleIntervalMinutes) * time.Minute
}

// JobStaleAfter 处理中任务的超时阈值
func (c CommissionConfig) JobStaleAfter() time.Duration {
	if c.JobStaleMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.JobStaleMinutes) * time.Minute
}

// InternalConfig 内部调用配置
type InternalConfig struct {
	Token string `mapstructure:"token"` // 内部调用共享令牌（X-Internal-Token）
}

// AdminConfig 默认管理员配置
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	loadDotEnv(".env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	cfg.Commission.normalize()

	return &cfg
}

// loadDotEnv 读取本地 .env，已存在的环境变量优先
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		logger.Warnw("config_dotenv_load_failed", "file", path, "error", err)
		return
	}
	logger.Infow("config_dotenv_loaded", "file", path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/comissoes.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.slow_query_ms", 500)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cms")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queues", map[string]int{
		"critical": 6,
		"default":  3,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Internal-Token",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.stream_rate_limit.window_seconds", 60)
	v.SetDefault("security.stream_rate_limit.max_attempts", 3)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "Comissões")
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("commission.batch_size", 50)
	v.SetDefault("commission.stream_item_delay_ms", 50)
	v.SetDefault("commission.stream_batch_delay_ms", 300)
	v.SetDefault("commission.default_percent", 5)
	v.SetDefault("commission.default_notify_recipient", "admin")
	v.SetDefault("commission.schedule_interval_minutes", 0)
	v.SetDefault("commission.job_cache_ttl_seconds", 600)
	v.SetDefault("commission.job_stale_minutes", 30)
	v.SetDefault("internal.token", "")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.email", "")
}

// normalize 兜底非法配置
func (c *CommissionConfig) normalize() {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.StreamItemDelayMS < 0 {
		c.StreamItemDelayMS = 0
	}
	if c.StreamBatchDelayMS < 0 {
		c.StreamBatchDelayMS = 0
	}
	if c.DefaultPercent < 0 || c.DefaultPercent > 100 {
		c.DefaultPercent = 5
	}
	if c.ScheduleIntervalMinutes < 0 {
		c.ScheduleIntervalMinutes = 0
	}
	if c.JobStaleMinutes <= 0 {
		c.JobStaleMinutes = 30
	}
}
