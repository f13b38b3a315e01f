package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Importer  ImporterConfig  `mapstructure:"importer"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	JobLog    JobLogConfig    `mapstructure:"joblog"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// QueueConfig 后台任务队列
type QueueConfig struct {
	Workers     int           `mapstructure:"workers"`
	Size        int           `mapstructure:"size"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
}

// ImporterConfig 供应商价目表导入
type ImporterConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
	// 同一商家两次导入的最小间隔, 0 表示不限制
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// StorageConfig 缩略图存储, Provider 为 local 或 s3
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	LocalDir  string `mapstructure:"local_dir"`
	PublicURL string `mapstructure:"public_url"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type ThumbnailConfig struct {
	Width   int `mapstructure:"width"`
	Height  int `mapstructure:"height"`
	Quality int `mapstructure:"quality"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type JobLogConfig struct {
	RetentionDays int    `mapstructure:"retention_days"`
	CleanupSpec   string `mapstructure:"cleanup_spec"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=retail port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.secret", "retail-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "retail-service")
	v.SetDefault("jwt.access_ttl", 2*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.size", 256)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.job_timeout", 30*time.Second)

	v.SetDefault("importer.fetch_timeout", 20*time.Second)
	v.SetDefault("importer.max_body_bytes", 10<<20)
	v.SetDefault("importer.user_agent", "Retail-Importer/1.0")
	v.SetDefault("importer.cooldown", 10*time.Second)

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_dir", "./media")
	v.SetDefault("storage.public_url", "/media")

	v.SetDefault("thumbnail.width", 200)
	v.SetDefault("thumbnail.height", 200)
	v.SetDefault("thumbnail.quality", 85)

	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("cors.allow_origins", []string{"*"})

	v.SetDefault("joblog.retention_days", 30)
	v.SetDefault("joblog.cleanup_spec", "0 30 3 * * *")
}

// Load 加载配置: .env -> 默认值 -> 配置文件 (可选) -> 环境变量
// 环境变量使用下划线形式, 如 DATABASE_DSN, JWT_SECRET
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}
