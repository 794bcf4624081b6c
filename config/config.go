package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Sync     SyncConfig     `yaml:"sync"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

// StorageConfig 对象存储配置（上传后返回公开 URL）
type StorageConfig struct {
	Endpoint   string   `yaml:"endpoint"`
	APIKey     string   `yaml:"api_key"`
	Bucket     string   `yaml:"bucket"`
	ProxyPath  string   `yaml:"proxy_path"`
	ProxyHosts []string `yaml:"proxy_hosts"` // 需要走同源代理的受限域名
}

// CanvasConfig 逻辑画布与响应式断点配置
// 所有元素几何均以逻辑画布单位表达，与具体渲染目标像素无关
type CanvasConfig struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	DesktopBreakpoint float64 `yaml:"desktop_breakpoint"`
	MaxFrameWidth     float64 `yaml:"max_frame_width"`
}

// SyncConfig 持久化同步器配置
// 重试次数、退避基数、分批大小均为可调参数，而非硬编码常量
type SyncConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	BatchSize   int           `yaml:"batch_size"`
	MaxWorkers  int           `yaml:"max_workers"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Storage: StorageConfig{
			Bucket:    "invitation-assets",
			ProxyPath: "/media/proxy",
		},
		Canvas: CanvasConfig{
			Width:             375,
			Height:            667,
			DesktopBreakpoint: 1024,
			MaxFrameWidth:     420,
		},
		Sync: SyncConfig{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			BatchSize:   5,
			MaxWorkers:  4,
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}
	if endpoint := os.Getenv("STORAGE_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if apiKey := os.Getenv("STORAGE_API_KEY"); apiKey != "" {
		config.Storage.APIKey = apiKey
	}
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}
	if batch := os.Getenv("SYNC_BATCH_SIZE"); batch != "" {
		if n, err := strconv.Atoi(batch); err == nil && n > 0 {
			config.Sync.BatchSize = n
		}
	}
	if attempts := os.Getenv("SYNC_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil && n > 0 {
			config.Sync.MaxAttempts = n
		}
	}

	if config.Sync.BatchSize <= 0 {
		config.Sync.BatchSize = 5
	}
	if config.Sync.MaxAttempts <= 0 {
		config.Sync.MaxAttempts = 3
	}
	if config.Sync.BaseDelay <= 0 {
		config.Sync.BaseDelay = 100 * time.Millisecond
	}
	if config.Sync.MaxWorkers <= 0 {
		config.Sync.MaxWorkers = 4
	}
	if config.Canvas.Width <= 0 {
		config.Canvas.Width = 375
	}
	if config.Canvas.Height <= 0 {
		config.Canvas.Height = 667
	}

	return config
}
