package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config 服务端全部可调参数，缺省值见 Defaults
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	World   WorldConfig   `yaml:"world" toml:"world"`
	Network NetworkConfig `yaml:"network" toml:"network"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	DefaultRoom string `yaml:"default_room" toml:"default_room"`
	StaticDir   string `yaml:"static_dir" toml:"static_dir"` // 为空则不挂载静态资源
}

// WorldConfig 世界与模拟常量
type WorldConfig struct {
	Width             float64 `yaml:"width" toml:"width"`
	Height            float64 `yaml:"height" toml:"height"`
	PlayerSize        float64 `yaml:"player_size" toml:"player_size"`   // 出生点需留出实体占位
	PlayerSpeed       float64 `yaml:"player_speed" toml:"player_speed"` // 单位/秒
	TickRate          int     `yaml:"tick_rate" toml:"tick_rate"`       // 每秒 Tick 数
	NormalizeDiagonal bool    `yaml:"normalize_diagonal" toml:"normalize_diagonal"`
	Seed              uint64  `yaml:"seed" toml:"seed"` // 0 = 随机
}

type NetworkConfig struct {
	ReadLimit      int64         `yaml:"read_limit" toml:"read_limit"`
	ReadTimeout    time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval" toml:"ping_interval"`
	SendQueueSize  int           `yaml:"send_queue_size" toml:"send_queue_size"`
	AllowedOrigins []string      `yaml:"allowed_origins" toml:"allowed_origins"` // 为空表示放行所有来源
}

type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"` // "json" 或 "console"
	File       string `yaml:"file" toml:"file"`     // 为空则输出到 stderr
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// TickInterval 每个 Tick 的固定时长
func (w WorldConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(w.TickRate)
}

// Defaults 返回默认配置
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":6970",
			DefaultRoom: "room-1",
			StaticDir:   "web",
		},
		World: WorldConfig{
			Width:             800,
			Height:            600,
			PlayerSize:        30,
			PlayerSpeed:       500,
			TickRate:          30,
			NormalizeDiagonal: true,
		},
		Network: NetworkConfig{
			ReadLimit:     1 << 20, // 1MB
			ReadTimeout:   60 * time.Second,
			WriteTimeout:  5 * time.Second,
			PingInterval:  25 * time.Second,
			SendQueueSize: 64,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load 读取配置文件并覆盖默认值；path 为空时直接返回默认配置
// 按扩展名选择解码器：.yaml/.yml 或 .toml
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 校验会导致模拟失效的取值
func (c *Config) Validate() error {
	w := c.World
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("world size must be positive, got %vx%v", w.Width, w.Height)
	case w.TickRate <= 0:
		return fmt.Errorf("tick_rate must be positive, got %d", w.TickRate)
	case w.PlayerSpeed < 0:
		return fmt.Errorf("player_speed must not be negative, got %v", w.PlayerSpeed)
	case w.PlayerSize < 0 || w.PlayerSize >= w.Width || w.PlayerSize >= w.Height:
		return fmt.Errorf("player_size %v does not fit world %vx%v", w.PlayerSize, w.Width, w.Height)
	case c.Network.WriteTimeout <= 0:
		return fmt.Errorf("write_timeout must be positive, got %v", c.Network.WriteTimeout)
	case c.Network.SendQueueSize <= 0:
		return fmt.Errorf("send_queue_size must be positive, got %d", c.Network.SendQueueSize)
	}
	return nil
}

// Encode 以 YAML 输出配置
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
