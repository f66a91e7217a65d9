package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// current 最近一次成功加载的配置，监听回调会在 viper 的 goroutine 中替换它
var current atomic.Pointer[Config]

// Current 最近一次成功加载的配置，尚未加载时为 nil
func Current() *Config { return current.Load() }

type Config struct {
	AppName   string        `mapstructure:"appName"`
	Log       LogConf       `mapstructure:"log"`
	Engine    EngineConf    `mapstructure:"engine"`
	Searcher  SearcherConf  `mapstructure:"searcher"`
	Simulator SimulatorConf `mapstructure:"simulator"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// EngineConf 计时配置，时长写成 "30s" 这样的字符串
type EngineConf struct {
	DropTimeout     time.Duration `mapstructure:"dropTimeout"`
	ReactionTimeout time.Duration `mapstructure:"reactionTimeout"`
	Compensation    time.Duration `mapstructure:"compensation"`
	MaxRoundTime    time.Duration `mapstructure:"maxRoundTime"`
	AutoPass        bool          `mapstructure:"autoPass"`
	QueueSize       int           `mapstructure:"queueSize"`
}

// SearcherConf 和牌搜索缓存，见 ristretto.Config
type SearcherConf struct {
	NumCounters int64 `mapstructure:"numCounters"`
	MaxCost     int64 `mapstructure:"maxCost"`
}

type SimulatorConf struct {
	Rounds   int   `mapstructure:"rounds"`
	Parallel int   `mapstructure:"parallel"` // 同时进行的牌桌数
	Seed     int64 `mapstructure:"seed"`     // 0 表示使用时间种子
	Dealer   int   `mapstructure:"dealer"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "rahjong")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("engine.dropTimeout", "30s")
	v.SetDefault("engine.reactionTimeout", "10s")
	v.SetDefault("engine.compensation", "5s")
	v.SetDefault("engine.maxRoundTime", "30s")
	v.SetDefault("engine.autoPass", true)
	v.SetDefault("engine.queueSize", 256)
	v.SetDefault("searcher.numCounters", int64(1_000_000))
	v.SetDefault("searcher.maxCost", 1<<20)
	v.SetDefault("simulator.rounds", 1)
	v.SetDefault("simulator.parallel", 1)
	v.SetDefault("simulator.seed", 0)
	v.SetDefault("simulator.dealer", 0)
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.Simulator.Rounds <= 0 {
		return nil, fmt.Errorf("simulator.rounds 必须为正数: %d", cfg.Simulator.Rounds)
	}
	if cfg.Simulator.Parallel <= 0 {
		cfg.Simulator.Parallel = 1
	}
	if cfg.Simulator.Dealer < 0 || cfg.Simulator.Dealer > 3 {
		return nil, fmt.Errorf("simulator.dealer 超出范围: %d", cfg.Simulator.Dealer)
	}
	return &cfg, nil
}

// Load 读取配置文件并用环境变量覆盖，例如 LOG_LEVEL、ENGINE_DROPTIMEOUT。
// configFile 为空时只使用默认值和环境变量
func Load(configFile string) (*Config, error) {
	v := newViper(configFile)
	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configFile, err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	return cfg, nil
}

// Watch 加载配置并监听文件变化，解析成功后回调 onChange；解析失败时保留旧配置
func Watch(configFile string, onChange func(*Config), onError func(error)) (*Config, error) {
	v := newViper(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configFile, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)

	v.OnConfigChange(func(in fsnotify.Event) {
		next, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("%s: %w", in.Name, err))
			}
			return
		}
		current.Store(next)
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
	return cfg, nil
}
