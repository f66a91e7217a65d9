package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/4t145/rahjong/common/config"
	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/simulator/app"
)

var (
	configFile string
	logLevel   string
	identifier string
	rounds     int
	seed       int64
)

var rootCmd = &cobra.Command{
	Use:   "simulator",
	Short: "rahjong 自对局模拟器",
	Long:  `rahjong 自对局模拟器：四个自动玩家按配置打若干局，并统计结果`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reloads := make(chan *config.Config, 1)
		cfg, err := loadConfig(reloads)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("logLevel") {
			cfg.Log.Level = logLevel
		}
		if rounds > 0 {
			cfg.Simulator.Rounds = rounds
		}
		if cmd.Flags().Changed("seed") {
			cfg.Simulator.Seed = seed
		}
		name := identifier
		if name == "" {
			name = cfg.AppName
		}

		log.InitLog(name, cfg.Log.Level)
		log.Info("配置文件: %s, %+v", configFile, *cfg)
		return app.Run(context.Background(), cfg, name, reloads)
	},
}

// loadConfig 配置文件不存在时使用默认值，存在时监听变化
func loadConfig(reloads chan<- *config.Config) (*config.Config, error) {
	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
		log.Warn("配置文件 %s 不存在，使用默认配置", configFile)
		return config.Load("")
	}
	return config.Watch(configFile, func(c *config.Config) {
		select {
		case reloads <- c:
		default:
			log.Warn("上一次配置变更尚未处理，忽略本次")
		}
	}, func(err error) {
		log.Warn("配置变更解析失败，保留旧配置: %v", err)
	})
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "resource", "resource/application.yml", "resource file")
	rootCmd.Flags().StringVar(&logLevel, "logLevel", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&identifier, "identifier", "", "player id prefix and log prefix, defaults to appName")
	rootCmd.Flags().IntVar(&rounds, "rounds", 0, "number of rounds, overrides simulator.rounds")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "wall seed, overrides simulator.seed; 0 means time based")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("error happen: %v", err)
		os.Exit(1)
	}
}
