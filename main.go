// tickarena 是一个权威的实时多人同步服务：固定频率 Tick 合并入站事件、
// 按固定阶段广播状态变化，并以环形世界推进实体位置。
//
// 用法：
//
//	tickarena serve [--config arena.yaml] [--addr :6970]
//	tickarena config [--config arena.toml]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tickarena",
	Short:         "Tick-driven multiplayer state synchronization server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a .yaml or .toml config file (defaults when empty)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
