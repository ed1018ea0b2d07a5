package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tickarena/config"
	"tickarena/server"
)

var (
	flagAddr     string
	flagLogFile  string
	flagLogLevel string
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP + WebSocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address, e.g. :6970 (overrides config)")
	serveCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Rolling log file path (overrides config)")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// loadConfig 读取配置并应用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flagAddr
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.File = flagLogFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := server.InitLogger(cfg.Logging); err != nil {
		return err
	}
	defer server.SyncLogger()

	rm := server.NewRoomManager(cfg)
	// 先预创建默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(cfg.Server.DefaultRoom)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: rm.Routes()}

	errCh := make(chan error, 1)
	go func() {
		server.Log.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err := <-errCh:
		rm.Shutdown()
		return err
	}

	server.Log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	rm.Shutdown()
	return nil
}
