package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/flowrank/backend/internal/api"
	"github.com/wonny/flowrank/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                - Health check
  GET  /api/reports           - 저장된 리포트 날짜 목록
  GET  /api/reports/{date}    - 렌더링된 리포트 조회
  POST /api/reports/run       - 리포트 갱신 트리거
  GET  /api/jobs              - 스케줄 작업 통계
  WS   /ws                    - 리포트 완료 이벤트 스트림

Example:
  go run ./cmd/flowrank api
  go run ./cmd/flowrank api --port 8091
  go run ./cmd/flowrank api --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: config)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러 동시 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FlowRank API Server ===")

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	sched, err := d.buildScheduler()
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}
	if apiWithScheduler {
		sched.Start()
		defer sched.Stop()
		d.log.Info("Scheduler running alongside API server")
	}

	reportHandler := handlers.NewReportHandler(d.reportStore, d.reportJob, sched, d.log)
	router := api.NewRouter(reportHandler, d.hub, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
