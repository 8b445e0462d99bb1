package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "순위 리포트 관리",
	Long: `순위 리포트를 갱신하거나 조회합니다.

Subcommands:
  run   - 리포트 갱신 실행 (수집 + 분석 + 저장)
  list  - 저장된 리포트 날짜 목록

Example:
  go run ./cmd/flowrank report run
  go run ./cmd/flowrank report run --date 2025-07-14
  go run ./cmd/flowrank report list`,
}

var (
	reportDate string

	reportRunCmd = &cobra.Command{
		Use:   "run",
		Short: "리포트 갱신 실행",
		Long: `오늘(또는 --date로 지정한 날짜)의 순매수 순위를 수집하고
순위 변동 / 연속 등장 / 쌍 매수 / 신고가 지표를 계산하여 저장합니다.

같은 날짜로 재실행하면 해당 날짜의 리포트가 교체됩니다.`,
		RunE: runReport,
	}

	reportListCmd = &cobra.Command{
		Use:   "list",
		Short: "저장된 리포트 날짜 목록",
		RunE:  listReports,
	}
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRunCmd)
	reportCmd.AddCommand(reportListCmd)

	reportRunCmd.Flags().StringVar(&reportDate, "date", "", "대상 날짜 (YYYY-MM-DD, 기본: 오늘)")
}

func runReport(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FlowRank Report Update ===")

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	date := time.Now().Truncate(24 * time.Hour)
	if reportDate != "" {
		date, err = time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := d.reportJob.RunForDate(ctx, date); err != nil {
		return fmt.Errorf("report run failed: %w", err)
	}

	fmt.Printf("\n✅ Report updated for %s\n", date.Format("2006-01-02"))
	return nil
}

func listReports(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dates, err := d.reportStore.ListDates(ctx, 30)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	if len(dates) == 0 {
		fmt.Println("No reports stored yet")
		return nil
	}

	fmt.Println("Stored reports (most recent first):")
	for _, date := range dates {
		fmt.Printf("  - %s\n", date.Format("2006-01-02"))
	}
	return nil
}
