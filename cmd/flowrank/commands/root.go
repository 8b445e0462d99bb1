package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flowrank",
	Short: "FlowRank - 투자자 수급 순위 분석 시스템",
	Long: `FlowRank Unified CLI

KOSPI/KOSDAQ 외국인·기관 순매수 상위 종목을 수집하고,
순위 변동 / 연속 등장 / 쌍 매수 / 신고가 지표를 계산합니다.

Usage:
  go run ./cmd/flowrank [command]

Examples:
  go run ./cmd/flowrank report run
  go run ./cmd/flowrank api
  go run ./cmd/flowrank scheduler start
  go run ./cmd/flowrank test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
