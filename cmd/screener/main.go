// Package main 简历筛选服务的命令行入口：serve 启动 HTTP 服务，screen 在本地批量打分
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"           //nolint:gochecknoglobals
	serviceName = "resume-screener" //nolint:gochecknoglobals
)

var rootCmd = &cobra.Command{
	Use:           "screener",
	Short:         "Rank resumes against a job description",
	Long:          "screener parses PDF, DOCX and TXT resumes, extracts contact details and entities, and ranks candidates by TF-IDF, fuzzy and skill-bonus scores.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// 全局参数
var configPath string

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", "", "Path to config file (searched in default locations when empty)")
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
