package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resume-screener/internal/report"
	"resume-screener/internal/screening"
	"resume-screener/internal/types"
)

var screenCmd = &cobra.Command{
	Use:   "screen [flags] RESUME...",
	Short: "Score resumes against a job description and print a ranked table",
	Long:  "Parses every RESUME file (.pdf, .docx, .txt), scores it against the job description and prints candidates sorted by final score. Files that cannot be parsed are reported as warnings.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScreen,
}

const (
	formatTable = "table"
	formatJSON  = "json"
)

var (
	screenJDFile  string
	screenJDText  string
	screenModel   string
	screenDetails bool
	screenFormat  string
	screenWorkers int
)

func init() {
	screenCmd.Flags().StringVarP(&screenJDFile, "jd", "j", "", "Path to job description text file, - for stdin")
	screenCmd.Flags().StringVar(&screenJDText, "jd-text", "", "Job description text")
	screenCmd.Flags().StringVarP(&screenModel, "model", "m", "", "Entity recognition model (default from config)")
	screenCmd.Flags().BoolVarP(&screenDetails, "details", "d", false, "Show per-resume details")
	screenCmd.Flags().StringVarP(&screenFormat, "format", "f", formatTable, "Output format: table or json")
	screenCmd.Flags().IntVarP(&screenWorkers, "workers", "w", 0, "Parallel workers (default from config)")
	screenCmd.MarkFlagsMutuallyExclusive("jd", "jd-text")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	if screenFormat != formatTable && screenFormat != formatJSON {
		return fmt.Errorf("unknown format %q, expected %s or %s", screenFormat, formatTable, formatJSON)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogger(cfg.Logger)

	jd, err := readJobDescription(cmd.InOrStdin())
	if err != nil {
		return err
	}
	docs, err := readDocuments(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, cfg, screenWorkers)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	r, err := a.screener.Screen(ctx, jd, docs, screening.WithModel(screenModel))
	if err != nil {
		return errors.New(screening.UserMessage(err))
	}
	return writeReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), r)
}

func readJobDescription(stdin io.Reader) (string, error) {
	switch {
	case screenJDText != "":
		return screenJDText, nil
	case screenJDFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read job description from stdin: %w", err)
		}
		return string(data), nil
	case screenJDFile != "":
		data, err := os.ReadFile(screenJDFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description file %s: %w", screenJDFile, err)
		}
		return string(data), nil
	}
	return "", errors.New(screening.MsgMissingJobDescription)
}

// readDocuments 读取简历文件，文件名只保留最后一段，与上传时一致
func readDocuments(paths []string) ([]types.RawDocument, error) {
	docs := make([]types.RawDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume %s: %w", p, err)
		}
		docs = append(docs, types.RawDocument{Filename: filepath.Base(p), Content: data})
	}
	return docs, nil
}

func writeReport(stdout, stderr io.Writer, r *types.Report) error {
	if screenFormat == formatJSON {
		return report.RenderJSON(stdout, r, screenDetails)
	}

	if err := report.RenderWarnings(stderr, r.Warnings); err != nil {
		return err
	}
	if err := report.RenderTable(stdout, r); err != nil {
		return err
	}
	if screenDetails {
		if _, err := fmt.Fprintln(stdout, strings.Repeat("-", 40)); err != nil {
			return err
		}
		return report.RenderDetails(stdout, r)
	}
	return nil
}
