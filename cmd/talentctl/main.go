// Command talentctl runs the workbook extraction engine from the command
// line, without a database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/talent/internal/config"
	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/logging"
)

// errExtractFailed signals a failed extraction whose report was already
// printed.
var errExtractFailed = errors.New("extraction failed")

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errExtractFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var service *core.Service

	rootCmd := &cobra.Command{
		Use:           "talentctl",
		Short:         "Read candidate workbooks and build upload templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))

			var upload config.UploadConfig
			if err := config.LoadSection(&upload); err != nil {
				return fmt.Errorf("load upload settings: %w", err)
			}
			service = core.NewService(nil, &config.Config{Upload: upload})
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	svc := func() *core.Service { return service }
	rootCmd.AddCommand(
		newExtractCmd(svc),
		newTemplateCmd(svc),
		newFormatCmd(svc),
	)
	return rootCmd
}

func newExtractCmd(svc func() *core.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract seniority, experience and availability from a workbook",
		Long: `Run the extraction engine on FILE and print the outcome as JSON.

The exit status is 1 when the workbook cannot be read or any field is invalid.

Example: talentctl extract candidate.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read workbook: %w", err)
			}

			upload := core.Upload{FileName: filepath.Base(args[0]), Data: data}
			report, err := svc().PreviewWorkbook(cmd.Context(), upload)
			if err != nil {
				report = core.Preview{FileName: upload.FileName}
				report.Describe(core.MapError(err))
				fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
			}

			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return errExtractFailed
			}
			return nil
		},
	}
}

func newTemplateCmd(svc func() *core.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "template OUT.xlsx",
		Short: "Write a workbook with the expected header and an example row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := svc().TemplateWorkbook()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			slog.Info("template written", "path", args[0], "bytes", len(data))
			return nil
		},
	}
}

func newFormatCmd(svc func() *core.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Print the expected workbook format as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), svc().ExpectedFormat())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
