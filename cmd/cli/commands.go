package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datadesk/adapters/excel"
	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/internal/auth"
	"datadesk/internal/config"
	"datadesk/internal/container"
	apperrors "datadesk/internal/errors"

	"github.com/spf13/cobra"
)

// localUserID owns every file ingested by the CLI
var localUserID = core.MustParseID("00000000-0000-7000-8000-000000000001")

// session is one in-process pipeline with a single file already ingested
type session struct {
	c    *container.Container
	file *dataset.UploadedFile
}

func openSession(ctx context.Context, path string) (*session, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	c, err := container.New(config.LoadLocal())
	if err != nil {
		return nil, err
	}
	c.InitInMemory()

	if _, err := c.UserRepo.EnsureUser(ctx, localUserID, ""); err != nil {
		return nil, err
	}

	file, err := c.Ingest.Ingest(ctx, content, filepath.Base(path), localUserID)
	if err != nil {
		return nil, err
	}
	return &session{c: c, file: file}, nil
}

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Show the first rows of a file",
		Long: `Ingest a file and print its first rows, or first lines for text files.

Example: datadesk preview sales.csv --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = s.c.Ingest.DefaultPreviewLimit()
			}
			preview, err := s.c.Ingest.Preview(cmd.Context(), s.file.ID, localUserID, limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, preview)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of rows to show (default from PREVIEW_LIMIT)")

	return cmd
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Print per-column statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			analysis, err := s.c.Ingest.Analyze(cmd.Context(), s.file.ID, localUserID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, analysis)
		},
	}
}

func newCleanCmd(opts *globalOptions) *cobra.Command {
	var out string
	var advanced bool

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Clean a tabular file",
		Long: `Drop empty rows and columns, remove placeholder columns and make
column names unique.

With --advanced names are also snake-cased, mostly numeric or date text
columns are converted, duplicate rows dropped and missing values filled.

Without --out the cleaned table is printed. With --out it is written as
CSV or XLSX depending on the extension.

Example: datadesk clean export.xlsx --advanced --out export.clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var table *dataset.Table
			var result *dataset.AdvancedCleanResult
			if advanced {
				result, err = s.c.Ingest.AdvancedClean(cmd.Context(), s.file.ID, localUserID)
				if result != nil {
					table = result.Table
				}
			} else {
				table, err = s.c.Ingest.Clean(cmd.Context(), s.file.ID, localUserID)
			}
			if err != nil {
				return err
			}
			if out == "" {
				if result != nil {
					return render(cmd.OutOrStdout(), opts.output, result)
				}
				return render(cmd.OutOrStdout(), opts.output, table)
			}
			if err := writeTable(out, table); err != nil {
				return err
			}
			if result != nil {
				for _, op := range result.Report.Operations {
					fmt.Fprintln(cmd.ErrOrStderr(), op)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows x %d columns to %s\n",
				table.NumRows(), table.NumCols(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the cleaned table to a .csv or .xlsx file")
	cmd.Flags().BoolVar(&advanced, "advanced", false, "Also standardize names, convert types, drop duplicates and fill missing values")

	return cmd
}

func newQualityCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quality [file]",
		Short: "Score a tabular file and list issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report, err := s.c.Ingest.Quality(cmd.Context(), s.file.ID, localUserID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, report)
		},
	}
}

func newAskCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [file] [question]",
		Short: "Ask the configured LLM a question about a file",
		Long: `Send the file's schema and leading rows with a question to the LLM.
Requires OPENAI_API_KEY.

Example: datadesk ask sales.csv "Which region sold the most?"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := s.c.Ingest.Ask(cmd.Context(), s.file.ID, localUserID, args[1])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, result)
		},
	}
}

func newTokenCmd(opts *globalOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Mint a bearer token for the HTTP API",
		Long: `Sign a token with JWT_SECRET for local testing of the HTTP API.
A new user ID is generated when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := core.NewID()
			if len(args) == 1 {
				id, err := core.ParseID(args[0])
				if err != nil {
					return err
				}
				userID = id
			}

			cfg := config.LoadLocal()
			token, err := auth.GenerateToken([]byte(cfg.Auth.JWTSecret), userID, email, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]string{
				"user_id": userID.String(),
				"token":   token,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email claim to embed")

	return cmd
}

func writeTable(path string, table *dataset.Table) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = excel.WriteCSV(&buf, table)
	case ".xlsx":
		err = excel.WriteXLSX(&buf, table)
	default:
		return apperrors.InvalidInput("--out must end in .csv or .xlsx")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
