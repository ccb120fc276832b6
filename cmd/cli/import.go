package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/vcard"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
)

var (
	importFile   string
	importFormat string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create birthdays from a JSON or vCard file",
	Long: `Create birthdays from a JSON array or a vCard file.

Every entry is validated; invalid entries are logged and skipped.
The format defaults to the file extension (.vcf, .vcard) or json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := importFormat
		if format == "" {
			format = formatFromPath(importFile)
		}
		if err := checkFormat(format); err != nil {
			return err
		}

		file, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer file.Close()

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := runImport(cmd.Context(), a.birthdays, a.logger, format, file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d birthdays, skipped %d\n", res.Imported, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "File to import")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format (json, vcf)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

type importResult struct {
	Imported int
	Skipped  int
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vcf", ".vcard":
		return formatVCard
	}
	return formatJSON
}

func decodeImport(format string, r io.Reader) ([]validation.Input, error) {
	if format == formatVCard {
		return vcard.Decode(r)
	}
	var inputs []validation.Input
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return inputs, nil
}

// runImport stops at the first store failure; validation failures only skip the entry.
func runImport(ctx context.Context, svc ports.BirthdayService, logger *zap.Logger, format string, r io.Reader) (importResult, error) {
	var res importResult

	inputs, err := decodeImport(format, r)
	if err != nil {
		return res, err
	}

	for i, in := range inputs {
		in.ID = ""
		_, err := svc.Create(ctx, in)
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			logger.Warn("skipping invalid entry",
				zap.Int("index", i),
				zap.String("name", in.Name),
				zap.Any("errors", verr.ByField()),
			)
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("import entry %d: %w", i, err)
		default:
			res.Imported++
		}
	}
	return res, nil
}
