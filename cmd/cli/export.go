package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/vcard"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every birthday to stdout",
	Long: `Write every birthday to stdout, ordered by name.

Examples:
  birthday-admin export > birthdays.json
  birthday-admin export --format vcf > birthdays.vcf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(exportFormat); err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runExport(cmd.Context(), a.birthdays, exportFormat, cmd.OutOrStdout())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", formatJSON, "Output format (json, vcf)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context, svc ports.BirthdayService, format string, w io.Writer) error {
	birthdays, err := svc.ListAll(ctx)
	if err != nil {
		return err
	}

	if format == formatVCard {
		return vcard.Encode(w, birthdays)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(birthdays)
}
