package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/birthday-admin/pkg/adapters/calendar"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Write the iCalendar feed to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		birthdays, err := a.birthdays.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		data, err := calendar.Build(birthdays, time.Now())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}
