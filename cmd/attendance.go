package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/export"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect the attendance ledger",
}

var attendanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendance records, most recent first",
	RunE:  runAttendanceList,
}

var attendanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the attendance ledger as CSV",
	Long: `Write the full attendance ledger as CSV to a file or stdout.
The output matches the HTTP export endpoint: UTF-8 with BOM, quoted
fields, a Name/Date/Time header.`,
	RunE: runAttendanceExport,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceListCmd)
	attendanceCmd.AddCommand(attendanceExportCmd)

	attendanceListCmd.Flags().String("name", "", "Only show records for this person")
	attendanceExportCmd.Flags().String("output", "", "Output file (defaults to stdout)")
}

func runAttendanceList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	var records []database.AttendanceRecord
	if name := mustGetString(cmd, "name"); name != "" {
		records, err = store.ListByName(ctx, name)
	} else {
		records, err = store.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %s  %s\n", rec.Date, rec.Time, rec.Name)
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}

func runAttendanceExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}

	out := os.Stdout
	if path := mustGetString(cmd, "output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
		fmt.Fprintf(os.Stderr, "Writing %d records to %s\n", len(records), path)
	}

	if err := export.WriteCSV(out, records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
