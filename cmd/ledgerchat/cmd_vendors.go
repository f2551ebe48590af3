package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerchat/internal/directory"
	"ledgerchat/internal/render"
)

var vendorsFile string

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Vendor directory commands",
}

var vendorsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fill vendor_email from the vendor directory",
	Long: `sync reads vendor contacts from a YAML file (--file or DIRECTORY_FILE) or,
when none is given, from the directory API, and assigns them to the
session's rows exactly like an "add emails" command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := svc.Resolve(sessionID)
		if err != nil {
			return err
		}

		var source directory.Source
		path := vendorsFile
		if path == "" {
			path = cfg.DirectoryFile
		}
		if path != "" {
			source = directory.NewFileSource(path)
		} else {
			if err := cfg.Require("DIRECTORY_API_BASE_URL", cfg.DirectoryAPIBaseURL); err != nil {
				return err
			}
			source = directory.NewClient(cfg)
		}

		report, err := directory.NewSyncService(source, svc, db, logger).Sync(cmd.Context(), id)
		if err != nil {
			return err
		}
		render.UpdateReport(cmd.OutOrStdout(), report)
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", report.RowCount())
		return nil
	},
}

func init() {
	vendorsSyncCmd.Flags().StringVarP(&vendorsFile, "file", "f", "", "YAML file of 'vendor: email' entries")
	vendorsCmd.AddCommand(vendorsSyncCmd)
}
