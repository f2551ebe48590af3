package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerchat/internal/connectors"
	"ledgerchat/internal/listener"
)

var (
	mailProvider string
	mailLabel    string
	mailMax      int
	mailBatch    int
	mailMessage  string
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mailbox ingestion commands",
}

var mailFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new messages and store them raw",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		conn, err := connectors.NewMailConnector(cfg, mailProvider)
		if err != nil {
			return err
		}
		result, err := connectors.NewFetchService(db, cfg.RawMailDir, conn).FetchAndStore(cmd.Context(), mailLabel, mailMax)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mail fetch done provider=%s fetched=%d stored=%d\n", mailProvider, result.Fetched, result.Stored)
		return nil
	},
}

var mailLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load ledger attachments of fetched messages into sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		if mailMessage != "" {
			status, id, err := svc.LoadMail(cmd.Context(), mailProvider, mailMessage)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail load done status=%s session=%s\n", status, id)
			return nil
		}

		res, err := svc.LoadPendingMail(cmd.Context(), mailBatch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mail load done loaded=%d skipped=%d failed=%d\n", res.Loaded, res.Skipped, res.Failed)
		for _, id := range res.Sessions {
			fmt.Fprintf(cmd.OutOrStdout(), "  session %s\n", id)
		}
		return nil
	},
}

var mailListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Poll the mailbox until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		conn, err := connectors.NewMailConnector(cfg, mailProvider)
		if err != nil {
			return err
		}
		listenCfg := cfg
		listenCfg.MailListenerProvider = mailProvider
		listenCfg.MailListenerLabel = mailLabel
		return listener.NewService(db, listenCfg, conn, svc, logger).Run(cmd.Context())
	},
}

func init() {
	for _, c := range []*cobra.Command{mailFetchCmd, mailLoadCmd, mailListenCmd} {
		c.Flags().StringVar(&mailProvider, "provider", "", "gmail|imap (default: MAIL_LISTENER_PROVIDER)")
		c.Flags().StringVar(&mailLabel, "label", "", "Mailbox or label (default: MAIL_LISTENER_LABEL)")
	}
	mailFetchCmd.Flags().IntVar(&mailMax, "max", 50, "Max messages to fetch")
	mailLoadCmd.Flags().IntVar(&mailBatch, "batch", 20, "Max messages to load")
	mailLoadCmd.Flags().StringVar(&mailMessage, "message-id", "", "Load one stored message by its Message-ID")

	mailCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if mailProvider == "" {
			mailProvider = cfg.MailListenerProvider
		}
		if mailLabel == "" {
			mailLabel = cfg.MailListenerLabel
		}
		return nil
	}

	mailCmd.AddCommand(mailFetchCmd, mailLoadCmd, mailListenCmd)
}
