package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ledgerchat/internal/export"
	"ledgerchat/internal/render"
)

var exportOut string

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load an invoice file into a new session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		up, err := svc.Upload(cmd.Context(), args[0], content)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session %s: %d rows from %s\n", up.SessionID, up.Table.Len(), up.Dataset.Source)
		fmt.Fprintf(out, "columns: %s\n", strings.Join(up.Table.Columns, ", "))
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question against the session",
	Args:  cobra.MinimumNArgs(1),
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
		resp, err := svc.Ask(cmd.Context(), id, strings.Join(args, " "))
		if err != nil {
			return err
		}
		render.Response(cmd.OutOrStdout(), resp)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive prompt loop; a line ending in '\\' continues the prompt",
	Args:  cobra.NoArgs,
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

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		var pending []string
		fmt.Fprint(out, "> ")
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasSuffix(line, `\`) {
				pending = append(pending, strings.TrimSuffix(line, `\`))
				fmt.Fprint(out, ". ")
				continue
			}
			prompt := strings.Join(append(pending, line), "\n")
			pending = nil

			if trimmed := strings.TrimSpace(prompt); trimmed == "exit" || trimmed == "quit" {
				return nil
			}
			resp, err := svc.Ask(cmd.Context(), id, prompt)
			if err != nil {
				return err
			}
			render.Response(out, resp)
			fmt.Fprint(out, "\n> ")
		}
		return scanner.Err()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current filter of the session to xlsx",
	Args:  cobra.NoArgs,
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
		current, err := svc.CurrentFilter(id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("no current filter; run a filtering query first")
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.OutputDir, id+".xlsx")
		}
		if err := export.SaveTable(current, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", current.Len(), path)
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := svc.Sessions(20)
		if err != nil {
			return err
		}
		active, _ := svc.ActiveSession()
		render.Sessions(cmd.OutOrStdout(), rows, active)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions of the session",
	Args:  cobra.NoArgs,
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
		rows, err := svc.History(id, 50)
		if err != nil {
			return err
		}
		for _, q := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-15s %s\n    %s\n", q.CreatedAt, q.Rule, q.Prompt, q.Answer)
		}
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Make a session the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()
		return svc.SetActiveSession(args[0])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default: OUTPUT_DIR/<session>.xlsx)")
}
