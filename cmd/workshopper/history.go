package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/workshopper/internal/config"
	"github.com/nao1215/workshopper/internal/database"
	"github.com/nao1215/workshopper/internal/export"
	"github.com/nao1215/workshopper/internal/model"
)

// historyTimeLayout formats session timestamps in tables.
const historyTimeLayout = "2006-01-02 15:04"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [identifier]",
		Short: "List stored scrape sessions",
		Long: `History lists the sessions stored in the local history database,
newest first. Give an identifier to list only that user's sessions.

Examples:
  # List every stored session
  workshopper history

  # List the last five sessions of one user
  workshopper history offiry -n 5

  # List the users with stored sessions
  workshopper history --users

  # Show the items collected in session 3
  workshopper history --items 3

  # Delete session 3
  workshopper history --delete 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0,
		"Show at most this many sessions (0 = all)")
	cmd.Flags().Bool("users", false,
		"List users with stored sessions")
	cmd.Flags().Int64("items", 0,
		"Show the items of the session with this ID")
	cmd.Flags().Int64("delete", 0,
		"Delete the session with this ID")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// openHistory opens the history database in the directory named by the
// command's --db-dir flag.
func openHistory(cmd *cobra.Command) (*database.SessionDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	listUsers, err := flags.GetBool("users")
	if err != nil {
		return err
	}
	itemsID, err := flags.GetInt64("items")
	if err != nil {
		return err
	}
	deleteID, err := flags.GetInt64("delete")
	if err != nil {
		return err
	}

	var user string
	if len(args) == 1 {
		id, err := model.ParseIdentifier(args[0])
		if err != nil {
			return err
		}
		user = id.String()
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case deleteID != 0:
		if err := db.DeleteSession(ctx, deleteID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted session %d.\n", deleteID)
		return nil
	case itemsID != 0:
		return showSessionItems(ctx, db, out, itemsID)
	case listUsers:
		return showUsers(ctx, db, out)
	}

	var records []database.SessionRecord
	if limit > 0 {
		records, err = db.LatestSessions(ctx, user, limit)
	} else {
		records, err = db.ListSessions(ctx, user)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		if user != "" {
			fmt.Fprintf(out, "No stored sessions found for %s.\n", user)
		} else {
			fmt.Fprintln(out, "No stored sessions found.")
		}
		fmt.Fprintln(out, "\nUse 'workshopper scrape <identifier>' to collect workshop items.")
		return nil
	}

	renderHistory(out, records)
	return nil
}

// renderHistory prints session records as a table.
func renderHistory(out io.Writer, records []database.SessionRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "User", "Kind", "Started", "Duration", "Pages", "Items", "Visitors", "Subscribers", "Export", "Output"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.ID,
			rec.User,
			rec.Kind,
			rec.StartedAt.Local().Format(historyTimeLayout),
			rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second),
			rec.Pages,
			rec.ItemCount,
			rec.Totals.Visitors,
			rec.Totals.Subscribers,
			rec.Export,
			rec.OutputPath,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// showUsers prints every user with stored sessions.
func showUsers(ctx context.Context, db *database.SessionDB, out io.Writer) error {
	users, err := db.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(out, "No stored sessions found.")
		return nil
	}

	fmt.Fprintf(out, "Users with stored sessions (%d):\n\n", len(users))
	for _, user := range users {
		fmt.Fprintf(out, "  %s\n", user)
	}
	fmt.Fprintln(out, "\nUse 'workshopper history <identifier>' to see a user's sessions.")
	return nil
}

// showSessionItems prints the items of one stored session as a table.
func showSessionItems(ctx context.Context, db *database.SessionDB, out io.Writer, sessionID int64) error {
	items, err := db.SessionItems(ctx, sessionID)
	if errors.Is(err, database.ErrSessionNotFound) {
		return fmt.Errorf("%w (use 'workshopper history' to see available IDs)", err)
	}
	if err != nil {
		return err
	}

	rec, err := db.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session := model.NewSession(model.Identifier{})
	session.User = rec.User
	session.AppendPage(items)
	return export.NewTableWriter(out).Write(session)
}
