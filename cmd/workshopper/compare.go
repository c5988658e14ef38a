package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/workshopper/internal/config"
	"github.com/nao1215/workshopper/internal/database"
	"github.com/nao1215/workshopper/internal/model"
)

// errNotEnoughSessions is returned when a user has fewer than two stored sessions.
var errNotEnoughSessions = errors.New("at least two stored sessions are needed to compare")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <identifier>",
		Short: "Compare the two most recent sessions of a user",
		Long: `Compare shows how a user's workshop items changed between two stored
sessions: items that were added or removed and how visitor, subscriber,
favorite, award and comment counts moved. Items are matched by their page URL.

By default the latest session is compared with the one before it.

Examples:
  # Compare the latest two sessions
  workshopper compare offiry

  # Compare the latest session with session 3
  workshopper compare offiry --with 3

  # Include unchanged items
  workshopper compare offiry --all

  # Output the comparison as JSON
  workshopper compare offiry --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with", "i", 0,
		"Compare the latest session with the session with this ID")
	cmd.Flags().BoolP("all", "a", false,
		"Include unchanged items")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// Comparison is the result of comparing two stored sessions.
type Comparison struct {
	User     string            `json:"user"`
	Older    sessionRef        `json:"older"`
	Newer    sessionRef        `json:"newer"`
	Totals   model.Totals      `json:"totalsDelta"`
	Counts   map[string]int    `json:"counts"`
	Deltas   []model.ItemDelta `json:"items"`
	AllItems bool              `json:"-"`
}

type sessionRef struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Items     int       `json:"items"`
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	withID, err := flags.GetInt64("with")
	if err != nil {
		return err
	}
	all, err := flags.GetBool("all")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	id, err := model.ParseIdentifier(args[0])
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := compareSessions(cmd.Context(), db, id.String(), withID)
	if err != nil {
		return err
	}
	result.AllItems = all

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	renderComparison(cmd.OutOrStdout(), result)
	return nil
}

// compareSessions loads the latest session of user and the session it is
// compared with, and diffs their items.
func compareSessions(ctx context.Context, db *database.SessionDB, user string, withID int64) (*Comparison, error) {
	latest, err := db.LatestSessions(ctx, user, 2)
	if err != nil {
		return nil, err
	}

	var newer, older database.SessionRecord
	switch {
	case withID != 0:
		if len(latest) == 0 {
			return nil, fmt.Errorf("%w: no sessions found for %s", errNotEnoughSessions, user)
		}
		newer = latest[0]
		older, err = db.GetSession(ctx, withID)
		if err != nil {
			return nil, err
		}
		if older.User != user {
			return nil, fmt.Errorf("session %d belongs to %s, not %s", withID, older.User, user)
		}
		if older.ID == newer.ID {
			return nil, fmt.Errorf("session %d is already the latest session of %s", withID, user)
		}
	case len(latest) < 2:
		return nil, fmt.Errorf("%w: %s has %d (use 'workshopper scrape %s' to add one)", errNotEnoughSessions, user, len(latest), user)
	default:
		newer, older = latest[0], latest[1]
	}

	olderItems, err := db.SessionItems(ctx, older.ID)
	if err != nil {
		return nil, err
	}
	newerItems, err := db.SessionItems(ctx, newer.ID)
	if err != nil {
		return nil, err
	}

	deltas := model.CompareItems(olderItems, newerItems)
	counts := map[string]int{
		string(model.DeltaAdded):     0,
		string(model.DeltaRemoved):   0,
		string(model.DeltaChanged):   0,
		string(model.DeltaUnchanged): 0,
	}
	for _, d := range deltas {
		counts[string(d.Status)]++
	}

	return &Comparison{
		User:  user,
		Older: sessionRef{ID: older.ID, StartedAt: older.StartedAt, Items: older.ItemCount},
		Newer: sessionRef{ID: newer.ID, StartedAt: newer.StartedAt, Items: newer.ItemCount},
		Totals: model.Totals{
			Items:       newer.Totals.Items - older.Totals.Items,
			Visitors:    newer.Totals.Visitors - older.Totals.Visitors,
			Subscribers: newer.Totals.Subscribers - older.Totals.Subscribers,
			Favorites:   newer.Totals.Favorites - older.Totals.Favorites,
			Awards:      newer.Totals.Awards - older.Totals.Awards,
			Comments:    newer.Totals.Comments - older.Totals.Comments,
		},
		Counts: counts,
		Deltas: deltas,
	}, nil
}

// renderComparison prints a comparison as a table with a totals footer.
func renderComparison(out io.Writer, c *Comparison) {
	printer := message.NewPrinter(language.English)
	signed := func(n int) string {
		if n > 0 {
			return "+" + printer.Sprintf("%d", n)
		}
		return printer.Sprintf("%d", n)
	}
	title := cases.Title(language.English)

	fmt.Fprintf(out, "Comparing sessions of %s: #%d (%s, %d items) -> #%d (%s, %d items)\n\n",
		c.User,
		c.Older.ID, c.Older.StartedAt.Local().Format(historyTimeLayout), c.Older.Items,
		c.Newer.ID, c.Newer.StartedAt.Local().Format(historyTimeLayout), c.Newer.Items,
	)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Status", "Name", "Visitors", "Subscribers", "Favorites", "Awards", "Comments"})
	for _, d := range c.Deltas {
		if d.Status == model.DeltaUnchanged && !c.AllItems {
			continue
		}
		t.AppendRow(table.Row{
			title.String(string(d.Status)),
			d.Name,
			signed(d.Visitors),
			signed(d.Subscribers),
			signed(d.Favorites),
			signed(d.Awards),
			signed(d.Comments),
		})
	}
	t.AppendFooter(table.Row{
		"", "Total",
		signed(c.Totals.Visitors),
		signed(c.Totals.Subscribers),
		signed(c.Totals.Favorites),
		signed(c.Totals.Awards),
		signed(c.Totals.Comments),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(out, "\n%d added, %d removed, %d changed, %d unchanged\n",
		c.Counts[string(model.DeltaAdded)],
		c.Counts[string(model.DeltaRemoved)],
		c.Counts[string(model.DeltaChanged)],
		c.Counts[string(model.DeltaUnchanged)],
	)
}
