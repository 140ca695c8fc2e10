// Command statsctl inspects the statistics store from the command line.
//
// Usage:
//
//	statsctl check
//	statsctl schema
//	statsctl teams
//	statsctl team 4
//	statsctl scorers 4 --limit 10
//	statsctl results --limit 20 --season 3
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/db"
	"github.com/voleibolstats/voleibol-web/internal/store"
	"github.com/voleibolstats/voleibol-web/internal/volley"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "statsctl",
		Short:         "Voleibol Stats store inspection CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(checkCmd())
	root.AddCommand(schemaCmd())
	root.AddCommand(teamsCmd())
	root.AddCommand(teamCmd())
	root.AddCommand(scorersCmd())
	root.AddCommand(resultsCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// check / schema commands
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pools *db.Lazy, _ *store.Store) error {
				pool, err := pools.Pool()
				if err != nil {
					return err
				}
				if err := pool.HealthCheck(ctx); err != nil {
					return fmt.Errorf("health check: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok (max %d connections)\n", cfg.DBPoolMaxConns())
				return nil
			})
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the detected schema variant and the columns it was detected from",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pools *db.Lazy, _ *store.Store) error {
				pool, err := pools.Pool()
				if err != nil {
					return err
				}
				return pool.Do(ctx, func(q db.Querier) error {
					cols, err := db.LoadColumns(ctx, q)
					if err != nil {
						return err
					}
					variant, err := db.DetectVariant(ctx, q, cfg.SchemaVariant)
					if err != nil {
						return err
					}
					printSchema(cmd.OutOrStdout(), cfg.SchemaVariant, variant, cols)
					return nil
				})
			})
		},
	}
}

func printSchema(out io.Writer, setting string, variant volley.Variant, cols db.Columns) {
	fmt.Fprintf(out, "setting: %s\nvariant: %s\n", setting, variant)
	tables := make([]string, 0, len(cols))
	for table := range cols {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		names := make([]string, 0, len(cols[table]))
		for col := range cols[table] {
			names = append(names, col)
		}
		sort.Strings(names)
		fmt.Fprintf(out, "  %s: %v\n", table, names)
	}
}

// --------------------------------------------------------------------------
// data commands
// --------------------------------------------------------------------------

func teamsCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, _ *config.Config, _ *db.Lazy, s *store.Store) error {
				teams, err := s.Teams(ctx, optional(season))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTEAM")
				for _, t := range teams {
					fmt.Fprintf(tw, "%d\t%s\n", t.ID, t.DisplayName())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season id (0 = any)")
	return cmd
}

func teamCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "team <id>",
		Short: "Show a team's record, streak and roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := teamID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, _ *config.Config, _ *db.Lazy, s *store.Store) error {
				team, err := s.Team(ctx, id)
				if err != nil {
					return err
				}
				if team == nil {
					return fmt.Errorf("team %d not found", id)
				}
				rule, err := s.Rule(ctx)
				if err != nil {
					return err
				}
				matches, err := s.TeamMatches(ctx, id, optional(season), 0)
				if err != nil {
					return err
				}
				roster, err := s.Roster(ctx, id)
				if err != nil {
					return err
				}

				sum := volley.Summarize(volley.Played(matches), rule)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n", team.DisplayName())
				fmt.Fprintf(out, "played %d  won %d  lost %d  drawn %d  unknown %d  sets %d-%d  streak %s\n",
					sum.Played, sum.Wins, sum.Losses, sum.Draws, sum.Unknown, sum.SetsFor, sum.SetsAgainst,
					volley.StreakString(sum.Streak))

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NO\tPLAYER\tPOSITION")
				for _, p := range roster {
					number, position := "-", "-"
					if p.Number != nil {
						number = strconv.Itoa(*p.Number)
					}
					if p.Position != nil && *p.Position != "" {
						position = *p.Position
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", number, p.FullName(), position)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season id (0 = any)")
	return cmd
}

func scorersCmd() *cobra.Command {
	var season, limit int
	cmd := &cobra.Command{
		Use:   "scorers <id>",
		Short: "Rank a team's top scorers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := teamID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, _ *config.Config, _ *db.Lazy, s *store.Store) error {
				scorers, err := s.TopScorers(ctx, id, optional(season), limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tPLAYER\tPOINTS")
				for i, sc := range scorers {
					fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, sc.Name, sc.Points)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season id (0 = any)")
	cmd.Flags().IntVar(&limit, "limit", volley.DefaultTopScorers, "Number of players")
	return cmd
}

func resultsCmd() *cobra.Command {
	var season, limit int
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List the most recent results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, _ *config.Config, _ *db.Lazy, s *store.Store) error {
				results, err := s.RecentResults(ctx, optional(season), limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tTEAM\tOPPONENT\tSCORE\tOUTCOME")
				for _, m := range results {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.FormattedDate(), m.TeamName, m.Opponent, m.Score(), m.Outcome)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season id (0 = any)")
	cmd.Flags().IntVar(&limit, "limit", volley.AllResultsLimit, "Number of matches")
	return cmd
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

func run(fn func(ctx context.Context, cfg *config.Config, pools *db.Lazy, s *store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return errors.New("DATABASE_URL is required")
	}

	pools := db.NewLazy(cfg)
	defer pools.Close()

	return fn(ctx, cfg, pools, store.New(pools, cfg.SchemaVariant, logger))
}

func teamID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid team id %q", arg)
	}
	return id, nil
}

// optional maps the 0 flag default to "no season".
func optional(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}
