package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/refsync/internal/core/domain"
	"github.com/custodia-labs/refsync/internal/core/ports/driving"
	"github.com/custodia-labs/refsync/internal/logger"
	"github.com/custodia-labs/refsync/internal/metrics"
)

var (
	syncSince  string
	syncDryRun bool
	listJSON   bool
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "Manage IGDB genres",
}

var genresSyncCmd = newGenresSyncCmd("sync", "fetch")

// fetchGenresCmd keeps the historical top-level command names working.
var fetchGenresCmd = newGenresSyncCmd("get-genres-from-igdb", "fetch-genres")

var genresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List synchronised genres",
	Args:  cobra.NoArgs,
	RunE:  runGenresList,
}

func newGenresSyncCmd(use string, aliases ...string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   "Fetch genres from IGDB and upsert them",
		Long: `Fetches every genre from IGDB in batches of 500 and upserts each batch
by IGDB id. Running it again leaves the table unchanged unless IGDB changed.

--since restricts the run to genres created or updated at or after a UNIX
timestamp. --from is accepted as an alias.`,
		Args: cobra.NoArgs,
		RunE: runGenresSync,
	}
	cmd.Flags().StringVar(&syncSince, "since", "", "only genres updated at or after this UNIX timestamp")
	cmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "fetch and transform without writing to the database")
	cmd.Flags().SetNormalizeFunc(sinceAlias)
	return cmd
}

// sinceAlias maps --from onto --since.
func sinceAlias(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "from" {
		name = "since"
	}
	return pflag.NormalizedName(name)
}

func init() {
	genresListCmd.Flags().BoolVar(&listJSON, "json", false, "output genres as JSON")
	genresCmd.AddCommand(genresSyncCmd, genresListCmd)
	rootCmd.AddCommand(genresCmd, fetchGenresCmd)
}

func runGenresSync(cmd *cobra.Command, _ []string) error {
	// Reject bad input before opening storage or touching the network.
	if _, err := domain.ParseSince(syncSince); err != nil {
		return fmt.Errorf("the --since option must be a UNIX timestamp: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	release, err := ensureServices(ctx, Options{
		DryRun:   syncDryRun,
		Progress: newProgress(cmd.OutOrStdout(), "genres"),
		Need:     NeedSync,
	})
	if err != nil {
		return err
	}
	defer release()

	if syncDryRun {
		cmd.Println(mutedStyle.Render("Dry run: nothing will be written."))
	}

	start := time.Now()
	result, runErr := syncOrchestrator.Run(ctx, driving.SyncRequest{Since: syncSince})
	recordRunMetrics(runErr, time.Since(start))

	if runErr != nil {
		if result != nil && result.Upserted > 0 {
			cmd.PrintErrf("%d genres were saved before the failure; re-run to resume.\n", result.Upserted)
		}
		return fmt.Errorf("genre sync failed: %w", runErr)
	}

	cmd.Println(renderSuccess("Genres from IGDB have been fetched and saved."))
	printSummary(ctx, cmd, result)
	return nil
}

// printSummary reports the run totals, preferring the orchestrator's status.
func printSummary(ctx context.Context, cmd *cobra.Command, result *driving.SyncResult) {
	status, err := syncOrchestrator.Status(ctx)
	if err == nil && status != nil {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("%d / %d processed, %d skipped (run %s, %s)",
			status.Progress.Processed, status.Progress.Total, status.Skipped,
			status.RunID, result.Duration.Round(time.Millisecond))))
		return
	}
	cmd.Println(mutedStyle.Render(fmt.Sprintf("%d / %d processed, %d skipped",
		result.Processed, result.Total, result.Skipped)))
}

func recordRunMetrics(runErr error, d time.Duration) {
	metrics.RecordRun(runErr, d, time.Now())
	if metricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(metricsTextfile); err != nil {
		logger.Warn("%v", err)
	}
}

func runGenresList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	release, err := ensureServices(ctx, Options{Need: NeedCatalogue})
	if err != nil {
		return err
	}
	defer release()

	genres, err := catalogueService.List(ctx)
	if err != nil {
		return fmt.Errorf("list genres: %w", err)
	}

	if listJSON {
		return outputGenresJSON(cmd, genres)
	}

	if len(genres) == 0 {
		cmd.Println("No genres stored. Run 'refsync genres sync' first.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAME")+"\t"+headerStyle.Render("SLUG"))
	for _, g := range genres {
		fmt.Fprintf(w, "%d\t%s\t%s\n", g.ExternalID, g.Name, g.Slug)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\n%d genres\n", len(genres))
	return nil
}

type genreJSON struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug,omitempty"`
	URL       string     `json:"url,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func outputGenresJSON(cmd *cobra.Command, genres []domain.Entity) error {
	out := make([]genreJSON, 0, len(genres))
	for _, g := range genres {
		item := genreJSON{ID: g.ExternalID, Name: g.Name, Slug: g.Slug, URL: g.URL}
		if !g.SourceUpdatedAt.IsZero() {
			ts := g.SourceUpdatedAt
			item.UpdatedAt = &ts
		}
		out = append(out, item)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
