package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/commit-cadence/internal/aggregator"
	"github.com/kurihiro0119/commit-cadence/internal/collector"
	"github.com/kurihiro0119/commit-cadence/internal/config"
	"github.com/kurihiro0119/commit-cadence/internal/domain"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/ranking"
	"github.com/kurihiro0119/commit-cadence/internal/snapshot"
	"github.com/kurihiro0119/commit-cadence/internal/stats"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
	"github.com/kurihiro0119/commit-cadence/internal/storage/postgres"
	"github.com/kurihiro0119/commit-cadence/internal/storage/sqlite"
	"github.com/kurihiro0119/commit-cadence/pkg/client"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	outputJSON  bool
	useRemote   bool
	syncDays    int
	compareDays int
	dailyDays   int
	sortField   string
	sortDir     string
	windowsFlag string
	displayName string
	outPath     string
	outFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Commit cadence analytics",
	Long: `A CLI tool for comparing how regularly GitHub repositories receive commits.

It syncs daily commit counts from GitHub into a local database and reports
gaps, streaks, regularity and trends per repository.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return logger.Initialize(cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

var addCmd = &cobra.Command{
	Use:   "add owner/name",
	Short: "Track a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var syncCmd = &cobra.Command{
	Use:   "sync [owner/name...]",
	Short: "Sync daily commit counts from GitHub",
	Long:  `Fetch commit history for the given repositories, or every tracked repository, and store daily counts.`,
	RunE:  runSync,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare repositories",
	Long:  `Display totals, active days, regularity, gaps and streaks for every tracked repository.`,
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

var storyCmd = &cobra.Command{
	Use:   "story [repo-id]",
	Short: "Show how a repository's activity evolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runStory,
}

var dailyCmd = &cobra.Command{
	Use:   "daily [repo-id]",
	Short: "Show daily commit counts of a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaily,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export stored daily rows to a file",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	addCmd.Flags().StringVar(&displayName, "display-name", "", "name shown instead of owner/name")

	syncCmd.Flags().IntVar(&syncDays, "days", 0, "days of history to sync (default DEFAULT_DAYS)")

	compareCmd.Flags().IntVar(&compareDays, "days", 0, "window length in days (default DEFAULT_DAYS)")
	compareCmd.Flags().StringVar(&sortField, "sort", "name", "sort field (name, firstCommitDate, totalCommits, lastCommitDate)")
	compareCmd.Flags().StringVar(&sortDir, "dir", "asc", "sort direction (asc, desc)")
	compareCmd.Flags().BoolVar(&useRemote, "remote", false, "query the API server instead of the local database")

	storyCmd.Flags().StringVar(&windowsFlag, "windows", "30,90", "comma separated window lengths in days")
	storyCmd.Flags().BoolVar(&useRemote, "remote", false, "query the API server instead of the local database")

	dailyCmd.Flags().IntVar(&dailyDays, "days", 90, "window length in days")
	dailyCmd.Flags().BoolVar(&useRemote, "remote", false, "query the API server instead of the local database")

	snapshotCmd.Flags().StringVar(&outPath, "out", "", "output file (default SNAPSHOT_DIR/snapshot.<format>)")
	snapshotCmd.Flags().StringVar(&outFormat, "format", "json", "output format (json, parquet)")

	rootCmd.AddCommand(addCmd, syncCmd, compareCmd, storyCmd, dailyCmd, snapshotCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func getAggregator(cfg *config.Config, store storage.Storage) (aggregator.Aggregator, error) {
	scorer, err := stats.NewRegularityScorer(cfg.Regularity)
	if err != nil {
		return nil, err
	}
	return aggregator.NewAggregator(store,
		aggregator.WithWorkers(cfg.AggregatorWorkers),
		aggregator.WithRegularityScorer(scorer),
	), nil
}

func daysOrDefault(cfg *config.Config, days int) int {
	if days > 0 {
		return days
	}
	return cfg.DefaultDays
}

// splitRepo parses "owner/name"
func splitRepo(s string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository must be owner/name, got %q", s)
	}
	return owner, name, nil
}

func parseRepoID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid repository id %q", s)
	}
	return id, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	owner, name, err := splitRepo(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	repo := &domain.Repository{Owner: owner, Name: name}
	if displayName != "" {
		repo.DisplayName = &displayName
	}
	id, err := store.SaveRepository(cmd.Context(), repo)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(map[string]any{"id": id, "owner": owner, "name": name})
	}
	printSuccess("Tracking %s/%s (id %d)", owner, name, id)
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateCollector(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	window := daysOrDefault(cfg, syncDays)
	if err := aggregator.ValidateDays(window); err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	var repos []*domain.Repository
	if len(args) == 0 {
		repos, err = store.GetRepositories(ctx)
		if err != nil {
			return err
		}
	}
	for _, arg := range args {
		owner, name, err := splitRepo(arg)
		if err != nil {
			return err
		}
		if _, err := store.SaveRepository(ctx, &domain.Repository{Owner: owner, Name: name}); err != nil {
			return err
		}
		repo, err := store.GetRepositoryByName(ctx, owner, name)
		if err != nil {
			return err
		}
		repos = append(repos, repo)
	}
	if len(repos) == 0 {
		printWarning("No repositories tracked yet; run `cadence add owner/name` first")
		return nil
	}

	bar := progressbar.NewOptions(len(repos),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan]Syncing[reset]"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)

	syncer := collector.NewSyncer(collector.NewGitHubCollector(cfg.GitHubToken), store)
	runs, syncErr := syncer.SyncAll(ctx, repos, window, func(repo string, progress float64) {
		bar.Describe(fmt.Sprintf("[cyan]Syncing[reset] %s", repo))
		_ = bar.Add(1)
	})

	if outputJSON {
		if err := printJSON(syncRunsView(runs)); err != nil {
			return err
		}
		return syncErr
	}
	renderSyncRuns(runs, repos)
	return syncErr
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	field, err := ranking.ParseSortField(sortField)
	if err != nil {
		return err
	}
	direction, err := ranking.ParseSortDirection(sortDir)
	if err != nil {
		return err
	}
	window := daysOrDefault(cfg, compareDays)

	var result *domain.ComparisonStats
	if useRemote {
		result, err = client.NewClient(cfg.APIEndpoint).GetStats(cmd.Context(), window, field, direction)
	} else {
		err = withAggregator(func(agg aggregator.Aggregator) error {
			var err error
			result, err = agg.CompareRepos(cmd.Context(), window, field, direction)
			return err
		})
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(result)
	}
	renderComparison(result)
	return nil
}

func runStory(cmd *cobra.Command, args []string) error {
	id, err := parseRepoID(args[0])
	if err != nil {
		return err
	}
	windows, err := aggregator.ParseWindows(windowsFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var story *domain.StorySummary
	if useRemote {
		story, err = client.NewClient(cfg.APIEndpoint).GetRepoStory(cmd.Context(), id, windows)
	} else {
		err = withAggregator(func(agg aggregator.Aggregator) error {
			var err error
			story, err = agg.GetRepoStory(cmd.Context(), id, windows)
			return err
		})
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(story)
	}
	renderStory(story)
	return nil
}

func runDaily(cmd *cobra.Command, args []string) error {
	id, err := parseRepoID(args[0])
	if err != nil {
		return err
	}
	if err := aggregator.ValidateDays(dailyDays); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var ref domain.RepoRef
	var daily []domain.DailyCommitRecord
	if useRemote {
		rd, err := client.NewClient(cfg.APIEndpoint).GetRepoDaily(cmd.Context(), id, dailyDays)
		if err != nil {
			return err
		}
		ref, daily = rd.Repo, rd.Daily
	} else {
		err := withAggregator(func(agg aggregator.Aggregator) error {
			rd, err := agg.GetRepoDaily(cmd.Context(), id, dailyDays)
			if err != nil {
				return err
			}
			ref, daily = rd.Repo.Ref(), rd.Daily
			return nil
		})
		if err != nil {
			return err
		}
	}

	if outputJSON {
		return printJSON(client.RepoDaily{Repo: ref, Daily: daily})
	}
	renderDaily(ref, daily)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(outFormat)
	if format != "json" && format != "parquet" {
		return fmt.Errorf("format must be json or parquet, got %q", outFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = filepath.Join(cfg.SnapshotDir, "snapshot."+format)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	snap, err := snapshot.Build(cmd.Context(), store, time.Now())
	if err != nil {
		return err
	}

	if format == "parquet" {
		err = snapshot.WriteParquet(snap, path)
	} else {
		err = snapshot.WriteJSON(snap, path)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(map[string]any{"path": path, "repos": len(snap.Repos), "dailyEntries": snap.DailyEntries()})
	}
	printSuccess("Snapshot written to %s (%d repos, %d daily entries)", path, len(snap.Repos), snap.DailyEntries())
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	if outputJSON {
		return printJSON(map[string]string{"version": version})
	}
	fmt.Println(version)
	return nil
}

// withAggregator opens local storage for the duration of fn
func withAggregator(fn func(agg aggregator.Aggregator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	agg, err := getAggregator(cfg, store)
	if err != nil {
		return err
	}
	return fn(agg)
}
