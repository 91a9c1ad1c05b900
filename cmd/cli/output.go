package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSuccess(format string, args ...any) {
	color.Green("✓ "+format, args...)
}

func printWarning(format string, args ...any) {
	color.Yellow("⚠ "+format, args...)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func repoLabel(owner, name string, display *string) string {
	if display != nil && *display != "" {
		return *display
	}
	return owner + "/" + name
}

// trendLabel colors a trend for terminal output
func trendLabel(t domain.Trend) string {
	switch t {
	case domain.TrendIncreasing:
		return color.GreenString("↑ %s", t)
	case domain.TrendDecreasing:
		return color.RedString("↓ %s", t)
	default:
		return color.YellowString("→ %s", t)
	}
}

func renderComparison(stats *domain.ComparisonStats) {
	fmt.Printf("\nRepository comparison (%s)\n\n", stats.Period)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Repository", "Commits", "Active Days", "Regularity", "Max Gap", "Streak", "First Commit", "Last Commit", "Net LoC"})
	for _, r := range stats.Repos {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			repoLabel(r.Owner, r.Name, r.DisplayName),
			strconv.Itoa(r.TotalCommits),
			strconv.Itoa(r.ActiveDays),
			fmt.Sprintf("%.4f", r.Regularity),
			strconv.Itoa(r.MaxGap),
			strconv.Itoa(r.LongestStreak),
			orDash(r.FirstCommitDate),
			orDash(r.LastCommitDate),
			strconv.FormatInt(r.NetLoc, 10),
		})
	}
	table.Render()
}

func renderStory(story *domain.StorySummary) {
	fmt.Printf("\nStory: %s\n\n", repoLabel(story.Owner, story.Name, story.DisplayName))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Window", "Commits", "Active Days", "Streak", "Max Gap", "Regularity", "1st Half", "2nd Half", "Trend"})
	for _, w := range story.Windows {
		table.Append([]string{
			fmt.Sprintf("%dd", w.WindowDays),
			strconv.Itoa(w.TotalCommits),
			strconv.Itoa(w.ActiveDays),
			strconv.Itoa(w.LongestStreak),
			strconv.Itoa(w.MaxGap),
			fmt.Sprintf("%.4f", w.Regularity),
			strconv.Itoa(w.FirstHalfCommits),
			strconv.Itoa(w.SecondHalfCommits),
			trendLabel(w.Trend),
		})
	}
	table.Render()
}

func renderDaily(ref domain.RepoRef, daily []domain.DailyCommitRecord) {
	fmt.Printf("\nDaily commits: %s/%s (%d days)\n\n", ref.Owner, ref.Name, len(daily))

	peak := 0
	for _, d := range daily {
		peak = max(peak, d.Commits)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Day", "Commits", ""})
	for _, d := range daily {
		table.Append([]string{d.Day, strconv.Itoa(d.Commits), bar(d.Commits, peak, 30)})
	}
	table.Render()
}

// bar draws value as a block bar scaled so that peak fills width
func bar(value, peak, width int) string {
	if value <= 0 || peak <= 0 {
		return ""
	}
	n := max(1, value*width/peak)
	return strings.Repeat("█", n)
}

type syncRunView struct {
	ID      string            `json:"id"`
	RepoID  int64             `json:"repoId"`
	Status  domain.SyncStatus `json:"status"`
	Commits int               `json:"commits"`
	Days    int               `json:"activeDays"`
	Error   *string           `json:"error"`
}

func syncRunsView(runs []*domain.SyncRun) []syncRunView {
	views := make([]syncRunView, 0, len(runs))
	for _, r := range runs {
		views = append(views, syncRunView{
			ID:      r.ID,
			RepoID:  r.RepoID,
			Status:  r.Status,
			Commits: r.Commits,
			Days:    r.Days,
			Error:   r.Error,
		})
	}
	return views
}

func renderSyncRuns(runs []*domain.SyncRun, repos []*domain.Repository) {
	names := make(map[int64]string, len(repos))
	for _, r := range repos {
		names[r.ID] = r.FullName()
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Status", "Commits", "Active Days", "Error"})
	for _, r := range runs {
		status := color.GreenString(string(r.Status))
		if r.Status == domain.SyncStatusFailed {
			status = color.RedString(string(r.Status))
		}
		table.Append([]string{
			names[r.RepoID],
			status,
			strconv.Itoa(r.Commits),
			strconv.Itoa(r.Days),
			orDash(r.Error),
		})
	}
	table.Render()
}
