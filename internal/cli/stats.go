package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/backup"
	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/library"
	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/ui"
	"github.com/devskills/skillkit/internal/util"
)

// SourceStats holds statistics for a single library tier.
type SourceStats struct {
	Source     string   `json:"source"`
	SkillCount int      `json:"skill_count"`
	DiskUsage  int64    `json:"disk_usage_bytes"`
	Paths      []string `json:"paths,omitempty"`
}

// Stats holds overall statistics.
type Stats struct {
	Sources        []SourceStats  `json:"sources"`
	ByKind         map[string]int `json:"by_kind"`
	TotalSkills    int            `json:"total_skills"`
	TotalDiskUsage int64          `json:"total_disk_usage_bytes"`
	NewestSkill    string         `json:"newest_skill,omitempty"`
	NewestModified *time.Time     `json:"newest_modified,omitempty"`
	BackupCount    int            `json:"backup_count"`
	BackupSize     int64          `json:"backup_size_bytes"`
	LastBackup     *time.Time     `json:"last_backup,omitempty"`
	CacheEnabled   bool           `json:"cache_enabled"`
	CacheSize      int64          `json:"cache_size_bytes"`
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Display library statistics and system information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format for scripting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Debug("collecting statistics")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stats, err := collectStats(ctx, cmd, cfg)
			if err != nil {
				return fmt.Errorf("failed to collect statistics: %w", err)
			}

			if cmd.Bool("json") {
				return outputAnyJSON(stats)
			}

			return outputStatsTable(stats)
		},
	}
}

// collectStats gathers statistics across the library tiers, backups,
// and the parse cache.
func collectStats(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*Stats, error) {
	stats := &Stats{
		ByKind:       make(map[string]int),
		CacheEnabled: cfg.Cache.Enabled,
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return nil, err
	}

	for _, source := range model.AllSources() {
		stats.Sources = append(stats.Sources, collectSourceStats(lib, source))
	}

	var newest model.Skill
	for _, s := range lib.Skills() {
		stats.TotalSkills++
		stats.ByKind[s.Kind.String()]++
		if s.ModifiedAt.After(newest.ModifiedAt) {
			newest = s
		}
	}
	if newest.Name != "" && !newest.ModifiedAt.IsZero() {
		stats.NewestSkill = newest.Name
		modified := newest.ModifiedAt
		stats.NewestModified = &modified
	}
	for _, src := range stats.Sources {
		stats.TotalDiskUsage += src.DiskUsage
	}

	if backupStats, err := backup.NewManager(util.ExpandPath(cfg.Backup.Location, "")).GetStats(); err == nil {
		stats.BackupCount = backupStats.TotalBackups
		stats.BackupSize = backupStats.TotalSize
		if !backupStats.NewestBackup.IsZero() {
			last := backupStats.NewestBackup
			stats.LastBackup = &last
		}
	} else {
		logging.Debug("no backup statistics available", logging.Err(err))
	}

	if cfg.Cache.Enabled {
		if size, err := calculateDiskUsage(util.ExpandPath(cfg.Cache.Location, "")); err == nil {
			stats.CacheSize = size
		}
	}

	return stats, nil
}

// collectSourceStats gathers statistics for a single tier. Builtin
// skills live in the binary, so their tier reports no paths and no
// disk usage.
func collectSourceStats(lib *library.Library, source model.Source) SourceStats {
	stats := SourceStats{
		Source:     source.String(),
		SkillCount: len(lib.BySource(source)),
	}

	if source == model.SourceBuiltin {
		return stats
	}

	for _, root := range lib.Roots() {
		if root.Source != source {
			continue
		}
		stats.Paths = append(stats.Paths, root.Path)
		if size, err := calculateDiskUsage(root.Path); err == nil {
			stats.DiskUsage += size
		}
	}

	return stats
}

// calculateDiskUsage recursively calculates disk usage for a directory.
func calculateDiskUsage(path string) (int64, error) {
	var totalSize int64

	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to calculate disk usage: %w", err)
	}

	return totalSize, nil
}

// outputStatsTable outputs statistics in human-readable table format.
func outputStatsTable(stats *Stats) error {
	fmt.Println(ui.Bold("skillkit Statistics"))
	fmt.Println()

	fmt.Println(ui.Bold("Sources:"))
	for _, src := range stats.Sources {
		fmt.Printf("  %s:\n", ui.Info(src.Source))
		fmt.Printf("    Skills:     %d\n", src.SkillCount)
		if src.Source == model.SourceBuiltin.String() {
			fmt.Printf("    Disk Usage: %s\n", ui.Dim("embedded"))
			continue
		}
		fmt.Printf("    Disk Usage: %s\n", formatBytes(src.DiskUsage))
		if len(src.Paths) > 0 {
			fmt.Printf("    Paths:      %s\n", src.Paths[0])
			for i := 1; i < len(src.Paths); i++ {
				fmt.Printf("                %s\n", src.Paths[i])
			}
		}
	}
	fmt.Println()

	fmt.Println(ui.Bold("Totals:"))
	fmt.Printf("  Skills:     %d\n", stats.TotalSkills)
	for _, kind := range model.AllKinds() {
		if count, ok := stats.ByKind[kind.String()]; ok {
			fmt.Printf("    %-10s %d\n", kind.String()+":", count)
		}
	}
	fmt.Printf("  Disk Usage: %s\n", formatBytes(stats.TotalDiskUsage))
	if stats.NewestSkill != "" && stats.NewestModified != nil {
		fmt.Printf("  Newest:     %s (%s)\n", stats.NewestSkill, formatDuration(time.Since(*stats.NewestModified)))
	}
	fmt.Println()

	fmt.Println(ui.Bold("Backups:"))
	fmt.Printf("  Count: %d\n", stats.BackupCount)
	fmt.Printf("  Size:  %s\n", formatBytes(stats.BackupSize))
	if stats.LastBackup != nil {
		fmt.Printf("  Last:  %s (%s)\n",
			stats.LastBackup.Format("2006-01-02 15:04:05"),
			formatDuration(time.Since(*stats.LastBackup)))
	} else {
		fmt.Println("  Last:  None")
	}
	fmt.Println()

	fmt.Println(ui.Bold("Cache:"))
	if stats.CacheEnabled {
		fmt.Printf("  Status: %s\n", ui.Success("Enabled"))
		fmt.Printf("  Size:   %s\n", formatBytes(stats.CacheSize))
	} else {
		fmt.Printf("  Status: %s\n", ui.Warning("Disabled"))
	}

	return nil
}

// formatBytes formats byte count in human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	if days < 30 {
		return fmt.Sprintf("%d days ago", days)
	}
	months := days / 30
	if months == 1 {
		return "1 month ago"
	}
	if months < 12 {
		return fmt.Sprintf("%d months ago", months)
	}
	years := months / 12
	if years == 1 {
		return "1 year ago"
	}
	return fmt.Sprintf("%d years ago", years)
}
