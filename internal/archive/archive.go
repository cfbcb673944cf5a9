// Package archive bundles library subsets into tar.gz archives with a
// checksummed manifest, and extracts them back into a skill root.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devskills/skillkit/internal/model"
)

// ManifestName is the archive entry holding bundle metadata.
const ManifestName = "manifest.json"

// DefaultMaxEntrySize caps a single extracted entry at 10 MiB.
const DefaultMaxEntrySize = 10 << 20

// Manifest describes the contents of a bundle.
type Manifest struct {
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	SkillCount int       `json:"skill_count"`
	Skills     []Entry   `json:"skills"`
}

// Entry is one skill file recorded in the manifest.
type Entry struct {
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	SHA256     string    `json:"sha256"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// CreateOptions filters which skills go into a bundle.
type CreateOptions struct {
	Source model.Source // Filter by source (empty = all)
	Kind   model.Kind   // Filter by kind (empty = all)
	Names  []string     // Filter by skill name (empty = all)
	Since  time.Time    // Only skills modified at or after this time
	Before time.Time    // Only skills modified strictly before this time
}

// ExtractOptions configures bundle extraction.
type ExtractOptions struct {
	TargetDir    string     // Skill root to extract into (empty = read only)
	Kind         model.Kind // Filter by kind during extraction
	Names        []string   // Filter by skill name during extraction
	DryRun       bool       // Preview without writing files
	MaxEntrySize int64      // Per-entry size cap (defaults to DefaultMaxEntrySize)
}

// Create writes the selected skills as a tar.gz bundle. Skill documents
// are stored verbatim under skills/<name>/SKILL.md with the manifest as
// the final entry. Returns the manifest that was written.
func Create(skills []model.Skill, w io.Writer, opts CreateOptions) (*Manifest, error) {
	filtered := filterSkills(skills, opts)
	if len(filtered) == 0 {
		return nil, errors.New("no skills match the requested filters")
	}

	gzWriter := gzip.NewWriter(w)
	defer gzWriter.Close()
	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	manifest := &Manifest{
		Version:    "1.0",
		CreatedAt:  time.Now(),
		SkillCount: len(filtered),
		Skills:     make([]Entry, 0, len(filtered)),
	}

	for _, skill := range filtered {
		data := []byte(skill.Content)
		filename := entryPath(skill.Name)

		manifest.Skills = append(manifest.Skills, Entry{
			Name:       skill.Name,
			Source:     string(skill.Source),
			Kind:       string(skill.Kind),
			Filename:   filename,
			Size:       int64(len(data)),
			SHA256:     fmt.Sprintf("%x", sha256.Sum256(data)),
			ModifiedAt: skill.ModifiedAt,
		})

		header := &tar.Header{
			Name:    filename,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: skill.ModifiedAt,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("failed to write tar header for %s: %w", skill.Name, err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write skill data for %s: %w", skill.Name, err)
		}
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	manifestHeader := &tar.Header{
		Name:    ManifestName,
		Mode:    0o644,
		Size:    int64(len(manifestData)),
		ModTime: manifest.CreatedAt,
	}
	if err := tarWriter.WriteHeader(manifestHeader); err != nil {
		return nil, fmt.Errorf("failed to write manifest header: %w", err)
	}
	if _, err := tarWriter.Write(manifestData); err != nil {
		return nil, fmt.Errorf("failed to write manifest data: %w", err)
	}

	return manifest, nil
}

// Extract reads a bundle, verifies every manifest entry against its
// checksum, and materializes the selected skills under TargetDir as
// <name>/SKILL.md. The returned skills carry the manifest metadata and
// the verbatim document content.
func Extract(r io.Reader, opts ExtractOptions) ([]model.Skill, *Manifest, error) {
	maxSize := opts.MaxEntrySize
	if maxSize <= 0 {
		maxSize = DefaultMaxEntrySize
	}

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer gzReader.Close()
	tarReader := tar.NewReader(gzReader)

	// The manifest is the final entry, so buffer files until it arrives.
	var manifest *Manifest
	files := make(map[string][]byte)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read bundle entry: %w", err)
		}
		if err := checkEntryName(header.Name); err != nil {
			return nil, nil, err
		}
		if header.Size > maxSize {
			return nil, nil, fmt.Errorf("bundle entry %s exceeds size cap (%d > %d bytes)", header.Name, header.Size, maxSize)
		}

		data, err := io.ReadAll(io.LimitReader(tarReader, maxSize+1))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read bundle entry %s: %w", header.Name, err)
		}
		if int64(len(data)) > maxSize {
			return nil, nil, fmt.Errorf("bundle entry %s exceeds size cap (%d bytes)", header.Name, maxSize)
		}

		if header.Name == ManifestName {
			if err := json.Unmarshal(data, &manifest); err != nil {
				return nil, nil, fmt.Errorf("failed to parse manifest: %w", err)
			}
			continue
		}
		files[header.Name] = data
	}
	if manifest == nil {
		return nil, nil, errors.New("bundle is missing manifest.json")
	}

	skills := make([]model.Skill, 0, len(manifest.Skills))
	for _, entry := range manifest.Skills {
		data, ok := files[entry.Filename]
		if !ok {
			return nil, nil, fmt.Errorf("manifest lists %s but the bundle does not contain it", entry.Filename)
		}
		if sum := fmt.Sprintf("%x", sha256.Sum256(data)); sum != entry.SHA256 {
			return nil, nil, fmt.Errorf("checksum mismatch for %s", entry.Filename)
		}

		if opts.Kind != "" && model.Kind(entry.Kind) != opts.Kind {
			continue
		}
		if !matchesName(entry.Name, opts.Names) {
			continue
		}

		skill := model.Skill{
			Name:       entry.Name,
			Source:     model.Source(entry.Source),
			Kind:       model.Kind(entry.Kind),
			Content:    string(data),
			ModifiedAt: entry.ModifiedAt,
		}
		if opts.TargetDir != "" && !opts.DryRun {
			path, err := writeSkill(entry, data, opts.TargetDir)
			if err != nil {
				return nil, nil, err
			}
			skill.Path = path
			skill.Dir = filepath.Dir(path)
		}
		skills = append(skills, skill)
	}

	return skills, manifest, nil
}

func filterSkills(skills []model.Skill, opts CreateOptions) []model.Skill {
	filtered := make([]model.Skill, 0, len(skills))
	for _, skill := range skills {
		if opts.Source != "" && skill.Source != opts.Source {
			continue
		}
		if opts.Kind != "" && skill.Kind != opts.Kind {
			continue
		}
		if !matchesName(skill.Name, opts.Names) {
			continue
		}
		if !opts.Since.IsZero() && skill.ModifiedAt.Before(opts.Since) {
			continue
		}
		if !opts.Before.IsZero() && !skill.ModifiedAt.Before(opts.Before) {
			continue
		}
		filtered = append(filtered, skill)
	}
	return filtered
}

func matchesName(name string, names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// checkEntryName rejects absolute paths and parent traversal so a
// hostile bundle cannot write outside the target directory.
func checkEntryName(name string) error {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("unsafe bundle entry path %q", name)
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return fmt.Errorf("unsafe bundle entry path %q", name)
		}
	}
	return nil
}

func writeSkill(entry Entry, data []byte, targetDir string) (string, error) {
	dir := filepath.Join(targetDir, sanitizeFilename(entry.Name))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func entryPath(name string) string {
	return "skills/" + sanitizeFilename(name) + "/SKILL.md"
}

// sanitizeFilename replaces characters that are unsafe in file names.
func sanitizeFilename(name string) string {
	result := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			result = append(result, '_')
		default:
			result = append(result, r)
		}
	}
	return string(result)
}
