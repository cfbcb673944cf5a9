// Package skills ships the builtin skill library embedded in the
// binary. The five builtin skills cover AWS CLI usage, GitHub Actions
// workflows, Jest/Vitest testing, Nginx configuration and Vim motions.
package skills

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/parser"
)

//go:embed skills
var embedded embed.FS

// FS returns the embedded skill tree, rooted so document paths look
// like "aws-cli/SKILL.md". Pass this to the installer when
// materializing builtin skills.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "skills")
	if err != nil {
		panic("embedded skills fs: " + err.Error())
	}
	return sub
}

// Load parses every builtin skill from the embedded tree, sorted by
// name. Source is set to builtin and Path/Dir are relative to FS().
func Load() ([]model.Skill, error) {
	fsys := FS()

	var skills []model.Skill
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		base := path.Base(p)
		isSkillFile := base == parser.SkillFileName
		isFlatDoc := !strings.Contains(p, "/") && strings.EqualFold(path.Ext(p), ".md")
		if !isSkillFile && !isFlatDoc {
			return nil
		}

		skill, err := parser.ParseSkillFS(fsys, p)
		if err != nil {
			return fmt.Errorf("builtin skill %q: %w", p, err)
		}
		skill.Source = model.SourceBuiltin
		skills = append(skills, skill)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(skills, func(i, j int) bool {
		return skills[i].Name < skills[j].Name
	})
	return skills, nil
}

// Get returns a single builtin skill by name.
func Get(name string) (model.Skill, error) {
	all, err := Load()
	if err != nil {
		return model.Skill{}, err
	}
	for _, skill := range all {
		if strings.EqualFold(skill.Name, name) {
			return skill, nil
		}
	}
	return model.Skill{}, fmt.Errorf("builtin skill %q not found", name)
}

// Names returns the names of all builtin skills, sorted.
func Names() ([]string, error) {
	all, err := Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, skill := range all {
		names = append(names, skill.Name)
	}
	return names, nil
}
