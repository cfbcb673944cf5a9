package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/util"
)

func TestNew_PrecedenceMerge(t *testing.T) {
	skills := []model.Skill{
		{Name: "vim", Source: model.SourceBuiltin, Path: "builtin/vim"},
		{Name: "vim", Source: model.SourceUser, Path: "user/vim"},
		{Name: "Nginx", Source: model.SourceUser, Path: "user/nginx"},
		{Name: "nginx", Source: model.SourceProject, Path: "project/nginx"},
		{Name: "aws-cli", Source: model.SourceBuiltin, Path: "builtin/aws-cli"},
	}

	lib := New(skills)

	if lib.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", lib.Len())
	}

	vim, err := lib.Get("vim")
	if err != nil {
		t.Fatalf("Get(vim) error = %v", err)
	}
	if vim.Source != model.SourceUser {
		t.Errorf("vim source = %s, want user", vim.Source)
	}

	// Case-insensitive collision: project wins over user
	nginx, err := lib.Get("nginx")
	if err != nil {
		t.Fatalf("Get(nginx) error = %v", err)
	}
	if nginx.Source != model.SourceProject {
		t.Errorf("nginx source = %s, want project", nginx.Source)
	}
}

func TestNew_FirstWinsWithinSource(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "vim", Source: model.SourceUser, Path: "first/vim.md"},
		{Name: "vim", Source: model.SourceUser, Path: "second/vim.md"},
	})

	vim, err := lib.Get("vim")
	if err != nil {
		t.Fatalf("Get(vim) error = %v", err)
	}
	if vim.Path != "first/vim.md" {
		t.Errorf("vim path = %q, want first root to win", vim.Path)
	}
}

func TestNew_LowerPrecedenceDoesNotDowngrade(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "jest-vitest", Source: model.SourceProject, Path: "project/jest"},
		{Name: "jest-vitest", Source: model.SourceUser, Path: "user/jest"},
	})

	skill, err := lib.Get("jest-vitest")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if skill.Source != model.SourceProject {
		t.Errorf("source = %s, want project to survive", skill.Source)
	}
}

func TestLibrary_SkillsSorted(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "vim", Source: model.SourceBuiltin},
		{Name: "aws-cli", Source: model.SourceBuiltin},
		{Name: "nginx", Source: model.SourceBuiltin},
	})

	want := []string{"aws-cli", "nginx", "vim"}
	skills := lib.Skills()
	if len(skills) != len(want) {
		t.Fatalf("Skills() returned %d skills, want %d", len(skills), len(want))
	}
	for i, name := range want {
		if skills[i].Name != name {
			t.Errorf("skills[%d].Name = %q, want %q", i, skills[i].Name, name)
		}
	}
}

func TestLibrary_Get(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "vim", Source: model.SourceBuiltin, Description: "Editing"},
	})

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"exact", "vim", false},
		{"case-insensitive", "VIM", false},
		{"surrounding whitespace", "  vim  ", false},
		{"unknown", "emacs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skill, err := lib.Get(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Get(%q) error = %v, want ErrNotFound", tt.query, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.query, err)
			}
			if skill.Name != "vim" {
				t.Errorf("Get(%q).Name = %q, want vim", tt.query, skill.Name)
			}
		})
	}
}

func TestLibrary_Has(t *testing.T) {
	lib := New([]model.Skill{{Name: "nginx", Source: model.SourceBuiltin}})

	if !lib.Has("nginx") {
		t.Error("Has(nginx) = false, want true")
	}
	if !lib.Has("NGINX") {
		t.Error("Has(NGINX) = false, want true")
	}
	if lib.Has("apache") {
		t.Error("Has(apache) = true, want false")
	}
}

func TestLibrary_BySource(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "aws-cli", Source: model.SourceBuiltin},
		{Name: "vim", Source: model.SourceBuiltin},
		{Name: "vim", Source: model.SourceUser},
		{Name: "docker", Source: model.SourceProject},
	})

	builtin := lib.BySource(model.SourceBuiltin)
	if len(builtin) != 1 || builtin[0].Name != "aws-cli" {
		t.Errorf("BySource(builtin) = %v, want just aws-cli", builtin)
	}

	user := lib.BySource(model.SourceUser)
	if len(user) != 1 || user[0].Name != "vim" {
		t.Errorf("BySource(user) = %v, want just vim", user)
	}

	project := lib.BySource(model.SourceProject)
	if len(project) != 1 || project[0].Name != "docker" {
		t.Errorf("BySource(project) = %v, want just docker", project)
	}
}

func TestLibrary_ByKind(t *testing.T) {
	lib := New([]model.Skill{
		{Name: "vim", Source: model.SourceBuiltin, Kind: model.KindReference},
		{Name: "scanner", Source: model.SourceUser, Kind: model.KindTool},
	})

	refs := lib.ByKind(model.KindReference)
	if len(refs) != 1 || refs[0].Name != "vim" {
		t.Errorf("ByKind(reference) = %v, want just vim", refs)
	}

	tools := lib.ByKind(model.KindTool)
	if len(tools) != 1 || tools[0].Name != "scanner" {
		t.Errorf("ByKind(tool) = %v, want just scanner", tools)
	}
}

func TestRoots(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", "/alpha:/beta")

	roots := Roots(config.Default(), workDir)

	if len(roots) != 5 {
		t.Fatalf("Roots() returned %d roots, want 5", len(roots))
	}

	if roots[0].Source != model.SourceBuiltin || roots[0].Path != "" {
		t.Errorf("roots[0] = %+v, want the builtin root", roots[0])
	}
	if roots[1].Source != model.SourceUser || roots[1].Path != "/alpha" {
		t.Errorf("roots[1] = %+v, want user /alpha", roots[1])
	}
	if roots[2].Source != model.SourceUser || roots[2].Path != "/beta" {
		t.Errorf("roots[2] = %+v, want user /beta", roots[2])
	}
	if roots[3].Source != model.SourceProject || roots[3].Path != filepath.Join(workDir, "skills") {
		t.Errorf("roots[3] = %+v, want project skills dir", roots[3])
	}
	if roots[4].Source != model.SourceProject || roots[4].Path != filepath.Join(workDir, ".claude", "skills") {
		t.Errorf("roots[4] = %+v, want project .claude skills dir", roots[4])
	}
}

func TestRoots_DefaultUserPaths(t *testing.T) {
	t.Setenv("SKILLKIT_SKILLS_PATH", "")

	roots := Roots(config.Default(), t.TempDir())

	if len(roots) != 5 {
		t.Fatalf("Roots() returned %d roots, want 5", len(roots))
	}
	if roots[1].Path != util.UserSkillsPath() {
		t.Errorf("roots[1].Path = %q, want default user skills path", roots[1].Path)
	}
	if roots[2].Path != util.ClaudeUserSkillsPath() {
		t.Errorf("roots[2].Path = %q, want claude user skills path", roots[2].Path)
	}
}

func TestRoots_ExtraRoots(t *testing.T) {
	workDir := t.TempDir()
	extraDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", "/alpha")

	cfg := config.Default()
	cfg.Library.ExtraRoots = []string{extraDir}

	roots := Roots(cfg, workDir)

	if len(roots) != 5 {
		t.Fatalf("Roots() returned %d roots, want 5", len(roots))
	}
	if roots[2].Source != model.SourceUser || roots[2].Path != extraDir {
		t.Errorf("roots[2] = %+v, want extra root ranked as user", roots[2])
	}
}

func TestRoots_ProjectAnchoredAtGitRoot(t *testing.T) {
	repoDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repoDir, ".git"), 0o755); err != nil {
		t.Fatalf("failed to create .git: %v", err)
	}
	nested := filepath.Join(repoDir, "cmd", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}
	t.Setenv("SKILLKIT_SKILLS_PATH", "/alpha")

	roots := Roots(config.Default(), nested)

	if len(roots) != 4 {
		t.Fatalf("Roots() returned %d roots, want 4", len(roots))
	}
	if roots[2].Path != filepath.Join(repoDir, "skills") {
		t.Errorf("roots[2].Path = %q, want project root anchored at %q", roots[2].Path, repoDir)
	}
}

func loadTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	return cfg
}

func TestLoad(t *testing.T) {
	userDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", userDir)

	// User root overrides the builtin vim and adds docker
	util.WriteFile(t, filepath.Join(userDir, "vim.md"),
		"---\nname: vim\ndescription: User-customized vim cheat sheet\n---\nUser content")
	util.WriteFile(t, filepath.Join(userDir, "docker.md"),
		"---\nname: docker\ndescription: Container basics\n---\nUser docker content")

	// Project root overrides the user docker
	util.WriteFile(t, filepath.Join(projectDir, "skills", "docker.md"),
		"---\nname: docker\ndescription: Project docker conventions\n---\nProject docker content")

	lib, err := Load(context.Background(), Options{
		Config:     loadTestConfig(),
		WorkingDir: projectDir,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Five builtins plus docker; vim collapsed by the override
	if lib.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", lib.Len())
	}

	vim, err := lib.Get("vim")
	if err != nil {
		t.Fatalf("Get(vim) error = %v", err)
	}
	if vim.Source != model.SourceUser {
		t.Errorf("vim source = %s, want user override", vim.Source)
	}
	if vim.Description != "User-customized vim cheat sheet" {
		t.Errorf("vim description = %q, want user version", vim.Description)
	}

	docker, err := lib.Get("docker")
	if err != nil {
		t.Fatalf("Get(docker) error = %v", err)
	}
	if docker.Source != model.SourceProject {
		t.Errorf("docker source = %s, want project override", docker.Source)
	}

	awsCli, err := lib.Get("aws-cli")
	if err != nil {
		t.Fatalf("Get(aws-cli) error = %v", err)
	}
	if awsCli.Source != model.SourceBuiltin {
		t.Errorf("aws-cli source = %s, want builtin", awsCli.Source)
	}
}

func TestLoad_SourceFilter(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", userDir)
	util.WriteFile(t, filepath.Join(userDir, "docker.md"),
		"---\nname: docker\ndescription: Container basics\n---\nContent")

	lib, err := Load(context.Background(), Options{
		Config:     loadTestConfig(),
		WorkingDir: t.TempDir(),
		Sources:    []model.Source{model.SourceBuiltin},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if lib.Len() != 5 {
		t.Errorf("Len() = %d, want the 5 builtins only", lib.Len())
	}
	for _, skill := range lib.Skills() {
		if skill.Source != model.SourceBuiltin {
			t.Errorf("skill %q source = %s, want builtin", skill.Name, skill.Source)
		}
	}
	if lib.Has("docker") {
		t.Error("docker should be filtered out with builtin-only sources")
	}
}

func TestLoad_SkipsUnparseableSkill(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", userDir)
	util.WriteFile(t, filepath.Join(userDir, "good.md"),
		"---\nname: good\ndescription: Parses fine\n---\nContent")
	util.WriteFile(t, filepath.Join(userDir, "broken.md"), "")

	lib, err := Load(context.Background(), Options{
		Config:     loadTestConfig(),
		WorkingDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !lib.Has("good") {
		t.Error("parseable skill missing from library")
	}
	// 5 builtins + good; broken.md skipped with a warning
	if lib.Len() != 6 {
		t.Errorf("Len() = %d, want 6", lib.Len())
	}
}

func TestLoad_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, Options{
		Config:     loadTestConfig(),
		WorkingDir: t.TempDir(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_CacheRoundTrip(t *testing.T) {
	userDir := t.TempDir()
	cacheDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", userDir)
	util.WriteFile(t, filepath.Join(userDir, "vim.md"),
		"---\nname: vim\ndescription: Cached vim\n---\nContent")

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Location = cacheDir

	opts := Options{Config: cfg, WorkingDir: t.TempDir()}

	lib1, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}

	cacheFile := filepath.Join(cacheDir, "library.json")
	if _, err := os.Stat(cacheFile); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	lib2, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if lib1.Len() != lib2.Len() {
		t.Errorf("cached reload Len() = %d, want %d", lib2.Len(), lib1.Len())
	}
	vim, err := lib2.Get("vim")
	if err != nil {
		t.Fatalf("Get(vim) after cached reload error = %v", err)
	}
	if vim.Description != "Cached vim" {
		t.Errorf("cached vim description = %q", vim.Description)
	}
	if vim.Source != model.SourceUser {
		t.Errorf("cached vim source = %s, want user", vim.Source)
	}
}

func TestLoad_NoCacheBypass(t *testing.T) {
	userDir := t.TempDir()
	cacheDir := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", userDir)
	util.WriteFile(t, filepath.Join(userDir, "vim.md"),
		"---\nname: vim\ndescription: Fresh vim\n---\nContent")

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Location = cacheDir

	_, err := Load(context.Background(), Options{
		Config:     cfg,
		WorkingDir: t.TempDir(),
		NoCache:    true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(cacheDir, "library.json")); !os.IsNotExist(err) {
		t.Error("cache file written despite NoCache")
	}
}

func TestLibrary_RootsAccessor(t *testing.T) {
	t.Setenv("SKILLKIT_SKILLS_PATH", t.TempDir())

	lib, err := Load(context.Background(), Options{
		Config:     loadTestConfig(),
		WorkingDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(lib.Roots()) != 4 {
		t.Errorf("Roots() returned %d roots, want 4", len(lib.Roots()))
	}

	if New(nil).Roots() != nil {
		t.Error("New() library should have nil roots")
	}
}
