// Package cargo adapts Rust crates to the Builder contract.
package cargo

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Builder)(nil)

// Name is the cargo manifest file name.
const Name = "Cargo.toml"

// customBuild is the kind cargo gives build scripts.
const customBuild = "custom-build"

// libKinds are built with --lib, which selects the package library without a name.
var libKinds = map[string]bool{
	"lib":        true,
	"rlib":       true,
	"dylib":      true,
	"cdylib":     true,
	"staticlib":  true,
	"proc-macro": true,
}

// Manifest is the part of `cargo read-manifest` output discovery reads.
type Manifest struct {
	Name    string           `json:"name"`
	Version string           `json:"version"`
	Targets []ManifestTarget `json:"targets"`
}

// ManifestTarget is one compilation target of a package.
type ManifestTarget struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}

// Builder drives cargo for one package manifest.
type Builder struct {
	*toolchain.Base
	targetDir string
}

// New reads the manifest at path, or in the directory path, through
// `cargo read-manifest` and returns a Builder with one target per manifest
// target. Build scripts are not targets.
func New(ctx context.Context, path string, exec ports.Executor, log ports.Logger, opts ...toolchain.Option) (*Builder, error) {
	project, err := toolchain.ResolveProject(domain.BackendCargo, path, Name)
	if err != nil {
		return nil, err
	}

	o, err := toolchain.Apply(domain.BackendCargo, opts...)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		Base:      toolchain.NewBase(project, o, exec, log),
		targetDir: filepath.Join(project.Dir, "target"),
	}
	if o.BuildDir != "" {
		b.targetDir = o.BuildDir
		if !filepath.IsAbs(b.targetDir) {
			b.targetDir = filepath.Join(project.Dir, b.targetDir)
		}
	}

	if err := b.Populate(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// TargetDir returns the directory cargo writes artifacts to.
func (b *Builder) TargetDir() string {
	return b.targetDir
}

// Discover queries cargo for the package manifest.
func (b *Builder) Discover(ctx context.Context, project domain.Project) (toolchain.Discovery, error) {
	res, err := b.Exec(ctx, domain.Command{
		Args: []string{b.Command(), "read-manifest", "--manifest-path", project.File},
		Dir:  project.Dir,
	})
	if err != nil {
		return toolchain.Discovery{}, zerr.Wrap(err, "read manifest")
	}

	m, err := ParseManifest(res.Lines)
	if err != nil {
		return toolchain.Discovery{}, err
	}

	release := filepath.Join(b.targetDir, "release")
	var targets []*domain.Target
	for _, mt := range m.Targets {
		if len(mt.Kind) == 0 || mt.Kind[0] == customBuild {
			continue
		}
		t := domain.NewTarget(domain.BackendCargo, mt.Name, filepath.Join(release, mt.Name), selector(mt.Kind[0], mt.Name))
		t.Kind = mt.Kind[0]
		targets = append(targets, t)
	}
	return toolchain.Discovery{Targets: targets}, nil
}

// ParseManifest decodes read-manifest output. Lines before the JSON document,
// such as cargo warnings merged from stderr, are skipped.
func ParseManifest(lines []string) (Manifest, error) {
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "{") {
			start = i
			break
		}
	}
	if start < 0 {
		return Manifest{}, zerr.Wrap(domain.ErrParseFailed, "no manifest in cargo output")
	}

	var m Manifest
	if err := json.Unmarshal([]byte(strings.Join(lines[start:], "\n")), &m); err != nil {
		return Manifest{}, errors.Join(domain.ErrParseFailed, zerr.Wrap(err, "decode manifest"))
	}
	return m, nil
}

// selector returns the cargo arguments selecting a target of kind.
func selector(kind, name string) []string {
	if libKinds[kind] {
		return []string{"--lib"}
	}
	return []string{"--" + kind, name}
}

// Build runs `cargo build --release --<kind> <name>` with the flags injected
// through RUSTFLAGS.
func (b *Builder) Build(ctx context.Context, t *domain.Target, flags domain.Flags) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}

	p := b.Project()
	args := []string{b.Command(), "build", "--release", "--manifest-path", p.File}
	if b.Options().BuildDir != "" {
		args = append(args, "--target-dir", b.targetDir)
	}
	args = append(args, t.BuildCommands...)
	if n := b.Options().Threads; n > 1 {
		args = append(args, "--jobs", strconv.Itoa(n))
	}

	return b.ExecBuild(ctx, t, domain.Command{
		Args: args,
		Dir:  p.Dir,
		Env:  toolchain.FlagEnv(toolchain.RustFlagVars, flags),
	})
}

// Run executes the release artifact of t.
func (b *Builder) Run(ctx context.Context, t *domain.Target) (domain.Result, error) {
	if err := b.CheckOwned(t); err != nil {
		return domain.Result{}, err
	}
	b.MustBeBuilt(t)

	return b.ExecRun(ctx, t, domain.Command{
		Args: []string{t.OutputPath},
		Dir:  b.Project().Dir,
	})
}
