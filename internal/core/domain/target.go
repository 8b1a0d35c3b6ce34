package domain

// Target is one buildable unit discovered from a native project description.
//
// A Target is owned by exactly one Builder. It records the backend it came from
// but holds no reference to the Builder itself; building and running always go
// through the owning Builder.
type Target struct {
	// Name is unique within the owning Builder.
	Name string
	// OutputPath is where the built artifact is expected.
	OutputPath string
	// BuildCommands holds backend specific build directives: the recipe lines
	// for make, the argument vector for compile commands, the label for bazel.
	BuildCommands []string
	// Kind is an optional backend specific discriminator (e.g. cargo bin/lib/bench/test).
	Kind string
	// WorkDir is the directory the target is built from, when it differs from the project dir.
	WorkDir string
	// Label is the fully qualified bazel label (//pkg:name).
	Label string
	// Backend identifies the adapter that discovered the target.
	Backend Backend

	built bool
}

// NewTarget creates an unbuilt target.
func NewTarget(backend Backend, name, outputPath string, buildCommands []string) *Target {
	return &Target{
		Name:          name,
		OutputPath:    outputPath,
		BuildCommands: buildCommands,
		Backend:       backend,
	}
}

// Built reports whether the target has been built successfully.
func (t *Target) Built() bool {
	return t.built
}

// MarkBuilt records a successful build. Only the owning Builder calls it.
func (t *Target) MarkBuilt() {
	t.built = true
}

// String returns the label when present, otherwise the name.
func (t *Target) String() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}
