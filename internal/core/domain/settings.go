package domain

// Settings holds user configuration for constructing builders.
type Settings struct {
	// Commands overrides the executable used for a backend.
	Commands map[Backend]string
	// Threads is passed to make as -j<Threads>.
	Threads int
	// BuildDir is the out-of-source build tree used by cmake.
	BuildDir string
	// BazelLanguages restricts the rule language prefixes scanned in BUILD files.
	BazelLanguages []string
	// BazelRules restricts the rule kinds scanned in BUILD files.
	BazelRules []string
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
}

// Command returns the configured executable for b, or its default.
func (s Settings) Command(b Backend) string {
	if cmd, ok := s.Commands[b]; ok && cmd != "" {
		return cmd
	}
	return b.DefaultCommand()
}
