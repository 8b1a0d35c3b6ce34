package config

// Assemblyfile represents the structure of the assembly.yaml configuration file.
type Assemblyfile struct {
	Threads  int               `yaml:"threads"`
	BuildDir string            `yaml:"build_dir"`
	JSONLogs bool              `yaml:"json_logs"`
	Tools    map[string]string `yaml:"tools"`
	Bazel    BazelDTO          `yaml:"bazel"`
}

// BazelDTO restricts which BUILD rules are scanned.
type BazelDTO struct {
	Languages []string `yaml:"languages"`
	Rules     []string `yaml:"rules"`
}
