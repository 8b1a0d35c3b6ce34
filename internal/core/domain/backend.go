package domain

// Backend identifies the native build tool wrapped by a Builder.
type Backend string

const (
	// BackendMake wraps GNU make driven by a Makefile.
	BackendMake Backend = "make"
	// BackendCMake wraps cmake driven by a CMakeLists.txt.
	BackendCMake Backend = "cmake"
	// BackendCargo wraps cargo driven by a Cargo.toml.
	BackendCargo Backend = "cargo"
	// BackendNinja wraps ninja driven by a build.ninja.
	BackendNinja Backend = "ninja"
	// BackendBazel wraps bazel driven by BUILD files in a workspace.
	BackendBazel Backend = "bazel"
	// BackendCompileCommands replays entries of a compile_commands.json database.
	BackendCompileCommands Backend = "compile_commands"
)

// String returns the backend name.
func (b Backend) String() string {
	return string(b)
}

// DefaultCommand returns the conventional executable name for the backend.
// It is empty for backends that do not wrap a single tool.
func (b Backend) DefaultCommand() string {
	switch b {
	case BackendMake, BackendCMake, BackendCargo, BackendNinja, BackendBazel:
		return string(b)
	default:
		return ""
	}
}

// Backends lists every supported backend in a stable order.
func Backends() []Backend {
	return []Backend{
		BackendMake,
		BackendCMake,
		BackendCargo,
		BackendNinja,
		BackendBazel,
		BackendCompileCommands,
	}
}

// Project describes the project description a Builder was constructed from.
type Project struct {
	Backend Backend
	// File is the absolute path of the project description file.
	File string
	// Dir is the absolute directory containing File.
	Dir string
}
