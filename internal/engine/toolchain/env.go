package toolchain

import (
	"os"

	"go.trai.ch/assembly/internal/core/domain"
)

// CompilerFlagVars are the variables C and C++ tools read their flags from.
var CompilerFlagVars = []string{"CFLAGS", "CXXFLAGS"}

// RustFlagVars is the variable cargo reads its compiler flags from.
var RustFlagVars = []string{"RUSTFLAGS"}

// FlagEnv builds the child environment overlay that injects f into each of
// names. Add mode extends the value inherited from the parent process. The
// parent environment is only read.
func FlagEnv(names []string, f domain.Flags) map[string]string {
	if f.IsZero() {
		return nil
	}

	env := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			env[name] = v
		}
		domain.Inject(env, name, f)
	}
	return env
}
