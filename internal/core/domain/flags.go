package domain

// Flags carries extra compiler flags for a build.
//
// Replace, when set, overwrites the flag variable wholesale. Otherwise Add is
// appended to whatever value the variable already has.
type Flags struct {
	Add     string
	Replace string
}

// IsZero reports whether no flags were supplied.
func (f Flags) IsZero() bool {
	return f.Add == "" && f.Replace == ""
}

// Effective returns the flags that end up on the command line for backends
// that cannot append to an existing value.
func (f Flags) Effective() string {
	if f.Replace != "" {
		return f.Replace
	}
	return f.Add
}

// Inject applies f to env[name].
func Inject(env map[string]string, name string, f Flags) {
	switch {
	case f.Replace != "":
		env[name] = f.Replace
	case f.Add != "":
		if prior := env[name]; prior != "" {
			env[name] = prior + " " + f.Add
			return
		}
		env[name] = f.Add
	}
}
