package bazel

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/assembly/internal/adapters/fs"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

// Languages and RuleTypes span the rule kinds the scanner recognizes.
var (
	Languages = []string{"cc", "py"}
	RuleTypes = []string{"binary", "library", "test"}
)

// BuildFileNames are the package marker files, in increasing precedence.
var BuildFileNames = []string{"BUILD", "BUILD.bazel"}

// outputTrees holds the convenience symlinks bazel creates in the workspace.
var outputTrees = []string{"bazel-*"}

var nameAttr = regexp.MustCompile(`\bname\s*=\s*["']([^"']+)["']`)

// RuleKinds returns the rule kinds from Languages × RuleTypes, restricted to
// the given languages and rule types when those are non-empty.
func RuleKinds(languages, rules []string) []string {
	var kinds []string
	for _, lang := range Languages {
		if len(languages) > 0 && !lo.Contains(languages, lang) {
			continue
		}
		for _, rule := range RuleTypes {
			if len(rules) > 0 && !lo.Contains(rules, rule) {
				continue
			}
			kinds = append(kinds, lang+"_"+rule)
		}
	}
	return kinds
}

// Scanner finds rules in BUILD files with a lexical scan. Rules produced by
// macros are not seen.
type Scanner struct {
	Languages []string
	Rules     []string
}

type rule struct {
	kind  string
	name  string
	label string
	pkg   string
}

// Discover walks the workspace for BUILD files, skipping bazel's output trees.
func (s Scanner) Discover(_ context.Context, project domain.Project) (toolchain.Discovery, error) {
	kinds := RuleKinds(s.Languages, s.Rules)
	if len(kinds) == 0 {
		return toolchain.Discovery{}, nil
	}
	call := regexp.MustCompile(`\b(` + strings.Join(kinds, "|") + `)\s*\(`)

	files := buildFiles(project.Dir)
	var rules []rule
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return toolchain.Discovery{}, zerr.With(zerr.Wrap(err, "read BUILD file"), "path", file)
		}

		pkg, err := filepath.Rel(project.Dir, filepath.Dir(file))
		if err != nil {
			return toolchain.Discovery{}, zerr.With(zerr.Wrap(err, "resolve package"), "path", file)
		}
		pkg = filepath.ToSlash(pkg)
		if pkg == "." {
			pkg = ""
		}

		for _, r := range scanRules(call, string(data)) {
			r.pkg = pkg
			r.label = "//" + pkg + ":" + r.name
			rules = append(rules, r)
		}
	}

	counts := lo.CountValuesBy(rules, func(r rule) string { return r.name })
	targets := make([]*domain.Target, 0, len(rules))
	for _, r := range rules {
		name := r.name
		if counts[name] > 1 {
			name = r.label
		}
		t := domain.NewTarget(domain.BackendBazel, name,
			filepath.Join(project.Dir, "bazel-bin", filepath.FromSlash(r.pkg), r.name), []string{r.label})
		t.Kind = r.kind
		t.Label = r.label
		targets = append(targets, t)
	}
	return toolchain.Discovery{
		Targets: targets,
		Sources: append([]string{project.File}, files...),
	}, nil
}

// buildFiles lists one build file per package. BUILD.bazel shadows BUILD.
func buildFiles(root string) []string {
	var dirs []string
	byDir := make(map[string]string)
	for path := range fs.NewWalker().WalkFiles(root, outputTrees) {
		if !lo.Contains(BuildFileNames, filepath.Base(path)) {
			continue
		}
		dir := filepath.Dir(path)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		if prev, seen := byDir[dir]; !seen || filepath.Base(prev) == "BUILD" {
			byDir[dir] = path
		}
	}
	return lo.Map(dirs, func(d string, _ int) string { return byDir[d] })
}

// scanRules returns the named rule invocations in src matched by call, whose
// first group is the rule kind.
func scanRules(call *regexp.Regexp, src string) []rule {
	src = stripComments(src)

	var rules []rule
	for _, m := range call.FindAllStringSubmatchIndex(src, -1) {
		body := src[m[1]:closing(src, m[1])]
		name := nameAttr.FindStringSubmatch(body)
		if name == nil {
			continue
		}
		rules = append(rules, rule{kind: src[m[2]:m[3]], name: name[1]})
	}
	return rules
}

// closing returns the index of the parenthesis closing the call whose
// arguments start at i, or len(src) when it is unbalanced.
func closing(src string, i int) int {
	depth := 1
	var quote byte
	for ; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(src)
}

func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				b.WriteByte(src[i])
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
