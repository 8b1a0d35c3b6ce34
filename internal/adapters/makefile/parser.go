package makefile

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"
)

// maxExpandDepth bounds recursive variable expansion.
const maxExpandDepth = 16

// Rule is one explicit rule: its targets, prerequisites and recipe.
type Rule struct {
	Targets []string
	Sources []string
	Recipe  []string
	Line    int
}

// Makefile is the static view of a parsed Makefile.
type Makefile struct {
	Rules []*Rule
	// RuleMap maps a target to the last rule that gave it a recipe.
	RuleMap map[string]*Rule
	Vars    map[string]string
	// Order lists ordinary targets in first appearance order.
	Order       []string
	DefaultGoal string
}

// NewMakefile creates an empty Makefile.
func NewMakefile() *Makefile {
	return &Makefile{
		RuleMap: make(map[string]*Rule),
		Vars:    make(map[string]string),
	}
}

// AddRule registers r under every one of its targets.
func (m *Makefile) AddRule(r *Rule) {
	m.Rules = append(m.Rules, r)
	for _, t := range r.Targets {
		prev, seen := m.RuleMap[t]
		if !seen {
			m.Order = append(m.Order, t)
		}
		// An empty rule only adds prerequisites; it never drops a recipe.
		if !seen || len(r.Recipe) > 0 || len(prev.Recipe) == 0 {
			m.RuleMap[t] = r
		}
	}
}

// Recipes returns target name to expanded recipe for every target that has one,
// along with those names in first appearance order.
func (m *Makefile) Recipes() ([]string, map[string][]string) {
	names := make([]string, 0, len(m.Order))
	recipes := make(map[string][]string, len(m.Order))

	for _, t := range m.Order {
		r := m.RuleMap[t]
		if len(r.Recipe) == 0 {
			continue
		}
		lines := make([]string, 0, len(r.Recipe))
		for _, raw := range r.Recipe {
			lines = append(lines, m.expandRecipe(raw, t, r.Sources))
		}
		names = append(names, t)
		recipes[t] = lines
	}
	return names, recipes
}

// ParseFile parses the Makefile at path.
func ParseFile(path string) (*Makefile, error) {
	f, err := os.Open(path) //nolint:gosec // path is the project file
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "open makefile"), "path", path)
	}
	defer f.Close() //nolint:errcheck // read only

	m, err := Parse(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// Parse reads Makefile syntax without executing anything. Conditionals and
// includes are not evaluated, pattern and special targets are skipped.
func Parse(r io.Reader) (*Makefile, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}

	p := &parser{mf: NewMakefile()}
	for _, l := range lines {
		p.line(l)
	}

	if goal, ok := p.mf.Vars[".DEFAULT_GOAL"]; ok && strings.TrimSpace(goal) != "" {
		p.mf.DefaultGoal = strings.TrimSpace(p.mf.expand(goal, 0))
	}
	return p.mf, nil
}

type logicalLine struct {
	text string
	num  int
}

// logicalLines joins backslash continuations.
func logicalLines(r io.Reader) ([]logicalLine, error) {
	var (
		out     []logicalLine
		pending strings.Builder
		start   int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	num := 0
	for sc.Scan() {
		num++
		text := strings.TrimSuffix(sc.Text(), "\r")

		if pending.Len() == 0 {
			start = num
		} else {
			text = strings.TrimLeft(text, " \t")
		}

		if strings.HasSuffix(text, `\`) && !strings.HasSuffix(text, `\\`) {
			pending.WriteString(strings.TrimSuffix(text, `\`))
			pending.WriteByte(' ')
			continue
		}

		pending.WriteString(text)
		out = append(out, logicalLine{text: pending.String(), num: start})
		pending.Reset()
	}
	if err := sc.Err(); err != nil {
		return nil, zerr.Wrap(err, "read makefile")
	}
	if pending.Len() > 0 {
		out = append(out, logicalLine{text: pending.String(), num: start})
	}
	return out, nil
}

type parser struct {
	mf      *Makefile
	current *Rule
	inDef   bool
}

var directives = map[string]bool{
	"ifeq": true, "ifneq": true, "ifdef": true, "ifndef": true,
	"else": true, "endif": true,
	"include": true, "-include": true, "sinclude": true,
	"export": true, "unexport": true, "override": true,
	"vpath": true, "undefine": true,
}

func (p *parser) line(l logicalLine) {
	if p.inDef {
		if strings.TrimSpace(l.text) == "endef" {
			p.inDef = false
		}
		return
	}

	if strings.HasPrefix(l.text, "\t") {
		if p.current != nil {
			recipe := strings.TrimSpace(l.text)
			if recipe != "" {
				p.current.Recipe = append(p.current.Recipe, recipe)
			}
		}
		return
	}

	text := strings.TrimSpace(stripComment(l.text))
	if text == "" {
		return
	}

	word, rest, _ := strings.Cut(text, " ")
	switch {
	case word == "define":
		p.inDef = true
		p.current = nil
		return
	case word == "export" || word == "override":
		// export FOO = bar and override FOO := bar are still assignments.
		if strings.Contains(rest, "=") {
			text = strings.TrimSpace(rest)
		} else {
			p.current = nil
			return
		}
	case directives[word]:
		p.current = nil
		return
	}

	if p.assignment(text) {
		p.current = nil
		return
	}

	p.rule(text, l.num)
}

// assignment handles =, :=, ::=, ?=, += and != lines.
func (p *parser) assignment(text string) bool {
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return false
	}
	colon := strings.IndexByte(text, ':')
	lhs := text[:eq]
	if colon >= 0 && colon < eq && !strings.HasSuffix(lhs, ":") {
		// "target: VAR = value" is a target specific variable, not ours.
		return false
	}

	op := "="
	for _, prefix := range []string{"::", ":", "?", "+", "!"} {
		if strings.HasSuffix(lhs, prefix) {
			op = prefix + "="
			lhs = strings.TrimSuffix(lhs, prefix)
			break
		}
	}

	name := strings.TrimSpace(lhs)
	value := strings.TrimSpace(text[eq+1:])
	if name == "" || strings.ContainsAny(name, " \t") {
		return false
	}

	vars := p.mf.Vars
	switch op {
	case ":=", "::=":
		vars[name] = p.mf.expand(value, 0)
	case "?=":
		if _, ok := vars[name]; !ok {
			vars[name] = value
		}
	case "+=":
		if prior, ok := vars[name]; ok && prior != "" {
			vars[name] = prior + " " + value
		} else {
			vars[name] = value
		}
	case "!=":
		// Shell assignments are never executed.
		vars[name] = ""
	default:
		vars[name] = value
	}
	return true
}

func (p *parser) rule(text string, num int) {
	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		p.current = nil
		return
	}

	head := text[:colon]
	tail := strings.TrimPrefix(text[colon+1:], ":")

	var inline string
	if i := strings.IndexByte(tail, ';'); i >= 0 {
		inline = strings.TrimSpace(tail[i+1:])
		tail = tail[:i]
	}

	if strings.Contains(tail, "=") {
		p.current = nil
		return
	}

	r := &Rule{Line: num}
	for _, t := range strings.Fields(p.mf.expand(head, 0)) {
		if ordinary(t) {
			r.Targets = append(r.Targets, t)
		}
	}
	for _, s := range strings.Fields(p.mf.expand(tail, 0)) {
		if s == "|" {
			continue
		}
		r.Sources = append(r.Sources, s)
	}
	if inline != "" {
		r.Recipe = append(r.Recipe, inline)
	}

	// Special and pattern rules still own the recipe lines that follow.
	p.current = r
	if len(r.Targets) > 0 {
		p.mf.AddRule(r)
		if p.mf.DefaultGoal == "" {
			p.mf.DefaultGoal = r.Targets[0]
		}
	}
}

// ordinary reports whether t is neither a special target nor a pattern.
func ordinary(t string) bool {
	return !strings.HasPrefix(t, ".") && !strings.Contains(t, "%")
}

func stripComment(s string) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '#':
			return s[:i]
		}
	}
	return s
}

// expand substitutes $(VAR), ${VAR}, $X and $$. Function calls are kept
// verbatim; unknown variables expand to nothing.
func (m *Makefile) expand(s string, depth int) string {
	return m.expandWith(s, depth, nil)
}

func (m *Makefile) expandRecipe(s, target string, sources []string) string {
	auto := map[string]string{
		"@": target,
		"^": strings.Join(sources, " "),
		"+": strings.Join(sources, " "),
		"<": "",
	}
	if len(sources) > 0 {
		auto["<"] = sources[0]
	}
	return m.expandWith(s, 0, auto)
}

func (m *Makefile) expandWith(s string, depth int, auto map[string]string) string {
	if depth > maxExpandDepth || !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}

		next := s[i+1]
		switch next {
		case '$':
			b.WriteByte('$')
			i++
		case '(', '{':
			closer := byte(')')
			if next == '{' {
				closer = '}'
			}
			end := matching(s, i+1, next, closer)
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			ref := s[i+2 : end]
			if strings.ContainsAny(ref, " \t,") {
				// A function call such as $(shell ...) or $(wildcard ...).
				b.WriteString(s[i : end+1])
			} else {
				b.WriteString(m.lookup(ref, depth, auto))
			}
			i = end
		default:
			b.WriteString(m.lookup(string(next), depth, auto))
			i++
		}
	}
	return b.String()
}

func (m *Makefile) lookup(name string, depth int, auto map[string]string) string {
	if v, ok := auto[name]; ok {
		return v
	}
	v, ok := m.Vars[name]
	if !ok {
		return ""
	}
	return m.expandWith(v, depth+1, auto)
}

// matching finds the closing delimiter for the opener at s[open].
func matching(s string, open int, opener, closer byte) int {
	level := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case opener:
			level++
		case closer:
			level--
			if level == 0 {
				return j
			}
		}
	}
	return -1
}
