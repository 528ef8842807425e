package stats

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ddextract/internal/markup"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// patternFile mirrors patterns.yaml.
type patternFile struct {
	Fallback  string                  `yaml:"fallback"`
	Icons     map[string]string       `yaml:"icons"`
	StatUnits []string                `yaml:"stat_units"`
	Languages map[string]languageFile `yaml:"languages"`
}

type languageFile struct {
	StatUnits []string      `yaml:"stat_units"`
	Patterns  []patternSpec `yaml:"patterns"`
}

type patternSpec struct {
	Label   string `yaml:"label"`
	Icon    string `yaml:"icon"`
	Percent bool   `yaml:"percent"`
	Match   string `yaml:"match"`
	Unless  string `yaml:"unless"`
}

// Pattern finds one stat in flattened description text.
type Pattern struct {
	Label   string
	Icon    string
	Percent bool

	match  *regexp.Regexp
	unless *regexp.Regexp
}

// Find returns the number captured by the first acceptable match.
// A match is rejected when the text following it matches the unless expression.
func (p *Pattern) Find(text string) (string, bool) {
	for off := 0; off <= len(text); {
		loc := p.match.FindStringSubmatchIndex(text[off:])
		if loc == nil {
			return "", false
		}
		end := off + loc[1]
		if p.unless == nil || !p.unless.MatchString(text[end:]) {
			if loc[2] < 0 {
				return "", false
			}
			return text[off+loc[2] : off+loc[3]], true
		}
		_, size := utf8.DecodeRuneInString(text[off+loc[0]:])
		if size == 0 {
			size = 1
		}
		off += loc[0] + size
	}
	return "", false
}

// Language holds the text patterns and stat-line units of one language.
type Language struct {
	Tag      string
	Patterns []*Pattern

	statLine *regexp.Regexp
}

// Tables is a compiled pattern file.
type Tables struct {
	fallback  string
	languages map[string]*Language
}

// DefaultTables compiles the embedded pattern file.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultPatterns)
}

// LoadTables compiles the pattern file at path, or the embedded one when path is empty.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables compiles a YAML pattern file.
func ParseTables(data []byte) (*Tables, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse patterns: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, errors.New("patterns: no languages defined")
	}
	if _, ok := file.Languages[file.Fallback]; !ok {
		return nil, fmt.Errorf("patterns: fallback language %q is not defined", file.Fallback)
	}

	t := &Tables{
		fallback:  file.Fallback,
		languages: make(map[string]*Language, len(file.Languages)),
	}
	for tag, lf := range file.Languages {
		lang, err := compileLanguage(tag, lf, file)
		if err != nil {
			return nil, err
		}
		t.languages[tag] = lang
	}
	return t, nil
}

func compileLanguage(tag string, lf languageFile, file patternFile) (*Language, error) {
	lang := &Language{Tag: tag}

	for i, def := range lf.Patterns {
		if def.Label == "" {
			return nil, fmt.Errorf("patterns %s[%d]: label is empty", tag, i)
		}
		re, err := regexp.Compile("(?i)" + def.Match)
		if err != nil {
			return nil, fmt.Errorf("patterns %s[%d] %s: %w", tag, i, def.Label, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("patterns %s[%d] %s: no capture group", tag, i, def.Label)
		}

		p := &Pattern{
			Label:   def.Label,
			Icon:    def.Icon,
			Percent: def.Percent,
			match:   re,
		}
		if p.Icon == "" {
			p.Icon = file.Icons[def.Label]
		}
		if def.Unless != "" {
			if p.unless, err = regexp.Compile("(?i)^(?:" + def.Unless + ")"); err != nil {
				return nil, fmt.Errorf("patterns %s[%d] %s unless: %w", tag, i, def.Label, err)
			}
		}
		lang.Patterns = append(lang.Patterns, p)
	}

	units := append(append([]string(nil), file.StatUnits...), lf.StatUnits...)
	if len(units) > 0 {
		quoted := make([]string, 0, len(units))
		for _, u := range units {
			quoted = append(quoted, regexp.QuoteMeta(u))
		}
		lang.statLine = regexp.MustCompile(`(?i)^\+?\d+\s*(?:` + strings.Join(quoted, "|") + `)`)
	}
	return lang, nil
}

// For returns the language table for tag, or the fallback table.
func (t *Tables) For(tag string) *Language {
	if lang, ok := t.languages[tag]; ok {
		return lang
	}
	return t.languages[t.fallback]
}

// Languages returns the tags with a dedicated table, sorted.
func (t *Tables) Languages() []string {
	tags := make([]string, 0, len(t.languages))
	for tag := range t.languages {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// FromText scans an item description for stats. Each pattern contributes at
// most one entry and never overwrites an earlier label. Numbers may use a
// comma or a period as decimal separator; only positive values are kept.
func (l *Language) FromText(description string) *Map {
	m := NewMap()
	if description == "" {
		return m
	}
	text := markup.StatText(description)

	for _, p := range l.Patterns {
		if m.Has(p.Label) {
			continue
		}
		raw, ok := p.Find(text)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || !(n > 0) {
			continue
		}
		v := Number(n)
		if p.Percent {
			v = Percent(n)
		}
		m.Add(p.Label, Stat{Value: v, Icon: p.Icon, Percent: p.Percent})
	}
	return m
}

// IsStatLine reports whether a trimmed description line is a pure stat line.
func (l *Language) IsStatLine(line string) bool {
	return l.statLine != nil && l.statLine.MatchString(line)
}

// CleanFlavor keeps the narrative part of an item description: pure stat
// lines are dropped and the rest is joined into one line.
func (l *Language) CleanFlavor(description string) string {
	var kept []string
	for _, line := range markup.Lines(description) {
		line = strings.TrimSpace(line)
		if line == "" || l.IsStatLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(markup.CollapseRuns(strings.Join(kept, " ")))
}
