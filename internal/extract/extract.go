// Package extract implements the champion, ability, item and skin pipelines.
//
// Every pipeline walks its inputs sequentially, isolates failures per
// language or per champion, and hands finished record lists to a Writer.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ddextract/internal/services/cdragon"
	"github.com/ddextract/internal/services/ddragon"
	"github.com/ddextract/internal/stats"
)

// Writer persists one output document and returns where it went.
type Writer interface {
	WriteJSON(name string, v any) (string, error)
}

// Env carries everything a pipeline needs. Nothing here is global.
type Env struct {
	DDragon  *ddragon.Client
	CDragon  *cdragon.Client
	Patterns *stats.Tables
	Writer   Writer
	Log      *slog.Logger

	Languages       []string
	DefaultLanguage string
	BaseSkinLabel   string
	SkinDelay       time.Duration
}

// File is one written output document.
type File struct {
	Path    string
	Records int
}

// Failure is a language or entity that was skipped.
type Failure struct {
	Scope string
	Err   string
}

// Report summarizes one pipeline run.
type Report struct {
	Pipeline string
	Version  string
	Files    []File
	Failures []Failure
	Duration time.Duration

	// Fatal is set when the pipeline aborted.
	Fatal error
}

func newReport(pipeline, version string) *Report {
	return &Report{Pipeline: pipeline, Version: version}
}

func (r *Report) addFile(path string, records int) {
	r.Files = append(r.Files, File{Path: path, Records: records})
}

func (r *Report) fail(scope string, err error) {
	r.Failures = append(r.Failures, Failure{Scope: scope, Err: err.Error()})
}

// Records returns the total number of records written.
func (r *Report) Records() int {
	n := 0
	for _, f := range r.Files {
		n += f.Records
	}
	return n
}

// Func runs one pipeline.
type Func func(ctx context.Context, env *Env) (*Report, error)

// Pipeline is a named, runnable extraction.
type Pipeline struct {
	Name        string
	Description string
	Run         Func
}

// Pipelines lists every pipeline in run order.
var Pipelines = []Pipeline{
	{"champions", "Champion names, titles and portraits per language", Champions},
	{"abilities", "Passive and spell names, ratios and icons per language", Abilities},
	{"items", "Purchasable items with merged stats and components per language", Items},
	{"skins", "Skin names and splash art for the default language", Skins},
}

// Lookup returns the pipeline with the given name.
func Lookup(name string) (Pipeline, bool) {
	for _, p := range Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return Pipeline{}, false
}

// Run executes p, stamping the duration and any fatal error on its report.
func Run(ctx context.Context, p Pipeline, env *Env) *Report {
	start := time.Now()
	report, err := p.Run(ctx, env)
	if report == nil {
		report = newReport(p.Name, env.DDragon.Version())
	}
	report.Duration = time.Since(start)
	if err != nil {
		report.Fatal = err
	}
	return report
}

// collator returns a collator for a Data Dragon language tag such as "fr_FR".
func collator(lang string) *collate.Collator {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func fileName(kind, lang string) string {
	return fmt.Sprintf("%s_%s.json", kind, lang)
}
