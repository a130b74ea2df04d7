// Package scaffold writes starter files that embed muxsync into another Go
// service: a config file, the webhook wiring, route mounting and a one-shot
// backfill.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var componentNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

const (
	DefaultComponentName = "mux"
	DefaultDir           = "muxsync"
)

// Generated file names.
const (
	ConfigFile   = "config.yaml"
	BackfillFile = "backfill.go"
	WebhookFile  = "webhook.go"
	HTTPFile     = "http.go"
)

var (
	ErrInvalidComponentName = errors.New("invalid component name")
	ErrMissingDir           = errors.New("target directory does not exist")
)

// Options selects what Generate writes.
type Options struct {
	ComponentName string
	Dir           string
	Force         bool
	SkipConfig    bool
	SkipHTTP      bool
	SkipMigration bool
	SkipWebhook   bool
}

// Report lists the paths Generate wrote and the ones it left alone.
type Report struct {
	Written []string
	Skipped []string
}

type templateData struct {
	Name    string
	Package string
}

// Generate writes the selected starter files into opts.Dir, printing one
// line per file to out. Existing files are kept unless opts.Force is set.
func Generate(opts Options, out io.Writer) (*Report, error) {
	if opts.ComponentName == "" {
		opts.ComponentName = DefaultComponentName
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if !componentNamePattern.MatchString(opts.ComponentName) {
		return nil, fmt.Errorf("%w %q: use letters, digits and underscores, starting with a letter", ErrInvalidComponentName, opts.ComponentName)
	}
	info, err := os.Stat(opts.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDir, opts.Dir)
	}

	g := &generator{
		opts: opts,
		out:  out,
		data: templateData{
			Name:    opts.ComponentName,
			Package: strings.ToLower(opts.ComponentName),
		},
		report: &Report{},
	}

	if !opts.SkipConfig {
		if err := g.write(ConfigFile); err != nil {
			return g.report, err
		}
	}
	if !opts.SkipMigration {
		if err := g.write(BackfillFile); err != nil {
			return g.report, err
		}
	}
	if !opts.SkipWebhook {
		if err := g.write(WebhookFile); err != nil {
			return g.report, err
		}
	}
	if !opts.SkipHTTP {
		if opts.SkipWebhook && !exists(g.path(WebhookFile)) {
			fmt.Fprintf(out, "skip %s (needs %s, drop --skip-webhook)\n", g.path(HTTPFile), WebhookFile)
			g.report.Skipped = append(g.report.Skipped, g.path(HTTPFile))
		} else if err := g.write(HTTPFile); err != nil {
			return g.report, err
		}
	}
	return g.report, nil
}

// NextSteps returns the follow-up instructions printed after generation.
func NextSteps(opts Options) []string {
	pkg := strings.ToLower(opts.ComponentName)
	if pkg == "" {
		pkg = DefaultComponentName
	}
	return []string{
		"Set MUX_TOKEN_ID, MUX_TOKEN_SECRET and MUX_WEBHOOK_SECRET (or edit " + ConfigFile + ").",
		"Call " + pkg + ".NewService and " + pkg + ".Mount from your server's main.",
		"Point the Mux webhook at /" + pkg + "/mux/webhook.",
		"Run " + pkg + ".Backfill once to import existing assets.",
	}
}

type generator struct {
	opts   Options
	out    io.Writer
	data   templateData
	report *Report
}

func (g *generator) path(name string) string {
	return filepath.Join(g.opts.Dir, name)
}

func (g *generator) write(name string) error {
	path := g.path(name)
	if !g.opts.Force && exists(path) {
		fmt.Fprintf(g.out, "skip %s (already exists)\n", path)
		g.report.Skipped = append(g.report.Skipped, path)
		return nil
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", g.data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(g.out, "write %s\n", path)
	g.report.Written = append(g.report.Written, path)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
