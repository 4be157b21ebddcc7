// Command docmark loads documents, applies highlights and prints the result.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/ingest"
	"github.com/dgallion1/docmark/internal/workspace"
)

const version = "0.1.0"

// CLI defines the command-line interface for docmark.
var CLI struct {
	Policy  string `help:"Overlap policy (reject-overlap, merge-union, split-truncate)" default:"reject-overlap" env:"OVERLAP_POLICY"`
	Scope   string `help:"Duplicate-text scope (none, same-document, cross-document, all)" default:"same-document" env:"DUPLICATE_SCOPE"`
	Verbose bool   `short:"v" help:"Log workspace changes to stderr"`

	Show    ShowCmd    `cmd:"" help:"Print documents with their highlights marked"`
	Export  ExportCmd  `cmd:"" help:"Print every highlight across documents as JSON"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Marks are shared by show and export.
type Marks struct {
	Files  []string `arg:"" name:"file" help:"Documents to load, in order"`
	Mark   []string `short:"m" sep:"none" help:"Highlight a byte range, as [DOC:]START:END where DOC is the 1-based file position"`
	Phrase []string `short:"p" sep:"none" help:"Highlight every occurrence of a phrase in every document"`
	NoPDF  bool     `name:"no-pdftotext" help:"Do not fall back to pdftotext for PDFs"`
}

type ShowCmd struct {
	Marks
}

type ExportCmd struct {
	Marks
	Indent bool `help:"Indent JSON output"`
}

type VersionCmd struct{}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	markStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	helperStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	highlightCount = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

// mark is a parsed --mark value. doc is 0-based.
type mark struct {
	doc        int
	start, end int
}

func parseMark(s string) (mark, error) {
	parts := strings.Split(s, ":")
	var m mark
	var err error
	switch len(parts) {
	case 2:
	case 3:
		if m.doc, err = strconv.Atoi(parts[0]); err != nil || m.doc < 1 {
			return mark{}, fmt.Errorf("mark %q: bad document position", s)
		}
		m.doc--
		parts = parts[1:]
	default:
		return mark{}, fmt.Errorf("mark %q: want [DOC:]START:END", s)
	}
	if m.start, err = strconv.Atoi(parts[0]); err != nil {
		return mark{}, fmt.Errorf("mark %q: bad start", s)
	}
	if m.end, err = strconv.Atoi(parts[1]); err != nil {
		return mark{}, fmt.Errorf("mark %q: bad end", s)
	}
	return m, nil
}

// load builds a workspace from the files and applies marks then phrases.
// Rejected highlights are reported to warn and do not stop the run.
func (m Marks) load(log *slog.Logger, warn io.Writer) (*workspace.Workspace, []string, error) {
	policy, err := highlight.ParsePolicy(CLI.Policy)
	if err != nil {
		return nil, nil, err
	}
	scope, err := highlight.ParseScope(CLI.Scope)
	if err != nil {
		return nil, nil, err
	}
	ws := workspace.New(workspace.Options{Policy: policy, Scope: scope, Log: log})

	opts := ingest.Options{PDFFallbackPdftotext: !m.NoPDF}
	ids := make([]string, 0, len(m.Files))
	for _, path := range m.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		content, err := ingest.Text(data, filepath.Base(path), opts)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		id, err := ws.LoadDocument(path, content)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		ids = append(ids, id)
	}

	for _, s := range m.Mark {
		mk, err := parseMark(s)
		if err != nil {
			return nil, nil, err
		}
		if mk.doc >= len(ids) {
			return nil, nil, fmt.Errorf("mark %q: only %d documents loaded", s, len(ids))
		}
		if _, err := ws.InsertRange(ids[mk.doc], mk.start, mk.end); err != nil {
			fmt.Fprintln(warn, errorStyle.Render(fmt.Sprintf("mark %s: %v", s, err)))
		}
	}

	for _, phrase := range m.Phrase {
		if phrase == "" {
			continue
		}
		for i, id := range ids {
			_, content, err := ws.Document(id)
			if err != nil {
				return nil, nil, err
			}
			for from := 0; ; {
				at := strings.Index(content[from:], phrase)
				if at < 0 {
					break
				}
				start := from + at
				from = start + len(phrase)
				if _, err := ws.InsertRange(id, start, from); err != nil {
					fmt.Fprintln(warn, errorStyle.Render(fmt.Sprintf("phrase %q in %s at %d: %v", phrase, m.Files[i], start, err)))
				}
			}
		}
	}
	return ws, ids, nil
}

func (c *ShowCmd) Run(log *slog.Logger) error {
	ws, ids, err := c.load(log, os.Stderr)
	if err != nil {
		return err
	}
	return show(os.Stdout, ws, ids)
}

func show(w io.Writer, ws *workspace.Workspace, ids []string) error {
	for i, id := range ids {
		info, _, err := ws.Document(id)
		if err != nil {
			return err
		}
		segs, err := ws.Segments(id)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(info.Name),
			highlightCount.Render(fmt.Sprintf("(%d highlights)", info.Highlights)))

		var b strings.Builder
		for _, seg := range segs {
			if seg.Kind == highlight.Highlight {
				b.WriteString(markStyle.Render(seg.Text))
			} else {
				b.WriteString(seg.Text)
			}
		}
		fmt.Fprintln(w, b.String())
	}

	if text := ws.ConcatenatedText(); text != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, helperStyle.Render("highlighted: "+text))
	}
	return nil
}

func (c *ExportCmd) Run(log *slog.Logger) error {
	ws, _, err := c.load(log, os.Stderr)
	if err != nil {
		return err
	}
	return export(os.Stdout, ws, c.Indent)
}

func export(w io.Writer, ws *workspace.Workspace, indent bool) error {
	entries := ws.ExportAll()
	if entries == nil {
		entries = []highlight.Entry{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{
		"highlights": entries,
		"text":       ws.ConcatenatedText(),
	})
}

func (c *VersionCmd) Run() error {
	fmt.Printf("docmark version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("docmark"),
		kong.Description("Highlight spans of text across loaded documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(log)
	ctx.FatalIfErrorf(err)
}
