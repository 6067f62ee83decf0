package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sgtlab/sessqc/internal/filelock"
	"github.com/sgtlab/sessqc/internal/session"
)

// htmlShell wraps the rendered report body. The first verb is the page
// title, the second the body markup.
const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s session report</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 72em; padding: 0 1em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

// WriteHTMLReport renders a per-animal HTML report: one section per session
// with its identity metadata and markdown notes, then the generated figure
// pages embedded relative to the report's directory. The report is assembled
// as markdown and converted with goldmark.
func WriteHTMLReport(animal string, names []string, sessions []*session.Session, figures []string, outPath string) error {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s session report\n\n", animal)

	for i, sess := range sessions {
		fmt.Fprintf(&md, "## %s\n\n", names[i])

		md.WriteString("| field | value |\n|---|---|\n")
		meta := sess.Meta
		for _, row := range [][2]string{
			{"session id", meta.SessionID},
			{"kind", sess.Kind.String()},
			{"description", meta.Description},
			{"subject", meta.SubjectID},
			{"date of birth", meta.SubjectDoB},
			{"age", meta.SubjectAge},
			{"sex", meta.SubjectSex},
		} {
			fmt.Fprintf(&md, "| %s | %s |\n", row[0], row[1])
		}
		md.WriteString("\n")

		if meta.Notes != "" {
			md.WriteString("### Notes\n\n")
			md.WriteString(meta.Notes)
			md.WriteString("\n\n")
		}
	}

	if len(figures) > 0 {
		md.WriteString("## Figures\n\n")
		outDir := filepath.Dir(outPath)
		for _, fig := range figures {
			rel, err := filepath.Rel(outDir, fig)
			if err != nil {
				rel = filepath.Base(fig)
			}
			fmt.Fprintf(&md, "![%s](%s)\n\n", filepath.Base(fig), filepath.ToSlash(rel))
		}
	}

	var body bytes.Buffer
	engine := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := engine.Convert([]byte(md.String()), &body); err != nil {
		return fmt.Errorf("render report markdown: %w", err)
	}

	page := fmt.Sprintf(htmlShell, animal, body.String())
	if err := filelock.AtomicWrite(outPath, []byte(page)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
