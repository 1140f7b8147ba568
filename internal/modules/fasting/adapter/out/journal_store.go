package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbroglie/mustache"

	"fasttrack/internal/modules/fasting/domain"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	"fasttrack/internal/platform/markdown"
)

const DefaultJournalTemplate = `# {{protocol}} fast on {{date}}

- Started: {{start}}
- Ended: {{end}}
- Target: {{target}}
- Actual: {{actual}}
- Result: {{result}}
{{#manual}}
- Entered manually
{{/manual}}

## Notes

`

// MarkdownJournal writes one note per finished fast under dir/YYYY/MM.
type MarkdownJournal struct {
	dir          string
	templatePath string
}

func NewMarkdownJournal(dir, templatePath string) fastingout.Journal {
	return &MarkdownJournal{dir: dir, templatePath: templatePath}
}

func (j *MarkdownJournal) Write(_ context.Context, s domain.Session) (string, error) {
	if s.EndTime == nil {
		return "", fmt.Errorf("journal: fast %s has not ended", s.ID)
	}
	start := s.StartTime.UTC()
	dir := filepath.Join(j.dir, start.Format("2006"), start.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}

	tmpl, err := j.template()
	if err != nil {
		return "", err
	}
	body, err := mustache.Render(tmpl, map[string]any{
		"protocol": string(s.Protocol),
		"date":     start.Format("Mon Jan 2 2006"),
		"start":    start.Format("2006-01-02 15:04"),
		"end":      s.EndTime.UTC().Format("2006-01-02 15:04"),
		"target":   formatHours(s.TargetDuration),
		"actual":   formatHours(s.ActualHours()),
		"result":   result(s),
		"manual":   s.ManuallyAdded,
	})
	if err != nil {
		return "", fmt.Errorf("render journal template: %w", err)
	}

	note := markdown.Note{
		Meta: map[string]any{
			"schema_version":  domain.SchemaVersion,
			"id":              s.ID,
			"type":            string(s.Protocol),
			"start_time":      start.Format("2006-01-02T15:04:05Z07:00"),
			"end_time":        s.EndTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			"target_duration": s.TargetDuration,
			"actual_duration": s.ActualHours(),
			"completed":       s.Completed,
			"manually_added":  s.ManuallyAdded,
		},
		Body: body,
	}
	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", start.Format("02-150405"), shortID(s.ID)))
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

func (j *MarkdownJournal) template() (string, error) {
	if j.templatePath == "" {
		return DefaultJournalTemplate, nil
	}
	raw, err := os.ReadFile(j.templatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultJournalTemplate, nil
		}
		return "", fmt.Errorf("read journal template: %w", err)
	}
	return string(raw), nil
}

func result(s domain.Session) string {
	if s.Completed {
		return "completed"
	}
	return "stopped early"
}

func formatHours(h float64) string {
	total := int(h*60 + 0.5)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
