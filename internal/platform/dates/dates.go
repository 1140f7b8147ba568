// Package dates parses user-entered instants such as "yesterday 8pm" or "2024-01-01 18:00".
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parser resolves natural language first and falls back to fixed layouts.
type Parser struct {
	w *when.Parser
}

func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// Parse interprets input relative to base. Fixed layouts are read in base's location.
func (p *Parser) Parse(input string, base time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, base.Location()); err == nil {
			return t, nil
		}
	}
	result, err := p.w.Parse(s, base)
	if err == nil && result != nil {
		return result.Time, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", input)
}
