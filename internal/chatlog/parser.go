package chatlog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/bloop/internal/textclean"
)

// bidiMarks are the invisible direction and BOM marks exports put in front of
// lines, senders and bodies.
const bidiMarks = "\u200e\u200f\u202a\u202b\u202c\u202d\u202e\u2066\u2067\u2068\u2069\ufeff"

// linePattern matches both export shapes:
//
//	01/02/24, 9:05 PM - Alice: text
//	[01/02/2024, 21:05:33] Alice: text
//
// Groups: date, time, sender, body.
var linePattern = regexp.MustCompile(
	`(?i)^\s*[\x{200e}\x{200f}\x{202a}-\x{202e}\x{2066}-\x{2069}\x{feff}]*\s*` +
		`\[?(\d{1,2}/\d{1,2}/\d{2,4}),\s*` +
		`(\d{1,2}:\d{2}(?::\d{2})?(?:[\s\x{00a0}\x{202f}](?:AM|PM))?)` +
		`(?:\]?\s*-\s*|\]\s*)` +
		`(.*?):\s*(.*)$`)

var clockSpaces = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// Parser turns raw export text into cleaned, chronologically sorted messages.
// A Parser holds only read-only configuration and may be shared between
// concurrent analyses.
type Parser struct {
	cleaner  *textclean.Cleaner
	patterns []string
	order    DateOrder
	logger   *slog.Logger
}

// NewParser creates a parser. patterns are the platform-notice substrings whose
// lines are discarded; they are matched case-insensitively.
func NewParser(cleaner *textclean.Cleaner, patterns []string, order DateOrder, logger *slog.Logger) *Parser {
	if cleaner == nil {
		cleaner = textclean.NewCleaner(nil)
	}
	if order == "" {
		order = DateOrderAuto
	}
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(p); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Parser{cleaner: cleaner, patterns: lowered, order: order, logger: logger}
}

// candidate is a shape-matched line waiting for its timestamp to be parsed.
type candidate struct {
	line   int
	date   string
	clock  string
	sender string
	body   string
}

// Parse reads one exported conversation. Lines that do not look like messages
// are skipped silently; lines whose timestamp cannot be read are logged and
// skipped. Only a failing reader is an error.
func (p *Parser) Parse(r io.Reader) (*Transcript, error) {
	t := &Transcript{}
	var pending []candidate
	var evidence orderEvidence

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB line buffer
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t.Lines++

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue // continuation line or noise
		}
		sender := strings.TrimSpace(textclean.StripMarks(m[3]))
		if sender == "" {
			continue
		}
		t.Matched++
		evidence.observe(m[1])

		body := strings.TrimSpace(strings.TrimLeft(m[4], bidiMarks))
		if p.isNotice(body) {
			t.Dropped++
			continue
		}

		pending = append(pending, candidate{
			line:   lineNo,
			date:   m[1],
			clock:  strings.ToUpper(clockSpaces.Replace(m[2])),
			sender: sender,
			body:   body,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chat log: %w", err)
	}

	primary, fallback := evidence.resolve(p.order)
	t.DateOrder = primary
	layouts := layoutsFor(primary, fallback)

	t.Messages = make([]Message, 0, len(pending))
	firstBadLine := 0
	for _, c := range pending {
		ts, ok := parseTimestamp(layouts, c.date, c.clock)
		if !ok {
			if t.TimestampErrors == 0 {
				firstBadLine = c.line
			}
			t.TimestampErrors++
			p.logger.Debug("unparseable timestamp", "line", c.line, "date", c.date, "time", c.clock)
			continue
		}

		cleaned := p.cleaner.Clean(c.body)
		if cleaned == "" {
			t.Dropped++
			continue
		}

		t.Messages = append(t.Messages, Message{
			Timestamp:   ts,
			DateKey:     ts.Format("2006-01-02"),
			Sender:      c.sender,
			RawText:     c.body,
			CleanedText: cleaned,
		})
	}

	Sort(t.Messages)

	if t.TimestampErrors > 0 {
		p.logger.Warn("skipped lines with unparseable timestamps",
			"count", t.TimestampErrors,
			"first_line", firstBadLine,
			"date_order", t.DateOrder,
		)
	}

	p.logger.Debug("chat log parsed",
		"lines", t.Lines,
		"matched", t.Matched,
		"messages", len(t.Messages),
		"dropped", t.Dropped,
		"timestamp_errors", t.TimestampErrors,
		"date_order", t.DateOrder,
	)
	return t, nil
}

func (p *Parser) isNotice(body string) bool {
	if len(p.patterns) == 0 {
		return false
	}
	lower := strings.ToLower(body)
	for _, pat := range p.patterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

// parseTimestamp tries each layout whose shape gate accepts the clock text.
func parseTimestamp(layouts []layout, date, clock string) (time.Time, bool) {
	value := date + " " + clock
	for _, l := range layouts {
		if !l.accepts(clock) {
			continue
		}
		if ts, err := time.Parse(l.value, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Sort orders messages by timestamp. Equal timestamps fall back to sender and
// then raw text, so the result does not depend on input order.
func Sort(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Sender != b.Sender {
			return a.Sender < b.Sender
		}
		return a.RawText < b.RawText
	})
}

// Senders returns the distinct senders of msgs in sorted order.
func Senders(msgs []Message) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range msgs {
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		out = append(out, m.Sender)
	}
	sort.Strings(out)
	return out
}
