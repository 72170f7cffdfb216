package pdfx

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Sections are the paper parts the comparison pipeline consumes.
type Sections struct {
	Title      string
	Abstract   string
	Conclusion string
}

// Extract pulls plain text out of a PDF and sniffs the abstract and
// conclusion with the usual academic-paper heuristics.
func Extract(raw []byte) (*Sections, error) {
	reader := bytes.NewReader(raw)
	r, err := pdf.NewReader(reader, int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	return SniffSections(buf.String()), nil
}

var (
	abstractRe   = regexp.MustCompile(`(?i)\babstract\b[\s:.\-]*`)
	conclusionRe = regexp.MustCompile(`(?i)\b(?:conclusions?|concluding remarks)\b[\s:.\-]*`)
	// Headings that terminate an abstract.
	sectionBreakRe = regexp.MustCompile(`(?i)\b(?:1\s*[.)]?\s*introduction|introduction|keywords|index terms)\b`)
	// Headings that terminate a conclusion.
	conclusionEndRe = regexp.MustCompile(`(?i)\b(?:acknowledgments?|acknowledgements?|references|bibliography|appendix)\b`)
)

const (
	maxAbstractWords   = 400
	maxConclusionWords = 500
)

// SniffSections applies the extraction heuristics to already-plain text.
// Split out from Extract so the regex behavior is testable without
// rendering PDFs.
func SniffSections(text string) *Sections {
	s := &Sections{
		Title:      sniffTitle(text),
		Abstract:   sliceSection(text, abstractRe, sectionBreakRe, maxAbstractWords),
		Conclusion: sliceSection(text, conclusionRe, conclusionEndRe, maxConclusionWords),
	}
	return s
}

func sniffTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// sliceSection takes the text between the first heading match and the next
// terminating heading, capped at maxWords.
func sliceSection(text string, start, end *regexp.Regexp, maxWords int) string {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	after := text[loc[1]:]
	if endLoc := end.FindStringIndex(after); endLoc != nil {
		after = after[:endLoc[0]]
	}
	words := strings.Fields(after)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}
