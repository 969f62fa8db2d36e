package summarizer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Calibri"
	fontSize = 11
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reSpeaker = regexp.MustCompile(`^(Speaker \d+):\s*(.*)$`)
)

// Document is what gets exported for one saved meeting
type Document struct {
	Title      string
	Summary    string
	Lines      []string // attributed transcript, "Speaker N: text"
	Transcript string   // plain transcript, used when Lines is empty
}

// WriteDocx renders the summary (light markdown) and transcript to a .docx file
func WriteDocx(doc Document, outputPath string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(d.AddParagraph(""), doc.Title, true, 18)

	addStyledRun(d.AddParagraph(""), "Summary", true, 14)
	for _, line := range strings.Split(doc.Summary, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}
		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(d.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(d.AddParagraph(""), "• "+m[1])
			continue
		}
		addRichText(d.AddParagraph(""), trimmed)
	}

	addStyledRun(d.AddParagraph(""), "Transcript", true, 14)
	if len(doc.Lines) > 0 {
		for _, line := range doc.Lines {
			p := d.AddParagraph("")
			if m := reSpeaker.FindStringSubmatch(line); m != nil {
				p.AddText(m[1] + ": ").Font(fontName).Size(fontSize).Bold(true)
				p.AddText(m[2]).Font(fontName).Size(fontSize)
				continue
			}
			p.AddText(line).Font(fontName).Size(fontSize)
		}
	} else if t := strings.TrimSpace(doc.Transcript); t != "" {
		d.AddParagraph("").AddText(t).Font(fontName).Size(fontSize)
	}

	return d.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 12
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size)
	if bold {
		run.Bold(true)
	}
}

// addRichText turns **bold** spans into bold runs
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
