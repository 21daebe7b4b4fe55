package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/recaptools/recap-cli/pkg/pipeline"
)

const (
	docxFont     = "Calibri"
	docxFontSize = 11
	titleSize    = 16
	headingSize  = 13
)

// resultsDocx builds one styled document for the given items, separated by
// a horizontal rule line. godocx only saves to a path, so the document is
// staged in a temp file and read back.
func resultsDocx(items []pipeline.ProcessingResult) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	for i, item := range items {
		if i > 0 {
			sep := doc.AddParagraph("")
			sep.AddText(strings.Repeat("─", 40)).Font(docxFont).Size(docxFontSize).Color("999999")
			doc.AddParagraph("")
		}
		addResult(doc, item)
	}

	tmp, err := os.CreateTemp("", "recap-*.docx")
	if err != nil {
		return nil, fmt.Errorf("staging document: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return os.ReadFile(filepath.Clean(path))
}

func addResult(doc *docx.RootDoc, res pipeline.ProcessingResult) {
	styled(doc.AddParagraph(""), headline(res), true, titleSize)

	if !res.Success {
		if res.Error != nil {
			styled(doc.AddParagraph(""), "Processing failed: "+res.Error.Message, false, docxFontSize)
		}
		return
	}

	meta := doc.AddParagraph("")
	metaText := "Date: " + res.Date
	if len(res.Speakers) > 0 {
		metaText += "    Speakers: " + strings.Join(res.Speakers, ", ")
	}
	styled(meta, metaText, false, docxFontSize)
	if res.ViewerURL != "" {
		p := doc.AddParagraph("")
		p.AddLink("Open recording", res.ViewerURL)
	}
	doc.AddParagraph("")

	styled(doc.AddParagraph(""), "Summary", true, headingSize)
	styled(doc.AddParagraph(""), res.Summary, false, docxFontSize)
	doc.AddParagraph("")

	if len(res.KeyPoints) == 0 {
		return
	}
	styled(doc.AddParagraph(""), "Key Points", true, headingSize)
	for _, kp := range res.KeyPoints {
		p := doc.AddParagraph("")
		prefix := ""
		if kp.Timestamp != "" {
			prefix = kp.Timestamp + "  "
		}
		if kp.Speaker != "" {
			prefix += kp.Speaker + " — "
		}
		if prefix != "" {
			styled(p, prefix, false, docxFontSize)
		}
		if kp.VideoLink != "" {
			p.AddLink(kp.Title, kp.VideoLink)
		} else {
			styled(p, kp.Title, false, docxFontSize)
		}
	}
}

func styled(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
