package mdconvert

import "strings"

// Representation

type ConversionResult struct {
	markdownContent []byte
}

func NewConversionResult(markdownContent []byte) ConversionResult {
	return ConversionResult{
		markdownContent: markdownContent,
	}
}

func (c ConversionResult) GetMarkdownContent() []byte {
	return c.markdownContent
}

// Lines splits the Markdown into trimmed, non-empty lines with runs of
// spaces collapsed. This is the shape stored in a record's page details.
func (c ConversionResult) Lines() []string {
	raw := strings.Split(string(c.markdownContent), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
