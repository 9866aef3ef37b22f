package ollama

import (
	"modelcatalog/internal/catalog"
	"regexp"
	"strings"
)

// summaryLine is the classified form of a decorated line such as
// "5.2GB · 128K context window · Text · 1 month ago".
type summaryLine struct {
	Size    string
	Context string
	Input   string
	Updated string
}

var (
	summarySeparator = regexp.MustCompile(`\s*[·•]\s*`)
	sizeToken        = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s*[kmgtp]?i?b$`)
	contextToken     = regexp.MustCompile(`(?i)^(\S+)\s+context(?:\s+window)?$`)
)

func splitDecorated(text string) []string {
	var tokens []string
	for _, token := range summarySeparator.Split(text, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// parseSummaryLine classifies every token of a decorated line, the first
// token of a kind wins. Tokens that are not a size, context or age are
// input types.
func parseSummaryLine(text string) summaryLine {
	var line summaryLine
	var inputs []string
	for _, token := range splitDecorated(text) {
		switch {
		case sizeToken.MatchString(token):
			if line.Size == "" {
				line.Size = token
			}
		case contextToken.MatchString(token):
			if line.Context == "" {
				line.Context = contextToken.FindStringSubmatch(token)[1]
			}
		case catalog.IsAge(token):
			if line.Updated == "" {
				line.Updated = token
			}
		default:
			inputs = append(inputs, token)
		}
	}
	line.Input = strings.Join(inputs, ", ")
	return line
}
