// Package htmltext renders HTML fragments as plain text for terminal
// display. WordPress post content is HTML; the CLI previews it without
// markup.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Render extracts the visible text of an HTML fragment, skipping script and
// style elements and collapsing runs of whitespace. Invalid markup degrades
// gracefully: the tokenizer consumes whatever it can.
func Render(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
