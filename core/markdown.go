package core

import (
	"bufio"
	"bytes"
	"html/template"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
)

var markdownParser *markdown.Markdown = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderMarkdown renders the body of a post. Leading tabs are removed from each line, so indented text does not become a code block.
func RenderMarkdown(input string) template.HTML {

	var unindented = &bytes.Buffer{}

	lineScanner := bufio.NewScanner(strings.NewReader(input))
	for lineScanner.Scan() {
		unindented.WriteString(strings.TrimLeft(lineScanner.Text(), "\t"))
		unindented.WriteString("\n")
	}

	return template.HTML(markdownParser.RenderToString(unindented.Bytes()))
}
