package convert

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var pandocSpanRe = regexp.MustCompile(`\[\]\{#([^}]+)\}`)

var mdEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithAttribute(),
	),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithXHTML(),
		goldmarkhtml.WithUnsafe(),
	),
)

const xhtmlSkeleton = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
<meta charset="utf-8"/>
<title>%s</title>
%s</head>
<body>
%s</body>
</html>
`

// MarkdownToXHTML renders md (Pandoc-flavored CommonMark) into an
// EPUB-compliant XHTML document. stylesheetHref, when non-empty, is
// linked as the chapter's single stylesheet.
func MarkdownToXHTML(md string, stylesheetHref string, title string) (string, error) {
	preprocessed := pandocSpanRe.ReplaceAllString(md, `<a id="$1"></a>`)

	var buf bytes.Buffer
	if err := mdEngine.Convert([]byte(preprocessed), &buf); err != nil {
		return "", fmt.Errorf("convert markdown to xhtml: %w", err)
	}

	link := ""
	if stylesheetHref != "" {
		link = fmt.Sprintf(`<link rel="stylesheet" type="text/css" href="%s"/>`+"\n", html.EscapeString(stylesheetHref))
	}

	return fmt.Sprintf(xhtmlSkeleton, html.EscapeString(title), link, buf.String()), nil
}
