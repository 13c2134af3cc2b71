// Package convert implements the two transform directions at the heart of
// epx: XHTML chapter content to Pandoc-flavored Markdown, and back.
package convert

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	html2md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	xmlDeclRe    = regexp.MustCompile(`(?s)^<\?xml[^>]*\?>`)
	svgRe        = regexp.MustCompile(`(?is)<svg\b[^>]*>(.*?)</svg>`)
	drawingRe    = regexp.MustCompile(`(?i)<(?:rect|circle|path|text|line|polygon|polyline|ellipse)\b`)
	imageHrefRe  = regexp.MustCompile(`(?i)<image\b[^>]*?(?:xlink:)?href="([^"]+)"[^>]*/?\s*>`)
	emptyAltRe   = regexp.MustCompile(`(<img\b[^>]*)\balt\s*=\s*""([^>]*>)`)
	imgTagRe     = regexp.MustCompile(`<img\b[^>]*>`)
	altAttrRe    = regexp.MustCompile(`\balt\s*=`)
	srcAttrRe    = regexp.MustCompile(`src="([^"]+)"`)
	emptyAnchorRe = regexp.MustCompile(`<a\s[^>]*id="([^"]+)"[^>]*>\s*</a>`)
	anchorIDRe   = regexp.MustCompile(`(<a\b)([^>]*?)\sid="([^"]+)"([^>]*>)`)
	elemIDRe     = regexp.MustCompile(`(<(\w+)\b)([^>]*?)\sid="([^"]+)"([^>]*>)`)
	footnoteRe   = regexp.MustCompile(`(?s)<aside[^>]*data-epub-type="footnote"[^>]*id="([^"]*)"[^>]*>(.*?)</aside>`)
	footnoteRefRe = regexp.MustCompile(`<a[^>]*data-epub-type="noteref"[^>]*href="#([^"]*)"[^>]*>[^<]*</a>`)
	tagStripRe   = regexp.MustCompile(`<[^>]+>`)

	anchorTokenRe    = regexp.MustCompile(`EPXANCHOR__(.+?)__ENDEPX`)
	boldAnchorRe     = regexp.MustCompile(`\*\*\{\{EPX_ID:([^}]+)\}\}([^*]*)\*\*`)
	headingInlineRe  = regexp.MustCompile(`(?m)^(\{\{EPX_ID:[^}]+\}\})(#{1,6}\s+.+)$`)
	headingContainsRe = regexp.MustCompile(`(?m)^(#{1,6}\s+)(.*?)\{\{EPX_ID:([^}]+)\}\}(.*)$`)
	pendingRe        = regexp.MustCompile(`(?m)^(#{1,6}\s+.+?)<<PENDING:\{\{EPX_ID:([^}]+)\}\}>>$`)
	preHeadingRe     = regexp.MustCompile(`(?m)((?:\{\{EPX_ID:[^}]+\}\}\s*)+)\n\n(#{1,6}\s+.+)$`)
	preHeadingIDRe   = regexp.MustCompile(`\{\{EPX_ID:([^}]+)\}\}`)
	remainingIDRe    = regexp.MustCompile(`\{\{EPX_ID:([^}]+)\}\}`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
)

// HTMLToMarkdown converts one chapter's raw XHTML into Markdown.
// pathMap rewrites intra-book references (assets, sibling chapters);
// referencedIDs restricts anchor preservation to fragment targets that
// are actually linked somewhere in the book (an empty set preserves
// none).
func HTMLToMarkdown(xhtml string, pathMap map[string]string, referencedIDs map[string]bool) (string, error) {
	preprocessed := preprocessXHTML(xhtml, pathMap, referencedIDs)

	md, err := html2md.ConvertString(preprocessed)
	if err != nil {
		return "", fmt.Errorf("convert xhtml to markdown: %w", err)
	}

	return postprocessMarkdown(md), nil
}

func preprocessXHTML(xhtml string, pathMap map[string]string, referencedIDs map[string]bool) string {
	out := xmlDeclRe.ReplaceAllString(xhtml, "")

	out = stripHead(out)

	out = svgRe.ReplaceAllStringFunc(out, func(whole string) string {
		m := svgRe.FindStringSubmatch(whole)
		inner := m[1]
		if drawingRe.MatchString(inner) {
			return whole
		}
		imgs := imageHrefRe.FindAllStringSubmatch(inner, -1)
		if len(imgs) != 1 {
			return whole
		}
		return fmt.Sprintf(`<img src="%s" alt="Cover image"/>`, imgs[0][1])
	})

	out = emptyAltRe.ReplaceAllStringFunc(out, func(whole string) string {
		m := emptyAltRe.FindStringSubmatch(whole)
		before, after := m[1], m[2]
		return before + `alt="` + deriveAltFromTag(before) + `"` + after
	})

	out = imgTagRe.ReplaceAllStringFunc(out, func(tag string) string {
		if altAttrRe.MatchString(tag) {
			return tag
		}
		alt := deriveAltFromTag(tag)
		return `<img alt="` + alt + `"` + tag[len("<img"):]
	})

	out = emptyAnchorRe.ReplaceAllStringFunc(out, func(whole string) string {
		id := emptyAnchorRe.FindStringSubmatch(whole)[1]
		if referencedIDs[id] {
			return "EPXANCHOR__" + id + "__ENDEPX"
		}
		return ""
	})

	out = anchorIDRe.ReplaceAllStringFunc(out, func(whole string) string {
		m := anchorIDRe.FindStringSubmatch(whole)
		tagStart, before, id, after := m[1], m[2], m[3], m[4]
		if referencedIDs[id] {
			return "EPXANCHOR__" + id + "__ENDEPX" + tagStart + before + after
		}
		return tagStart + before + after
	})

	out = elemIDRe.ReplaceAllStringFunc(out, func(whole string) string {
		m := elemIDRe.FindStringSubmatch(whole)
		tagStart, tagName, before, id, after := m[1], m[2], m[3], m[4], m[5]
		if strings.EqualFold(tagName, "a") {
			return whole
		}
		if referencedIDs[id] {
			return tagStart + before + after + "EPXANCHOR__" + id + "__ENDEPX"
		}
		return tagStart + before + after
	})

	out = strings.ReplaceAll(out, "epub:", "data-epub-")

	out = rewritePaths(out, pathMap)

	out = footnoteRe.ReplaceAllStringFunc(out, func(whole string) string {
		m := footnoteRe.FindStringSubmatch(whole)
		id, content := m[1], m[2]
		return fmt.Sprintf("[^%s]: %s", id, stripHTMLTags(content))
	})

	out = footnoteRefRe.ReplaceAllStringFunc(out, func(whole string) string {
		id := footnoteRefRe.FindStringSubmatch(whole)[1]
		return "[^" + id + "]"
	})

	return out
}

// stripHead removes a <head>...</head> block using a tokenizer rather
// than a regex, since head content may itself contain nested comments
// or CDATA a regex handles poorly.
func stripHead(doc string) string {
	lower := strings.ToLower(doc)
	start := strings.Index(lower, "<head")
	if start < 0 {
		return doc
	}
	z := html.NewTokenizer(strings.NewReader(doc[start:]))
	depth := 0
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return doc
		}
		raw := z.Raw()
		consumed += len(raw)
		tok := z.Token()
		switch tt {
		case html.StartTagToken:
			if tok.Data == "head" {
				depth++
			}
		case html.SelfClosingTagToken:
			// <head/> on its own, unlikely but handle it.
			if tok.Data == "head" && depth == 0 {
				return doc[:start] + doc[start+consumed:]
			}
		case html.EndTagToken:
			if tok.Data == "head" {
				depth--
				if depth == 0 {
					return doc[:start] + doc[start+consumed:]
				}
			}
		}
	}
}

func rewritePaths(doc string, pathMap map[string]string) string {
	if len(pathMap) == 0 {
		return doc
	}
	keys := make([]string, 0, len(pathMap))
	for k := range pathMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	type placeholder struct {
		token string
		value string
	}
	placeholders := make([]placeholder, 0, len(keys))
	for i, k := range keys {
		token := "\x00EPX_PATH_" + strconv.Itoa(i) + "\x00"
		doc = strings.ReplaceAll(doc, k, token)
		placeholders = append(placeholders, placeholder{token, pathMap[k]})
	}
	for _, p := range placeholders {
		doc = strings.ReplaceAll(doc, p.token, p.value)
	}
	return doc
}

// deriveAltFromTag derives alt text from an <img> tag's src attribute:
// the filename stem, underscores turned to spaces, or "Image" when the
// stem is empty or purely numeric.
func deriveAltFromTag(tag string) string {
	m := srcAttrRe.FindStringSubmatch(tag)
	src := ""
	if m != nil {
		src = m[1]
	}

	filename := src
	if idx := strings.LastIndexAny(filename, "/\\"); idx >= 0 {
		filename = filename[idx+1:]
	}
	name := filename
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		name = filename[:idx]
	}

	if name == "" {
		return "Image"
	}
	if isAllDigits(name) {
		return "Image"
	}
	return strings.ReplaceAll(name, "_", " ")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripHTMLTags(s string) string {
	return strings.TrimSpace(tagStripRe.ReplaceAllString(s, ""))
}

// postprocessMarkdown reconstructs Pandoc anchor syntax from the opaque
// tokens preprocessXHTML smuggled through the conversion engine.
func postprocessMarkdown(md string) string {
	result := anchorTokenRe.ReplaceAllString(md, "{{EPX_ID:$1}}")

	result = boldAnchorRe.ReplaceAllStringFunc(result, func(whole string) string {
		m := boldAnchorRe.FindStringSubmatch(whole)
		id, text := m[1], m[2]
		if text == "" {
			return "{{EPX_ID:" + id + "}}"
		}
		return "{{EPX_ID:" + id + "}}**" + text + "**"
	})

	result = headingInlineRe.ReplaceAllString(result, "$2<<PENDING:$1>>")

	result = headingContainsRe.ReplaceAllStringFunc(result, func(whole string) string {
		m := headingContainsRe.FindStringSubmatch(whole)
		hashes, before, id, after := m[1], m[2], m[3], m[4]
		text := strings.TrimSpace(before + after)
		return hashes + text + " {#" + id + "}"
	})

	result = pendingRe.ReplaceAllString(result, "$1 {#$2}")

	result = preHeadingRe.ReplaceAllStringFunc(result, func(whole string) string {
		m := preHeadingRe.FindStringSubmatch(whole)
		anchorsBlock, heading := m[1], m[2]
		idMatches := preHeadingIDRe.FindAllStringSubmatch(anchorsBlock, -1)
		if len(idMatches) == 0 {
			return whole
		}
		var lines []string
		for _, im := range idMatches[1:] {
			lines = append(lines, "[]{#"+im[1]+"}")
		}
		lines = append(lines, heading+" {#"+idMatches[0][1]+"}")
		return strings.Join(lines, "\n")
	})

	result = remainingIDRe.ReplaceAllString(result, "[]{#$1}")

	result = blankRunRe.ReplaceAllString(result, "\n\n")

	lines := strings.Split(result, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	result = strings.Join(lines, "\n")

	result = strings.TrimRight(result, "\n") + "\n"

	return result
}
