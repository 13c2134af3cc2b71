package editops

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"epx/epub"
)

// SearchMatch is one line of spine content matching a search pattern.
type SearchMatch struct {
	ChapterID   string
	ChapterHref string
	LineNumber  int
	Context     string
}

// Search scans every spine XHTML document's text content (tags stripped)
// for pattern, returning one SearchMatch per matching line. chapterFilter
// restricts the scan to a single spine idref or index when non-empty.
// Grounded on original_source/src/manipulate/content_edit.rs's search.
func Search(book *epub.Book, pattern, chapterFilter string, useRegex bool) ([]SearchMatch, error) {
	re, err := compilePattern(pattern, useRegex)
	if err != nil {
		return nil, err
	}

	var matches []SearchMatch
	for _, doc := range spineDocuments(book) {
		if !matchesFilter(book, doc.idref, chapterFilter) {
			continue
		}
		text := stripHTMLTags(doc.xhtml)
		for i, line := range strings.Split(text, "\n") {
			if re.MatchString(line) {
				matches = append(matches, SearchMatch{
					ChapterID:   doc.idref,
					ChapterHref: doc.item.Href,
					LineNumber:  i + 1,
					Context:     strings.TrimSpace(line),
				})
			}
		}
	}
	return matches, nil
}

// Replace substitutes pattern with replacement within spine XHTML text
// nodes only (content between '>' and '<', so tag and attribute markup is
// untouched), returning the number of matches replaced. Grounded on
// content_edit.rs's replace/replace_in_text_nodes.
func Replace(book *epub.Book, pattern, replacement, chapterFilter string, useRegex bool) (int, error) {
	re, err := compilePattern(pattern, useRegex)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, doc := range spineDocuments(book) {
		if !matchesFilter(book, doc.idref, chapterFilter) {
			continue
		}
		total += len(re.FindAllStringIndex(stripHTMLTags(doc.xhtml), -1))
		result := replaceInTextNodes(doc.xhtml, re, replacement)
		if key, ok := resourceKey(book, doc.item.Href); ok {
			book.Resources[key] = []byte(result)
		}
	}
	return total, nil
}

// Heading is one heading discovered in spine content.
type Heading struct {
	Href  string
	Level int
	Text  string
}

// ListHeadings returns every <h1>-<h6> across spine content in spine
// order. Grounded on content_edit.rs's list_headings.
func ListHeadings(book *epub.Book) []Heading {
	var out []Heading
	for _, doc := range spineDocuments(book) {
		for _, match := range headingRe.FindAllStringSubmatch(doc.xhtml, -1) {
			level, _ := strconv.Atoi(match[1])
			text := stripHTMLTags(match[2])
			out = append(out, Heading{Href: doc.item.Href, Level: level, Text: text})
		}
	}
	return out
}

// RestructureHeadings rewrites heading levels across every resource
// according to a mapping string like "h2->h1,h3->h2", returning the
// total number of headings changed. Grounded on content_edit.rs's
// restructure_headings.
func RestructureHeadings(book *epub.Book, mapping string) (int, error) {
	levelMap, err := parseHeadingMapping(mapping)
	if err != nil {
		return 0, err
	}

	total := 0
	for key, data := range book.Resources {
		modified := string(data)
		changed := false
		for from, to := range levelMap {
			openRe := regexp.MustCompile(fmt.Sprintf(`<h%d([^>]*)>`, from))
			closeRe := regexp.MustCompile(fmt.Sprintf(`</h%d>`, from))
			count := len(openRe.FindAllStringIndex(modified, -1))
			if count == 0 {
				continue
			}
			total += count
			changed = true
			modified = openRe.ReplaceAllString(modified, fmt.Sprintf("<h%d$1>", to))
			modified = closeRe.ReplaceAllString(modified, fmt.Sprintf("</h%d>", to))
		}
		if changed {
			book.Resources[key] = []byte(modified)
		}
	}
	return total, nil
}

func parseHeadingMapping(mapping string) (map[int]int, error) {
	levelMap := make(map[int]int)
	for _, pair := range strings.Split(mapping, ",") {
		parts := strings.SplitN(pair, "->", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid mapping format: %s", epub.ErrInvalidArgument, pair)
		}
		from, fromErr := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(parts[0]), "h"))
		to, toErr := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(parts[1]), "h"))
		if fromErr != nil || toErr != nil || from < 1 || from > 6 || to < 1 || to > 6 {
			return nil, fmt.Errorf("%w: heading levels must be 1-6: %s", epub.ErrInvalidArgument, pair)
		}
		levelMap[from] = to
	}
	if len(levelMap) == 0 {
		return nil, fmt.Errorf("%w: empty heading mapping", epub.ErrInvalidArgument)
	}
	return levelMap, nil
}

func compilePattern(pattern string, useRegex bool) (*regexp.Regexp, error) {
	if !useRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", epub.ErrInvalidArgument, err)
	}
	return re, nil
}

// matchesFilter reports whether idref passes chapterFilter, which may be
// empty (no filter), an idref, or a spine index.
func matchesFilter(book *epub.Book, idref, chapterFilter string) bool {
	if chapterFilter == "" || chapterFilter == idref {
		return true
	}
	if idx, err := strconv.Atoi(chapterFilter); err == nil {
		for i, item := range book.Package.Spine.ItemRefs {
			if i == idx {
				return item.IDRef == idref
			}
		}
	}
	return false
}

// replaceInTextNodes applies re/replacement only to runs of text outside
// '<' ... '>' tag markup, matching content_edit.rs's replace_in_text_nodes
// character-by-character state machine.
func replaceInTextNodes(xhtml string, re *regexp.Regexp, replacement string) string {
	var result, textBuf strings.Builder
	inTag := false

	flush := func() {
		if textBuf.Len() > 0 {
			result.WriteString(re.ReplaceAllString(textBuf.String(), replacement))
			textBuf.Reset()
		}
	}

	for _, ch := range xhtml {
		switch {
		case ch == '<':
			flush()
			inTag = true
			result.WriteRune(ch)
		case ch == '>':
			inTag = false
			result.WriteRune(ch)
		case inTag:
			result.WriteRune(ch)
		default:
			textBuf.WriteRune(ch)
		}
	}
	flush()
	return result.String()
}
