package sourcetree

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// NavLink is one flattened entry in a navigation list, labeled with the
// indentation depth it was discovered at (e.g. a CommonMark list-item's
// nesting level).
type NavLink struct {
	Label string
	Href  string
	Depth int
}

// NavNode is one entry of a reconstructed navigation tree.
type NavNode struct {
	Label    string
	Href     string
	Children []*NavNode
}

// BuildNavTree reassembles a nested navigation tree from a flat,
// depth-annotated link sequence, the same shape a Markdown list parser or
// a flattened NCX/nav walk produces. Following
// original_source/src/util.rs's build_nav_tree, it keeps a stack of
// (depth, siblings) frames: an entry deeper than the top frame opens a
// new frame, an entry at the top frame's depth joins that frame, and
// whenever a shallower entry arrives every deeper frame is popped and its
// children are attached to the last point of the frame below it (or
// flushed to the root if the stack is now empty).
//
// A deeper entry therefore becomes a child of the nearest preceding
// shallower entry: the depth sequence 0, 1, 1 yields one root point with
// two children. Both internal/assemble's SUMMARY.md parser and the TOC
// set-from-markdown editing operation build their trees with it.
func BuildNavTree(links []NavLink) []*NavNode {
	var root []*NavNode

	type frame struct {
		depth    int
		children []*NavNode
	}
	var stack []frame

	popInto := func(f frame) {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			if len(top.children) > 0 {
				last := top.children[len(top.children)-1]
				last.Children = append(last.Children, f.children...)
			}
		} else {
			root = append(root, f.children...)
		}
	}

	for _, link := range links {
		point := &NavNode{Label: link.Label, Href: link.Href}

		for len(stack) > 0 && stack[len(stack)-1].depth > link.Depth {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			popInto(f)
		}

		if len(stack) > 0 && stack[len(stack)-1].depth == link.Depth {
			top := &stack[len(stack)-1]
			top.children = append(top.children, point)
		} else {
			stack = append(stack, frame{depth: link.Depth, children: []*NavNode{point}})
		}
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		popInto(f)
	}

	return root
}

var navLinkParser = goldmark.New().Parser()

// ParseNavLinks walks a CommonMark list (SUMMARY.md or any TOC markdown
// in the same shape) and flattens it to depth-annotated links ready for
// BuildNavTree. Grounded on
// original_source/src/assemble/spine_build.rs's parse_summary and
// original_source/src/manipulate/toc_edit.rs's set_toc_from_markdown,
// which walk the identical event stream for two different callers
// (assembly's chapter order and the TOC set-from-markdown edit); sharing
// the walk here keeps both in lockstep with a single goldmark AST
// traversal instead of two hand-rolled copies.
func ParseNavLinks(content []byte) []NavLink {
	doc := navLinkParser.Parse(text.NewReader(content))

	var links []NavLink
	depth := 0
	inLink := false
	var href string
	var label strings.Builder

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindList:
			if entering {
				depth++
			} else {
				depth--
			}
		case ast.KindLink:
			link := n.(*ast.Link)
			if entering {
				inLink = true
				href = string(link.Destination)
				label.Reset()
			} else {
				inLink = false
				linkDepth := depth - 1
				if linkDepth < 0 {
					linkDepth = 0
				}
				links = append(links, NavLink{
					Label: strings.TrimSpace(label.String()),
					Href:  href,
					Depth: linkDepth,
				})
			}
		case ast.KindText:
			if inLink {
				t := n.(*ast.Text)
				label.Write(t.Segment.Value(content))
			}
		}
		return ast.WalkContinue, nil
	})

	return links
}
