// Package html prunes Question microdata subtrees and renders them as
// minified markup.
package html

import (
	"bytes"
	"strings"

	"github.com/fwojciec/ccqa"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LineBreak is the rendered form of a <br> element.
const LineBreak = "<br/>"

const (
	attrItemType = "itemtype"
	attrItemProp = "itemprop"
	attrContent  = "content"
)

// mode selects how walk treats the nodes it visits.
type mode int

const (
	// structural splices out elements that sit between microdata boundaries.
	structural mode = iota

	// leaf cleans the inside of an itemprop value without restructuring it.
	leaf
)

// attrPrefixes lists the attribute name prefixes that survive pruning.
var attrPrefixes = []string{"item", "content", "date"}

// mediaTags are tag name fragments of elements with no textual value.
var mediaTags = []string{"svg", "img", "hatul", "input", "button", "link"}

var newlineStripper = strings.NewReplacer("\n", "", "\r", "")

// Minify prunes the Question subtree rooted at n in place and renders what
// remains. It returns "" when the whole subtree is pruned away.
func Minify(n *html.Node) (string, error) {
	if !Prune(n) {
		return "", nil
	}
	return Render(n)
}

// Prune reduces the subtree rooted at n to the nodes that carry microdata
// and reports whether n itself survived.
func Prune(n *html.Node) bool {
	if !walk(n, structural) {
		return false
	}
	return removeEmpty(n)
}

// Render serializes n without line breaks and with repeated separators and
// <br> elements collapsed.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	s := newlineStripper.Replace(buf.String())
	s = ccqa.CollapseRepeatedMarker(s, ccqa.Separator)
	return ccqa.CollapseRepeatedMarker(s, LineBreak), nil
}

// walk applies the pruning rules of mode m to n and reports whether n is
// still part of the tree afterwards.
func walk(n *html.Node, m mode) bool {
	if m == leaf {
		return walkLeaf(n)
	}

	switch n.Type {
	case html.ElementNode:
	case html.TextNode, html.RawNode:
		return true
	case html.DocumentNode:
		for _, c := range children(n) {
			walk(c, structural)
		}
		return true
	default:
		detach(n)
		return false
	}

	// Leaves are recognized by their declared attributes, so an empty
	// itemprop still marks a property value.
	isProp := hasAttr(n, attrItemProp) && !hasAttr(n, attrItemType)
	prop := attr(n, attrItemProp)
	filterAttrs(n)
	if isProp {
		if prop == "url" {
			detach(n)
			return false
		}
		return walk(n, leaf)
	}

	for _, c := range children(n) {
		walk(c, structural)
	}
	if !hasAttr(n, attrItemType) && !hasAttr(n, attrItemProp) {
		splice(n)
		return false
	}
	return true
}

// walkLeaf cleans an itemprop value bottom-up. Nested item boundaries are
// not re-evaluated here.
func walkLeaf(n *html.Node) bool {
	for _, c := range children(n) {
		walkLeaf(c)
	}

	switch n.Type {
	case html.ElementNode:
		filterAttrs(n)
		if isMedia(n) {
			splice(n)
			return false
		}
	case html.TextNode:
		// The payload is escaped here, so it must render verbatim.
		n.Data = ccqa.SanitizeText(n.Data)
		n.Type = html.RawNode
	case html.CommentNode, html.DoctypeNode:
		detach(n)
		return false
	}
	return true
}

// removeEmpty detaches, bottom-up, elements and text that were left
// without content, and reports whether n survived.
func removeEmpty(n *html.Node) bool {
	for _, c := range children(n) {
		removeEmpty(c)
	}

	switch n.Type {
	case html.ElementNode:
		if n.FirstChild == nil && !keepsWhenEmpty(n) {
			detach(n)
			return false
		}
	case html.TextNode, html.RawNode:
		if n.Data == "" || n.Data == ccqa.Separator || n.Data == " " {
			detach(n)
			return false
		}
	}
	return true
}

// keepsWhenEmpty reports whether a childless element is still meaningful:
// line breaks, and item elements whose value lives in a content attribute.
func keepsWhenEmpty(n *html.Node) bool {
	if n.DataAtom == atom.Br {
		return true
	}
	return hasAttr(n, attrContent) && (hasAttr(n, attrItemProp) || hasAttr(n, attrItemType))
}

// filterAttrs drops empty attributes and attributes without a microdata prefix.
func filterAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Val == "" || !hasPrefix(a.Key, attrPrefixes) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func isMedia(n *html.Node) bool {
	for _, tag := range mediaTags {
		if strings.Contains(n.Data, tag) {
			return true
		}
	}
	return false
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

// children snapshots the child list so callers can mutate the tree while
// iterating.
func children(n *html.Node) []*html.Node {
	var cs []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cs = append(cs, c)
	}
	return cs
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// splice removes n and promotes its children into its position.
func splice(n *html.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
}
