package converter

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// foreignNamespaces maps the html package's foreign content namespaces to
// their XML namespace URIs.
var foreignNamespaces = map[string]string{
	"svg":  "http://www.w3.org/2000/svg",
	"math": "http://www.w3.org/1998/Math/MathML",
}

const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// toXHTML serializes an HTML node and its subtree as well-formed XHTML:
// void elements self-close, text and attribute values are escaped, and
// foreign (SVG, MathML) subtrees carry their namespace declarations.
// Elements whose names XML cannot express, such as Word's "o:p", are
// unwrapped and only their content is kept.
func toXHTML(n *html.Node) (string, error) {
	doc := etree.NewDocument()
	appendNode(&doc.Element, n, "")
	return doc.WriteToString()
}

func appendNode(parent *etree.Element, n *html.Node, parentNS string) {
	switch n.Type {
	case html.ElementNode:
		if !isNCName(n.Data) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				appendNode(parent, c, parentNS)
			}
			return
		}
		el := parent.CreateElement(n.Data)
		switch {
		case n.Namespace == "" && parentNS != "":
			// HTML inside an integration point such as foreignObject
			el.CreateAttr("xmlns", xhtmlNamespace)
		case n.Namespace != "" && n.Namespace != parentNS:
			if uri, ok := foreignNamespaces[n.Namespace]; ok {
				el.CreateAttr("xmlns", uri)
				el.CreateAttr("xmlns:xlink", xlinkNamespace)
			}
		}
		for _, a := range n.Attr {
			key, ok := xmlAttrName(a)
			if !ok {
				continue
			}
			el.CreateAttr(key, stripInvalidXMLChars(a.Val))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendNode(el, c, n.Namespace)
		}
	case html.TextNode:
		parent.CreateText(stripInvalidXMLChars(n.Data))
	case html.CommentNode:
		// "--" and a trailing "-" are not allowed inside XML comments
		text := strings.ReplaceAll(n.Data, "--", "- -")
		if strings.HasSuffix(text, "-") {
			text += " "
		}
		parent.CreateComment(text)
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendNode(parent, c, parentNS)
		}
	}
}

// xmlAttrName maps an HTML attribute to its XML name. Names XML cannot
// express, namespace declarations and prefixes with no declaration in
// scope are dropped.
func xmlAttrName(a html.Attribute) (string, bool) {
	if a.Namespace != "" {
		// xlink and xml attributes of foreign content; xmlns declarations
		// are written on the foreign root instead.
		if a.Namespace == "xmlns" {
			return "", false
		}
		return a.Namespace + ":" + a.Key, isNCName(a.Key)
	}
	if prefix, local, ok := strings.Cut(a.Key, ":"); ok {
		return a.Key, prefix == "xml" && isNCName(local)
	}
	if a.Key == "xmlns" {
		return "", false
	}
	return a.Key, isNCName(a.Key)
}

// isNCName reports whether s is an XML name without a prefix. HTML accepts
// names such as "@click" or "x@y" that would break the XML serialization.
func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f:
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// stripInvalidXMLChars drops control characters XML 1.0 does not allow.
func stripInvalidXMLChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0xFFFE || r == 0xFFFF {
			return -1
		}
		return r
	}, s)
}
