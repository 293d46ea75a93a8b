package util

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNilNode = errors.New("HTML node is nil")

// ParseFragment parses an HTML fragment in the context of a body element and returns the body node.
func ParseFragment(r io.Reader) (*html.Node, error) {
	var body = &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		body.AppendChild(node)
	}
	return body, nil
}

// Walk visits root and its descendants in pre-order. The children of a node are visited if and only if visit returns true.
func Walk(root *html.Node, visit func(*html.Node) (bool, error)) error {

	if root == nil {
		return ErrNilNode
	}

	descend, err := visit(root)
	if err != nil || !descend {
		return err
	}

	for child := root.FirstChild; child != nil; {
		next := child.NextSibling // visit might detach child
		if err := Walk(child, visit); err != nil {
			return err
		}
		child = next
	}

	return nil
}

// StripTags returns the text content of an HTML fragment. Whitespace is collapsed. Script and style elements are dropped.
func StripTags(fragment string) (string, error) {

	root, err := ParseFragment(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var text = &strings.Builder{}
	err = Walk(root, func(node *html.Node) (bool, error) {
		switch node.Type {
		case html.TextNode:
			text.WriteString(node.Data)
			text.WriteString(" ")
		case html.ElementNode:
			if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}

	return strings.Join(strings.Fields(text.String()), " "), nil
}
