// Package xmlutils wraps xmlpath for reading statement XML from memory.
package xmlutils

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/xmlpath.v2"
)

var (
	ibanRe      = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}(?:[A-Z0-9]?){0,16}\b`)
	noisePrefix = []string{
		"Remittance Info: ",
		"Remittance Information: ",
		"Additional Entry Info: ",
		"Additional Transaction Info: ",
		"Details: ",
	}
)

// Parse parses an XML document held in memory.
func Parse(data []byte) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// Exists reports whether path matches anything under node.
func Exists(node *xmlpath.Node, path *xmlpath.Path) bool {
	return path.Exists(node)
}

// First returns the trimmed text of the first match of the first path that
// yields a non-empty value.
func First(node *xmlpath.Node, paths ...*xmlpath.Path) string {
	for _, p := range paths {
		if v, ok := p.String(node); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Nodes returns every node matched by path.
func Nodes(node *xmlpath.Node, path *xmlpath.Path) []*xmlpath.Node {
	var nodes []*xmlpath.Node
	iter := path.Iter(node)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes
}

// CleanText collapses whitespace, drops well-known labels and masks IBANs.
func CleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	for _, prefix := range noisePrefix {
		text = strings.TrimPrefix(text, prefix)
	}
	return ibanRe.ReplaceAllString(text, "IBAN")
}
