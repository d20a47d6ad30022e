// Package javasrc inspects Java submissions before they are compiled.
//
// javac requires a public top-level type to live in a file of the same name,
// so the sandbox has to learn that name from the source itself.
package javasrc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// NoPublicType is the diagnostic for well-formed source without a public type.
const NoPublicType = "No public class found in Java code"

// Lookup is the outcome of FindPublicTypeName. Failures are data: Found is
// false and Diagnostic explains why.
type Lookup struct {
	Name       string
	Found      bool
	Diagnostic string
}

var typeDeclarations = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

// FindPublicTypeName parses source and returns the identifier of the first
// top-level type declared public.
func FindPublicTypeName(ctx context.Context, source string) Lookup {
	src := []byte(source)

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return Lookup{Diagnostic: fmt.Sprintf("Failed to parse Java code: %v", err)}
	}

	root := tree.RootNode()
	if root.HasError() {
		return Lookup{Diagnostic: describeError(root, src)}
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(i)
		if !typeDeclarations[decl.Type()] || !isPublic(decl) {
			continue
		}
		if name := decl.ChildByFieldName("name"); name != nil {
			return Lookup{Name: name.Content(src), Found: true}
		}
	}
	return Lookup{Diagnostic: NoPublicType}
}

func isPublic(decl *sitter.Node) bool {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		mods := decl.NamedChild(i)
		if mods.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(mods.ChildCount()); j++ {
			if mods.Child(j).Type() == "public" {
				return true
			}
		}
	}
	return false
}

// describeError reports the first ERROR or MISSING node in document order.
func describeError(root *sitter.Node, src []byte) string {
	bad := firstError(root)
	if bad == nil {
		return "Failed to parse Java code"
	}
	pos := bad.StartPoint()
	line, col := pos.Row+1, pos.Column+1
	if bad.IsMissing() {
		return fmt.Sprintf("parse error at line %d, column %d: missing %q", line, col, bad.Type())
	}
	text := strings.TrimSpace(bad.Content(src))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("parse error at line %d, column %d: unexpected %q", line, col, text)
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
