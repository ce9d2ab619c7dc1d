package rust

import "testing"

func TestParseProducesRootNodeForValidSource(t *testing.T) {
	parser := NewParser()
	tree := parser.Parse([]byte("fn main() {}\n"))
	if tree == nil {
		t.Fatal("expected a non-nil tree")
	}
	root := tree.RootNode()
	if root == nil {
		t.Fatal("expected a non-nil root node")
	}
	if root.HasError() {
		t.Fatalf("expected no parse errors for valid source, got tree %q", root.String())
	}
}

func TestParseIsErrorTolerantForInvalidSource(t *testing.T) {
	parser := NewParser()
	tree := parser.Parse([]byte("fn main( {\n"))
	if tree == nil {
		t.Fatal("expected tree-sitter to still produce a tree for malformed source")
	}
}
