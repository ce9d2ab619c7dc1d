package rust

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser wraps a tree-sitter Rust grammar. It is not safe for concurrent
// use by multiple goroutines simultaneously; callers parsing files in
// parallel should create one Parser per worker.
type Parser struct {
	lang *sitter.Language
}

// NewParser constructs a Parser bound to the Rust grammar.
func NewParser() *Parser {
	return &Parser{lang: rust.GetLanguage()}
}

// Parse produces a syntax tree for content. Syntactically invalid Rust
// still yields a tree — tree-sitter is error-tolerant — so callers should
// inspect tree.RootNode().HasError() rather than treating parse failure as
// fatal.
func (p *Parser) Parse(content []byte) *sitter.Tree {
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)
	return parser.Parse(nil, content)
}
