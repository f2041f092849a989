package index

import (
	"unsafe"

	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageSpec binds a language identifier to its grammar and its symbol
// query. Queries use a paired capture convention: @<kind>.definition marks
// the whole definition node, @<kind>.name marks the node supplying the
// symbol's display name. Adding language support means adding an entry
// here, not writing per-language traversal code.
//
// A spec with an empty query falls back to coarse node-kind matching
// in the extractor.
type languageSpec struct {
	grammar func() unsafe.Pointer
	query   string
}

var languageSpecs = map[string]languageSpec{
	"python":     {grammar: tree_sitter_python.Language, query: pythonQuery},
	"javascript": {grammar: tree_sitter_javascript.Language, query: javascriptQuery},
	"typescript": {grammar: tree_sitter_typescript.LanguageTypescript, query: typescriptQuery},
	"go":         {grammar: tree_sitter_go.Language, query: goQuery},
	"rust":       {grammar: tree_sitter_rust.Language, query: rustQuery},
	"ruby":       {grammar: tree_sitter_ruby.Language, query: rubyQuery},
	"java":       {grammar: tree_sitter_java.Language, query: javaQuery},
	"c":          {grammar: tree_sitter_c.Language, query: cQuery},
	"php":        {grammar: tree_sitter_php.LanguagePHP, query: phpQuery},
}

const pythonQuery = `
(class_definition
  name: (identifier) @class.name) @class.definition

(function_definition
  name: (identifier) @function.name) @function.definition
`

const javascriptQuery = `
(class_declaration
  name: (identifier) @class.name) @class.definition

(function_declaration
  name: (identifier) @function.name) @function.definition

(method_definition
  name: (property_identifier) @method.name) @method.definition

(variable_declarator
  name: (identifier) @function.name
  value: (arrow_function)) @function.definition

(variable_declarator
  name: (identifier) @function.name
  value: (function_expression)) @function.definition
`

const typescriptQuery = `
(class_declaration
  name: (type_identifier) @class.name) @class.definition

(interface_declaration
  name: (type_identifier) @class.name) @class.definition

(function_declaration
  name: (identifier) @function.name) @function.definition

(method_definition
  name: (property_identifier) @method.name) @method.definition

(method_signature
  name: (property_identifier) @method.name) @method.definition

(public_field_definition
  name: (property_identifier) @field.name) @field.definition

(variable_declarator
  name: (identifier) @function.name
  value: (arrow_function)) @function.definition
`

const goQuery = `
(function_declaration
  name: (identifier) @function.name) @function.definition

(method_declaration
  name: (field_identifier) @method.name) @method.definition

(type_declaration
  (type_spec
    name: (type_identifier) @class.name)) @class.definition
`

const rustQuery = `
(function_item
  name: (identifier) @function.name) @function.definition

(struct_item
  name: (type_identifier) @class.name) @class.definition

(enum_item
  name: (type_identifier) @enum.name) @enum.definition

(trait_item
  name: (type_identifier) @class.name) @class.definition
`

const rubyQuery = `
(class
  name: (constant) @class.name) @class.definition

(module
  name: (constant) @class.name) @class.definition

(method
  name: (identifier) @method.name) @method.definition

(singleton_method
  name: (identifier) @method.name) @method.definition
`

const javaQuery = `
(class_declaration
  name: (identifier) @class.name) @class.definition

(interface_declaration
  name: (identifier) @class.name) @class.definition

(enum_declaration
  name: (identifier) @enum.name) @enum.definition

(method_declaration
  name: (identifier) @method.name) @method.definition
`

const cQuery = `
(function_definition
  declarator: (function_declarator
    declarator: (identifier) @function.name)) @function.definition

(struct_specifier
  name: (type_identifier) @class.name
  body: (field_declaration_list)) @class.definition

(enum_specifier
  name: (type_identifier) @enum.name
  body: (enumerator_list)) @enum.definition
`

const phpQuery = `
(class_declaration
  name: (name) @class.name) @class.definition

(interface_declaration
  name: (name) @class.name) @class.definition

(trait_declaration
  name: (name) @class.name) @class.definition

(function_definition
  name: (name) @function.name) @function.definition

(method_declaration
  name: (name) @method.name) @method.definition
`

// SupportedLanguages returns the language identifiers with a catalog entry.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(languageSpecs))
	for lang := range languageSpecs {
		langs = append(langs, lang)
	}
	return langs
}
