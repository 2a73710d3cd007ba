package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"crosscheck/internal/engine/symbols"
)

// JSExtractor covers javascript, typescript and tsx; the grammars differ
// but share every node kind this extractor touches.
type JSExtractor struct {
	Lang string
}

func (e *JSExtractor) Language() string { return e.Lang }

func (e *JSExtractor) Extract(root *sitter.Node, source []byte, scope string) (*symbols.Table, error) {
	ctx := &ExtractionContext{Source: source, Table: symbols.NewTable()}
	e.walk(ctx, root, scope)
	return ctx.Table, nil
}

func (e *JSExtractor) walk(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		e.extractImport(ctx, node, scope)
		return
	case "function_declaration", "generator_function_declaration", "method_definition":
		e.extractFunction(ctx, node, scope)
		return
	case "class_declaration":
		e.extractClass(ctx, node, scope)
		return
	case "variable_declarator":
		e.extractDeclarator(ctx, node, scope)
		return
	case "assignment_expression", "augmented_assignment_expression":
		e.walkTarget(ctx, node.ChildByFieldName("left"), scope)
		e.walk(ctx, node.ChildByFieldName("right"), scope)
		return
	case "call_expression":
		e.extractCall(ctx, node, scope)
		return
	case "member_expression":
		e.walk(ctx, node.ChildByFieldName("object"), scope)
		return
	case "pair":
		e.walk(ctx, node.ChildByFieldName("value"), scope)
		return
	case "formal_parameters":
		e.walkParameters(ctx, node, scope)
		return
	case "arrow_function", "function_expression":
		e.walkParameters(ctx, node.ChildByFieldName("parameters"), scope)
		e.walk(ctx, node.ChildByFieldName("body"), scope)
		return
	case "identifier", "type_identifier", "shorthand_property_identifier":
		ctx.Table.AddUsage(ctx.Text(node), ctx.Line(node))
		return
	case "property_identifier", "statement_identifier":
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(ctx, node.Child(i), scope)
	}
}

func (e *JSExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	module := strings.Trim(ctx.Text(node.ChildByFieldName("source")), "\"'`")

	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier":
			ctx.Table.AddImport(ctx.Text(n), module, line, scope)
			return
		case "namespace_import":
			for i := uint(0); i < n.ChildCount(); i++ {
				if child := n.Child(i); child.Kind() == "identifier" {
					ctx.Table.AddImport(ctx.Text(child), module, line, scope)
				}
			}
			return
		case "import_specifier":
			bound := n.ChildByFieldName("alias")
			orig := n.ChildByFieldName("name")
			if bound == nil {
				bound = orig
			}
			item := ctx.Text(orig)
			full := module
			if item != "" {
				full = module + "." + item
			}
			ctx.Table.AddImport(ctx.Text(bound), full, line, scope)
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			collect(n.Child(i))
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "import_clause" {
			collect(child)
		}
	}
}

func (e *JSExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}

	returnType := ""
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		returnType = normalizeAnnotation(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ctx.Text(rt)), ":")))
		e.walk(ctx, rt, scope)
	}
	ctx.Table.AddFunction(name, ctx.Line(node), scope, returnType)

	childScope := "function:" + name
	e.walkParameters(ctx, node.ChildByFieldName("parameters"), childScope)
	e.walk(ctx, node.ChildByFieldName("body"), childScope)
}

func (e *JSExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	ctx.Table.AddDefinition(name, symbols.KindClass, ctx.Line(node), scope)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "class_heritage" {
			e.walk(ctx, child, scope)
		}
	}
	e.walk(ctx, node.ChildByFieldName("body"), "class:"+name)
}

func (e *JSExtractor) extractDeclarator(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := node.ChildByFieldName("name")
	value := node.ChildByFieldName("value")

	if name != nil && name.Kind() == "identifier" {
		bound := ctx.Text(name)
		if value != nil && (value.Kind() == "arrow_function" || value.Kind() == "function_expression") {
			returnType := ""
			if rt := value.ChildByFieldName("return_type"); rt != nil {
				returnType = normalizeAnnotation(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ctx.Text(rt)), ":")))
			}
			ctx.Table.AddFunction(bound, ctx.Line(node), scope, returnType)
		} else {
			ctx.Table.AddDefinition(bound, symbols.KindVariable, ctx.Line(node), scope)
		}
	} else if name != nil {
		// Destructuring patterns bind names without reading them.
		e.walkTarget(ctx, name, scope)
	}

	if typ := node.ChildByFieldName("type"); typ != nil {
		e.walk(ctx, typ, scope)
	}
	e.walk(ctx, value, scope)
}

func (e *JSExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	fn := node.ChildByFieldName("function")
	if fn != nil {
		switch fn.Kind() {
		case "identifier":
			name := ctx.Text(fn)
			ctx.Table.AddCall(name, line)
			ctx.Table.AddUsage(name, ctx.Line(fn))
		case "member_expression":
			ctx.Table.AddCall(ctx.Text(fn.ChildByFieldName("property")), line)
			e.walk(ctx, fn.ChildByFieldName("object"), scope)
		default:
			e.walk(ctx, fn, scope)
		}
	}
	e.walk(ctx, node.ChildByFieldName("arguments"), scope)
}

func (e *JSExtractor) walkParameters(ctx *ExtractionContext, params *sitter.Node, scope string) {
	if params == nil {
		return
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		param := params.Child(i)
		switch param.Kind() {
		case "identifier", "rest_pattern", "object_pattern", "array_pattern":
			// parameter bindings
		case "assignment_pattern":
			e.walk(ctx, param.ChildByFieldName("right"), scope)
		case "required_parameter", "optional_parameter":
			if typ := param.ChildByFieldName("type"); typ != nil {
				e.walk(ctx, typ, scope)
			}
			if value := param.ChildByFieldName("value"); value != nil {
				e.walk(ctx, value, scope)
			}
		}
	}
}

func (e *JSExtractor) walkTarget(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return
	case "member_expression":
		e.walk(ctx, node.ChildByFieldName("object"), scope)
	case "subscript_expression":
		e.walk(ctx, node.ChildByFieldName("object"), scope)
		e.walk(ctx, node.ChildByFieldName("index"), scope)
	case "object_pattern", "array_pattern", "pair_pattern":
		for i := uint(0); i < node.ChildCount(); i++ {
			e.walkTarget(ctx, node.Child(i), scope)
		}
	default:
		e.walk(ctx, node, scope)
	}
}
