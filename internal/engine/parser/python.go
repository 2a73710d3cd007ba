package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"crosscheck/internal/engine/symbols"
)

// PythonExtractor is the reference extractor. Identifier reads become
// usages, value-binding positions (assignment targets, parameters, loop
// variables, as-patterns) do not, matching how a load/store split over the
// syntax tree behaves.
type PythonExtractor struct{}

func (e *PythonExtractor) Language() string { return "python" }

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, scope string) (*symbols.Table, error) {
	ctx := &ExtractionContext{Source: source, Table: symbols.NewTable()}
	e.walk(ctx, root, scope)
	return ctx.Table, nil
}

func (e *PythonExtractor) walk(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		e.extractImport(ctx, node, scope)
		return
	case "import_from_statement", "future_import_statement":
		e.extractFromImport(ctx, node, scope)
		return
	case "function_definition":
		e.extractFunction(ctx, node, scope)
		return
	case "class_definition":
		e.extractClass(ctx, node, scope)
		return
	case "assignment":
		e.extractAssignment(ctx, node, scope)
		return
	case "augmented_assignment":
		// x += 1 neither defines nor reads x as a plain value load, but a
		// target like obj.field or d[k] still reads its base expression.
		e.walkTarget(ctx, node.ChildByFieldName("left"), scope)
		e.walk(ctx, node.ChildByFieldName("right"), scope)
		return
	case "named_expression":
		e.walk(ctx, node.ChildByFieldName("value"), scope)
		return
	case "for_statement":
		e.walkTarget(ctx, node.ChildByFieldName("left"), scope)
		e.walk(ctx, node.ChildByFieldName("right"), scope)
		e.walk(ctx, node.ChildByFieldName("body"), scope)
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			e.walk(ctx, alt, scope)
		}
		return
	case "for_in_clause":
		e.walkTarget(ctx, node.ChildByFieldName("left"), scope)
		e.walk(ctx, node.ChildByFieldName("right"), scope)
		return
	case "call":
		e.extractCall(ctx, node, scope)
		return
	case "attribute":
		e.walk(ctx, node.ChildByFieldName("object"), scope)
		return
	case "keyword_argument":
		e.walk(ctx, node.ChildByFieldName("value"), scope)
		return
	case "as_pattern":
		if value := node.Child(0); value != nil {
			e.walk(ctx, value, scope)
		}
		return
	case "lambda":
		e.walkParameters(ctx, node.ChildByFieldName("parameters"), scope)
		e.walk(ctx, node.ChildByFieldName("body"), scope)
		return
	case "global_statement", "nonlocal_statement":
		return
	case "identifier":
		ctx.Table.AddUsage(ctx.Text(node), ctx.Line(node))
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(ctx, node.Child(i), scope)
	}
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			module := ctx.Text(child)
			ctx.Table.AddImport(module, module, line, scope)
		case "aliased_import":
			module := ctx.Text(child.ChildByFieldName("name"))
			alias := ctx.Text(child.ChildByFieldName("alias"))
			if alias == "" {
				alias = module
			}
			ctx.Table.AddImport(alias, module, line, scope)
		}
	}
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	module := strings.TrimSpace(ctx.Text(node.ChildByFieldName("module_name")))

	record := func(bound, item string) {
		full := item
		switch {
		case module == "":
		case strings.HasSuffix(module, "."):
			// relative imports already end with their dots
			full = module + item
		default:
			full = module + "." + item
		}
		ctx.Table.AddImport(bound, full, line, scope)
	}

	moduleNode := node.ChildByFieldName("module_name")
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			// The module_name field also matches here; skip it.
			if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
				continue
			}
			item := ctx.Text(child)
			record(item, item)
		case "aliased_import":
			item := ctx.Text(child.ChildByFieldName("name"))
			alias := ctx.Text(child.ChildByFieldName("alias"))
			if alias == "" {
				alias = item
			}
			record(alias, item)
		case "wildcard_import":
			record("*", "*")
		}
	}
}

func (e *PythonExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}

	returnType := ""
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		returnType = normalizeAnnotation(ctx.Text(rt))
		// Annotation identifiers are value reads.
		e.walk(ctx, rt, scope)
	}
	ctx.Table.AddFunction(name, ctx.Line(node), scope, returnType)

	childScope := "function:" + name
	e.walkParameters(ctx, node.ChildByFieldName("parameters"), childScope)
	e.walk(ctx, node.ChildByFieldName("body"), childScope)
}

// walkParameters skips parameter names but still walks annotations and
// default values, whose identifiers are reads.
func (e *PythonExtractor) walkParameters(ctx *ExtractionContext, params *sitter.Node, scope string) {
	if params == nil {
		return
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		param := params.Child(i)
		switch param.Kind() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			// bare or splat parameter name
		case "typed_parameter":
			e.walk(ctx, param.ChildByFieldName("type"), scope)
		case "default_parameter":
			e.walk(ctx, param.ChildByFieldName("value"), scope)
		case "typed_default_parameter":
			e.walk(ctx, param.ChildByFieldName("type"), scope)
			e.walk(ctx, param.ChildByFieldName("value"), scope)
		}
	}
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	ctx.Table.AddDefinition(name, symbols.KindClass, ctx.Line(node), scope)

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		e.walk(ctx, supers, scope)
	}
	e.walk(ctx, node.ChildByFieldName("body"), "class:"+name)
}

func (e *PythonExtractor) extractAssignment(ctx *ExtractionContext, node *sitter.Node, scope string) {
	left := node.ChildByFieldName("left")
	if left != nil {
		if left.Kind() == "identifier" {
			ctx.Table.AddDefinition(ctx.Text(left), symbols.KindVariable, ctx.Line(node), scope)
		} else {
			e.walkTarget(ctx, left, scope)
		}
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		e.walk(ctx, typ, scope)
	}
	if right := node.ChildByFieldName("right"); right != nil {
		e.walk(ctx, right, scope)
	}
}

func (e *PythonExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	fn := node.ChildByFieldName("function")
	if fn != nil {
		switch fn.Kind() {
		case "identifier":
			name := ctx.Text(fn)
			ctx.Table.AddCall(name, line)
			ctx.Table.AddUsage(name, ctx.Line(fn))
		case "attribute":
			ctx.Table.AddCall(ctx.Text(fn.ChildByFieldName("attribute")), line)
			e.walk(ctx, fn.ChildByFieldName("object"), scope)
		default:
			e.walk(ctx, fn, scope)
		}
	}
	if args := node.ChildByFieldName("arguments"); args != nil {
		e.walk(ctx, args, scope)
	}
}

// walkTarget handles store-context expressions: bare identifiers bind
// rather than read, while attribute/subscript targets still read their
// base expressions.
func (e *PythonExtractor) walkTarget(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		return
	case "attribute":
		e.walk(ctx, node.ChildByFieldName("object"), scope)
	case "subscript":
		e.walk(ctx, node.ChildByFieldName("value"), scope)
		e.walk(ctx, node.ChildByFieldName("subscript"), scope)
	case "pattern_list", "tuple_pattern", "list_pattern", "parenthesized_expression":
		for i := uint(0); i < node.ChildCount(); i++ {
			e.walkTarget(ctx, node.Child(i), scope)
		}
	default:
		e.walk(ctx, node, scope)
	}
}
