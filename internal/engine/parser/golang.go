package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"crosscheck/internal/engine/symbols"
)

type GoExtractor struct{}

func (e *GoExtractor) Language() string { return "go" }

func (e *GoExtractor) Extract(root *sitter.Node, source []byte, scope string) (*symbols.Table, error) {
	ctx := &ExtractionContext{Source: source, Table: symbols.NewTable()}
	e.walk(ctx, root, scope)
	return ctx.Table, nil
}

func (e *GoExtractor) walk(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "package_clause":
		return
	case "import_declaration":
		e.extractImports(ctx, node, scope)
		return
	case "function_declaration", "method_declaration":
		e.extractFunction(ctx, node, scope)
		return
	case "type_declaration":
		e.extractTypeDecl(ctx, node, scope)
		return
	case "var_declaration", "const_declaration":
		e.extractVarDecl(ctx, node, scope)
		return
	case "short_var_declaration":
		e.extractShortVarDecl(ctx, node, scope)
		return
	case "assignment_statement":
		// Plain assignment rebinds an existing name; targets are not reads.
		e.walkTarget(ctx, node.ChildByFieldName("left"), scope)
		e.walk(ctx, node.ChildByFieldName("right"), scope)
		return
	case "call_expression":
		e.extractCall(ctx, node, scope)
		return
	case "selector_expression":
		e.walk(ctx, node.ChildByFieldName("operand"), scope)
		return
	case "keyed_element":
		// Struct literal field names are labels, not reads.
		if n := node.ChildCount(); n > 0 {
			e.walk(ctx, node.Child(n-1), scope)
		}
		return
	case "parameter_declaration", "variadic_parameter_declaration":
		e.walk(ctx, node.ChildByFieldName("type"), scope)
		return
	case "field_declaration":
		e.walk(ctx, node.ChildByFieldName("type"), scope)
		return
	case "identifier", "type_identifier", "package_identifier":
		ctx.Table.AddUsage(ctx.Text(node), ctx.Line(node))
		return
	case "field_identifier", "label_name":
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(ctx, node.Child(i), scope)
	}
}

func (e *GoExtractor) extractImports(ctx *ExtractionContext, node *sitter.Node, scope string) {
	var specs []*sitter.Node
	if list := node.Child(1); list != nil && list.Kind() == "import_spec_list" {
		for i := uint(0); i < list.ChildCount(); i++ {
			if child := list.Child(i); child.Kind() == "import_spec" {
				specs = append(specs, child)
			}
		}
	} else if spec := node.Child(1); spec != nil && spec.Kind() == "import_spec" {
		specs = append(specs, spec)
	}

	for _, spec := range specs {
		path := strings.Trim(ctx.Text(spec.ChildByFieldName("path")), "\"`")
		if path == "" {
			continue
		}
		bound := path[strings.LastIndex(path, "/")+1:]
		if name := spec.ChildByFieldName("name"); name != nil {
			alias := ctx.Text(name)
			if alias == "_" || alias == "." {
				continue
			}
			bound = alias
		}
		ctx.Table.AddImport(bound, path, ctx.Line(spec), scope)
	}
}

func (e *GoExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, scope string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}

	returnType := ""
	if result := node.ChildByFieldName("result"); result != nil {
		returnType = normalizeAnnotation(ctx.Text(result))
		e.walk(ctx, result, scope)
	}
	ctx.Table.AddFunction(name, ctx.Line(node), scope, returnType)

	childScope := "function:" + name
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		e.walk(ctx, recv, childScope)
	}
	e.walk(ctx, node.ChildByFieldName("parameters"), childScope)
	e.walk(ctx, node.ChildByFieldName("body"), childScope)
}

func (e *GoExtractor) extractTypeDecl(ctx *ExtractionContext, node *sitter.Node, scope string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec.Kind() != "type_spec" && spec.Kind() != "type_alias" {
			continue
		}
		name := ctx.Text(spec.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		ctx.Table.AddDefinition(name, symbols.KindClass, ctx.Line(spec), scope)
		e.walk(ctx, spec.ChildByFieldName("type"), scope)
	}
}

func (e *GoExtractor) extractVarDecl(ctx *ExtractionContext, node *sitter.Node, scope string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec.Kind() != "var_spec" && spec.Kind() != "const_spec" {
			continue
		}
		for j := uint(0); j < spec.ChildCount(); j++ {
			child := spec.Child(j)
			if child.Kind() == "identifier" {
				ctx.Table.AddDefinition(ctx.Text(child), symbols.KindVariable, ctx.Line(spec), scope)
			}
		}
		e.walk(ctx, spec.ChildByFieldName("type"), scope)
		e.walk(ctx, spec.ChildByFieldName("value"), scope)
	}
}

func (e *GoExtractor) extractShortVarDecl(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if left := node.ChildByFieldName("left"); left != nil {
		for i := uint(0); i < left.ChildCount(); i++ {
			child := left.Child(i)
			if child.Kind() == "identifier" && ctx.Text(child) != "_" {
				ctx.Table.AddDefinition(ctx.Text(child), symbols.KindVariable, ctx.Line(node), scope)
			}
		}
	}
	e.walk(ctx, node.ChildByFieldName("right"), scope)
}

func (e *GoExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node, scope string) {
	line := ctx.Line(node)
	fn := node.ChildByFieldName("function")
	if fn != nil {
		switch fn.Kind() {
		case "identifier":
			name := ctx.Text(fn)
			ctx.Table.AddCall(name, line)
			ctx.Table.AddUsage(name, ctx.Line(fn))
		case "selector_expression":
			ctx.Table.AddCall(ctx.Text(fn.ChildByFieldName("field")), line)
			e.walk(ctx, fn.ChildByFieldName("operand"), scope)
		default:
			e.walk(ctx, fn, scope)
		}
	}
	e.walk(ctx, node.ChildByFieldName("arguments"), scope)
}

func (e *GoExtractor) walkTarget(ctx *ExtractionContext, node *sitter.Node, scope string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		return
	case "selector_expression":
		e.walk(ctx, node.ChildByFieldName("operand"), scope)
	case "index_expression":
		e.walk(ctx, node.ChildByFieldName("operand"), scope)
		e.walk(ctx, node.ChildByFieldName("index"), scope)
	case "expression_list":
		for i := uint(0); i < node.ChildCount(); i++ {
			e.walkTarget(ctx, node.Child(i), scope)
		}
	default:
		e.walk(ctx, node, scope)
	}
}
