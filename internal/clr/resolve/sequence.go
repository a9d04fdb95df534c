package resolve

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
)

type color int

const (
	white color = iota
	gray
	black
)

// sequence reorders prog's top-level declarations into use-before-
// definition order by a DFS over the Dependency graph built during name
// resolution. A cycle among value declarations (A depends on B depends on
// A, with neither dependency passing through a function body) is reported
// as a single diagnostic citing both ends of the cycle-closing edge; the
// offending edge is then treated as absent so the DFS can still finish and
// produce a best-effort order for the rest of the program.
func sequence(prog *ast.Program, sink *errors.Sink) []int {
	indexByID := map[ident.ID]int{}
	regionByID := map[ident.ID]source.View{}
	for i, d := range prog.Decls {
		for _, b := range bindingsOf(d) {
			indexByID[b.ID] = i
			regionByID[b.ID] = b.Region
		}
	}

	colors := make([]color, len(prog.Decls))
	var order []int

	var visit func(i int)
	visit = func(i int) {
		if colors[i] == black {
			return
		}
		if colors[i] == gray {
			// Should not happen: caller only recurses into white nodes.
			return
		}
		colors[i] = gray

		b := bindingOf(prog.Decls[i])
		if b != nil {
			for _, depID := range b.Dependency {
				j, ok := indexByID[depID]
				if !ok {
					continue
				}
				switch colors[j] {
				case white:
					visit(j)
				case gray:
					sink.Addf(errors.Resolution, []source.View{b.Region, regionByID[depID]},
						"circular dependency between %q and %q", b.Name, nameOf(prog.Decls[j]))
				}
			}
		}

		colors[i] = black
		order = append(order, i)
	}

	for i := range prog.Decls {
		if colors[i] == white {
			visit(i)
		}
	}

	return order
}

// bindingOf returns d's representative binding for Dependency-edge
// purposes: a destructuring ValueDecl's first bound name, since only that
// binding ever accumulates Dependency edges during resolution (see
// resolveTopItem's currentTop assignment). A bare top-level statement has
// no binding of its own and returns nil.
func bindingOf(d ast.Stmt) *ast.Binding {
	switch n := d.(type) {
	case *ast.ValueDecl:
		return n.Bindings[0]
	case *ast.FunctionDecl:
		return n.Binding
	case *ast.StructDecl:
		return n.Binding
	}
	return nil
}

// bindingsOf returns every binding d introduces, so a reference to any one
// of a destructuring ValueDecl's names maps back to d's single slot in
// prog.Decls.
func bindingsOf(d ast.Stmt) []*ast.Binding {
	if n, ok := d.(*ast.ValueDecl); ok {
		return n.Bindings
	}
	if b := bindingOf(d); b != nil {
		return []*ast.Binding{b}
	}
	return nil
}

func nameOf(d ast.Stmt) string {
	if b := bindingOf(d); b != nil {
		return b.Name
	}
	return "?"
}
