// Package flow classifies every statement's reachability-to-return as
// NEVER, SOMETIMES, or ALWAYS. Tunascript, a tree-walking interpreter,
// has no static reachability pass to adapt, so this one is written
// fresh, in the same small-enum-with-String() idiom that
// ast.ReturnAnnot itself follows.
package flow

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/source"
)

// Classify walks every top-level item, function body, and method body in
// prog (lambda bodies are single expressions and are not visited),
// writing a ReturnAnnot onto every Block/If/While node it visits, and
// reports a diagnostic for any non-void function whose body is not ALWAYS,
// and for any statement following an ALWAYS statement in the same block
// ("unreachable code").
func Classify(prog *ast.Program, sink *errors.Sink) {
	c := &classifier{errs: sink}
	c.blockItems(prog.Decls)
}

type classifier struct {
	errs *errors.Sink
}

func (c *classifier) decl(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.FunctionDecl:
		c.function(n.Body, n.ReturnType)
		n.ReturnAnnot = n.Body.ReturnAnnot
	case *ast.StructDecl:
		for _, m := range n.Methods {
			c.function(m.Body, m.ReturnType)
			m.ReturnAnnot = m.Body.ReturnAnnot
		}
	}
}

func (c *classifier) function(body *ast.Block, retType ast.TypeExpr) {
	annot := c.block(body)
	body.ReturnAnnot = annot

	isVoid := retType == nil || (retType.Resolved().IsVoid())
	if !isVoid && annot != ast.ALWAYS {
		c.errs.Addf(errors.Semantic, []source.View{body.Region()}, "function does not always return a value")
	}
}

// block classifies a list of statements (a Block's Items), left to right:
// NEVER to start; SOMETIMES promotes; ALWAYS dominates and makes any
// following statement unreachable (reported once, at the first offender).
func (c *classifier) block(b *ast.Block) ast.ReturnAnnot {
	return c.blockItems(b.Items)
}

func (c *classifier) blockItems(items []ast.Stmt) ast.ReturnAnnot {
	annot := ast.NEVER
	seenAlways := false
	reported := false

	for _, item := range items {
		a := c.stmt(item)
		if seenAlways && !reported {
			c.errs.Addf(errors.Semantic, []source.View{item.Region()}, "unreachable code")
			reported = true // only report once per block
		}
		annot = combine(annot, a)
		if a == ast.ALWAYS {
			seenAlways = true
		}
	}

	return annot
}

// combine folds a new statement's annotation into the running block
// annotation: ALWAYS dominates, SOMETIMES promotes over NEVER.
func combine(running, next ast.ReturnAnnot) ast.ReturnAnnot {
	if next == ast.ALWAYS || running == ast.ALWAYS {
		return ast.ALWAYS
	}
	if next == ast.SOMETIMES || running == ast.SOMETIMES {
		return ast.SOMETIMES
	}
	return ast.NEVER
}

func (c *classifier) stmt(s ast.Stmt) ast.ReturnAnnot {
	switch n := s.(type) {
	case *ast.Return:
		return ast.ALWAYS
	case *ast.Block:
		a := c.block(n)
		n.ReturnAnnot = a
		return a
	case *ast.If:
		a := c.ifStmt(n)
		n.ReturnAnnot = a
		return a
	case *ast.While:
		a := c.whileStmt(n)
		n.ReturnAnnot = a
		return a
	case *ast.FunctionDecl:
		// A local function declaration is its own scope; it contributes
		// nothing to the enclosing block's reachability.
		c.function(n.Body, n.ReturnType)
		n.ReturnAnnot = n.Body.ReturnAnnot
		return ast.NEVER
	case *ast.StructDecl:
		c.decl(n)
		return ast.NEVER
	default:
		return ast.NEVER
	}
}

func (c *classifier) ifStmt(n *ast.If) ast.ReturnAnnot {
	allAlways := n.Else != nil
	anyNotNever := false

	for _, b := range n.Blocks {
		a := c.block(b)
		b.ReturnAnnot = a
		if a != ast.ALWAYS {
			allAlways = false
		}
		if a != ast.NEVER {
			anyNotNever = true
		}
	}

	if n.Else != nil {
		a := c.block(n.Else)
		n.Else.ReturnAnnot = a
		if a != ast.ALWAYS {
			allAlways = false
		}
		if a != ast.NEVER {
			anyNotNever = true
		}
	}

	switch {
	case allAlways:
		return ast.ALWAYS
	case anyNotNever:
		return ast.SOMETIMES
	default:
		return ast.NEVER
	}
}

func (c *classifier) whileStmt(n *ast.While) ast.ReturnAnnot {
	a := c.block(n.Body)
	n.Body.ReturnAnnot = a
	if a == ast.ALWAYS {
		return ast.SOMETIMES
	}
	return a
}
