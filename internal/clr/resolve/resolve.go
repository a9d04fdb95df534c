// Package resolve implements the three coordinated traversals between
// parsing and type checking: duplicate-name checking, name resolution
// (attaching a binding identity to every identifier and struct-type
// reference), and - alongside the same walk - upvalue capture and
// top-level sequencing. Grounded on the scope-stack idiom tunascript's own
// evaluator uses for its variable environment, generalized to a
// multi-phase static resolver; the sequencer's cycle detection is its own
// tri-color DFS (see sequence.go), not a reuse of any shared collection
// helper.
package resolve

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/builtin"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// settableType is satisfied by every TypeExpr node (all embed resolvedType
// by value and are always handled through a pointer), letting the resolver
// write a looked-up Type without a type switch over every node kind.
type settableType interface {
	SetResolved(types.Type)
}

// scope is one lexical scope: a name -> binding map plus the function-
// nesting depth it was opened at (0 = global).
type scope struct {
	names    map[string]*ast.Binding
	funcDepth int
}

// funcCtx tracks one function body's (or lambda's, or method's) capture
// set while its body is being walked.
type funcCtx struct {
	owner    *ast.Binding
	upvalues *[]*ast.Binding
}

// Resolver carries all mutable state threaded through the three
// traversals. There is no package-level mutable state, per Design Note
// "Global mutable state".
type Resolver struct {
	errs *errors.Sink

	scopes []*scope
	funcs  []*funcCtx

	structsByName map[string]*ast.StructDecl
	globalByID    map[ident.ID]*ast.Binding

	// currentTop is the top-level Binding whose initializer is presently
	// being walked, used to record Dependency edges; nil while walking
	// function bodies or while outside any top-level initializer.
	currentTop *ast.Binding
}

// Resolve runs duplicate-checking, name resolution, upvalue capture, and
// top-level sequencing over prog, reporting problems to sink. It mutates
// prog and its nodes in place.
func Resolve(prog *ast.Program, sink *errors.Sink) {
	r := &Resolver{
		errs:          sink,
		structsByName: map[string]*ast.StructDecl{},
		globalByID:    map[ident.ID]*ast.Binding{},
	}

	r.pushScope(0)
	r.registerBuiltins(prog)
	r.registerTopLevel(prog)

	for _, d := range prog.Decls {
		r.resolveTopItem(d)
	}

	prog.Sequence = sequence(prog, sink)
}

func (r *Resolver) pushScope(funcDepth int) *scope {
	s := &scope{names: map[string]*ast.Binding{}, funcDepth: funcDepth}
	r.scopes = append(r.scopes, s)
	return s
}

func (r *Resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) curScope() *scope {
	return r.scopes[len(r.scopes)-1]
}

// declare adds b to the innermost scope, reporting a diagnostic if the
// name is already declared there (shadowing an outer scope is fine).
func (r *Resolver) declare(b *ast.Binding) {
	s := r.curScope()
	if existing, ok := s.names[b.Name]; ok {
		r.errs.Addf(errors.Resolution, []source.View{existing.Region, b.Region},
			"%q is already declared in this scope", b.Name)
		return
	}
	s.names[b.Name] = b
}

// lookup searches the scope stack from innermost to outermost for name,
// returning the binding and the function-nesting depth its scope was
// opened at.
func (r *Resolver) lookup(name string) (*ast.Binding, int, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].names[name]; ok {
			return b, r.scopes[i].funcDepth, true
		}
	}
	return nil, 0, false
}

// registerBuiltins declares a Binding for every predeclared global function
// (internal/clr/builtin) in the global scope, with its TypeAnnot already
// set - these never get an initializer to type-check, so there is no
// resolveExpr pass over them the way a user-declared value gets.
func (r *Resolver) registerBuiltins(prog *ast.Program) {
	prog.Builtins = map[string]*ast.Binding{}
	for _, b := range builtin.Table {
		bind := &ast.Binding{ID: ident.New(), Name: b.Name, TypeAnnot: b.Type()}
		r.declare(bind)
		r.globalByID[bind.ID] = bind
		prog.Builtins[b.Name] = bind
	}
}

// registerTopLevel declares every top-level binding (values, functions,
// structs) in the global scope before any bodies are walked, so that
// forward references and recursion resolve regardless of declaration
// order, and indexes struct declarations by name for type resolution.
func (r *Resolver) registerTopLevel(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.ValueDecl:
			for _, b := range n.Bindings {
				r.declare(b)
				r.globalByID[b.ID] = b
			}
		case *ast.FunctionDecl:
			r.declare(n.Binding)
			r.globalByID[n.Binding.ID] = n.Binding
		case *ast.StructDecl:
			r.declare(n.Binding)
			r.globalByID[n.Binding.ID] = n.Binding
			if existing, ok := r.structsByName[n.Binding.Name]; ok {
				r.errs.Addf(errors.Resolution, []source.View{existing.Region(), n.Region()},
					"struct %q is already declared", n.Binding.Name)
				continue
			}
			r.structsByName[n.Binding.Name] = n
		}
	}
}

// resolveTopItem resolves one top-level item. The three Decl kinds get
// their own handling here (rather than delegating to resolveBlockItem) so
// that a ValueDecl's initializer is walked with currentTop set, recording
// Dependency edges for the sequencer; every other statement kind carries
// no binding of its own and is walked exactly like a block item.
func (r *Resolver) resolveTopItem(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.ValueDecl:
		r.currentTop = n.Bindings[0]
		if n.Annot != nil {
			r.resolveTypeExpr(n.Annot)
		}
		r.resolveExpr(n.Init)
		r.currentTop = nil
	case *ast.FunctionDecl:
		r.resolveFunctionDecl(n)
	case *ast.StructDecl:
		r.resolveStructDecl(n)
	default:
		r.resolveStmt(d)
	}
}

func (r *Resolver) resolveFunctionDecl(n *ast.FunctionDecl) {
	r.checkDuplicateParams(paramBindings(n.Params))

	fc := &funcCtx{owner: n.Binding, upvalues: &n.Upvalues}
	r.funcs = append(r.funcs, fc)
	r.pushScope(len(r.funcs))

	for _, p := range n.Params {
		r.resolveTypeExpr(p.Type)
		r.declare(p.Binding)
	}
	if n.ReturnType != nil {
		r.resolveTypeExpr(n.ReturnType)
	}
	r.resolveBlock(n.Body)

	r.popScope()
	r.funcs = r.funcs[:len(r.funcs)-1]
}

func (r *Resolver) resolveStructDecl(n *ast.StructDecl) {
	r.checkDuplicateNamesAcross(paramBindings(n.Fields))

	r.pushScope(len(r.funcs))
	for _, f := range n.Fields {
		r.resolveTypeExpr(f.Type)
		r.declare(f.Binding)
	}

	for _, m := range n.Methods {
		r.resolveMethod(m, n)
	}

	r.popScope()
}

// resolveMethod declares a fresh `this` binding in the method's own top
// scope - not the enclosing struct scope - so a reference to `this` inside
// the method body resolves at the method's own function depth (an ordinary
// direct slot access) rather than forcing an upvalue capture; a nested
// lambda inside the method still captures it as an upvalue exactly like any
// other local, through the same generic resolveIdent path.
func (r *Resolver) resolveMethod(m *ast.FunctionDecl, owner *ast.StructDecl) {
	r.checkDuplicateParams(paramBindings(m.Params))

	fc := &funcCtx{owner: m.Binding, upvalues: &m.Upvalues}
	r.funcs = append(r.funcs, fc)
	r.pushScope(len(r.funcs))

	m.Receiver = &ast.Binding{ID: ident.New(), Name: "this", Region: m.Region()}
	r.declare(m.Receiver)

	for _, p := range m.Params {
		r.resolveTypeExpr(p.Type)
		r.declare(p.Binding)
	}
	if m.ReturnType != nil {
		r.resolveTypeExpr(m.ReturnType)
	}
	r.resolveBlock(m.Body)

	r.popScope()
	r.funcs = r.funcs[:len(r.funcs)-1]
}

func (r *Resolver) checkDuplicateParams(bindings []*ast.Binding) {
	r.checkDuplicateNamesAcross(bindings)
}

func (r *Resolver) checkDuplicateNamesAcross(bindings []*ast.Binding) {
	seen := map[string]*ast.Binding{}
	for _, b := range bindings {
		if existing, ok := seen[b.Name]; ok {
			r.errs.Addf(errors.Resolution, []source.View{existing.Region, b.Region},
				"%q is already declared here", b.Name)
			continue
		}
		seen[b.Name] = b
	}
}

func paramBindings(params []*ast.Param) []*ast.Binding {
	out := make([]*ast.Binding, len(params))
	for i, p := range params {
		out[i] = p.Binding
	}
	return out
}
