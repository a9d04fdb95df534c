package resolve

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

func builtinType(name string) types.Type {
	switch name {
	case "int":
		return types.NewBuiltin(types.INT)
	case "bool":
		return types.NewBuiltin(types.BOOL)
	case "num":
		return types.NewBuiltin(types.NUM)
	case "str":
		return types.NewBuiltin(types.STR)
	case "void":
		return types.NewBuiltin(types.VOID)
	case "nil":
		return types.NewBuiltin(types.NIL)
	}
	return types.Unresolved
}

func (r *Resolver) resolveTypeExpr(te ast.TypeExpr) {
	switch n := te.(type) {
	case *ast.TypeAtom:
		n.SetResolved(builtinType(n.Name))
	case *ast.TypeIdent:
		decl, ok := r.structsByName[n.Name]
		if !ok {
			r.errs.Addf(errors.Resolution, regionOf(n), "%q does not name a struct", n.Name)
			n.SetResolved(types.Unresolved)
			return
		}
		n.Ref = decl.Binding.ID
		n.SetResolved(types.NewStruct(decl.Binding.ID, decl.Binding.Name))
	case *ast.TypeFunction:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			r.resolveTypeExpr(p)
			params[i] = p.Resolved()
		}
		ret := types.NewBuiltin(types.VOID)
		if n.Return != nil {
			r.resolveTypeExpr(n.Return)
			ret = n.Return.Resolved()
		}
		n.SetResolved(types.NewFunction(params, ret))
	case *ast.TypeOptional:
		r.resolveTypeExpr(n.Inner)
		n.SetResolved(types.Optional(n.Inner.Resolved()))
	case *ast.TypeUnion:
		r.resolveTypeExpr(n.Left)
		r.resolveTypeExpr(n.Right)
		n.SetResolved(types.Union(n.Left.Resolved(), n.Right.Resolved()))
	}
}

func regionOf(te ast.TypeExpr) []source.View {
	return []source.View{te.Region()}
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit, *ast.NumLit, *ast.StrLit, *ast.BoolLit, *ast.NilLit:
		// no children, nothing to resolve
	case *ast.Ident:
		r.resolveIdent(n)
	case *ast.Unary:
		r.resolveExpr(n.Operand)
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			r.resolveExpr(el)
		}
	case *ast.Lambda:
		r.resolveLambda(n)
	case *ast.CaseExpr:
		r.resolveExpr(n.Target)
		for _, arm := range n.Arms {
			r.resolveTypeExpr(arm.Type)
			r.resolveExpr(arm.Value)
		}
		if n.Fallback != nil {
			r.resolveExpr(n.Fallback)
		}
	case *ast.Construct:
		r.resolveTypeExpr(n.TypeName)
		if ti, ok := n.TypeName.(*ast.TypeIdent); ok {
			n.Ref = ti.Ref
		}
		r.checkDuplicateFieldLabels(n.Fields)
		for i := range n.Fields {
			r.resolveExpr(n.Fields[i].Value)
		}
	case *ast.Access:
		r.resolveExpr(n.Target)
	}
}

func (r *Resolver) checkDuplicateFieldLabels(fields []ast.ConstructField) {
	seen := map[string]ast.ConstructField{}
	for _, f := range fields {
		if existing, ok := seen[f.Label]; ok {
			r.errs.Addf(errors.Resolution, []source.View{existing.Region, f.Region},
				"field %q is specified more than once", f.Label)
			continue
		}
		seen[f.Label] = f
	}
}

func (r *Resolver) resolveIdent(n *ast.Ident) {
	b, defDepth, found := r.lookup(n.Name)
	if !found {
		r.errs.Addf(errors.Resolution, []source.View{n.Region()}, "undefined name %q", n.Name)
		n.Ref = ident.Nil
		return
	}
	n.Ref = b.ID

	curDepth := len(r.funcs)
	if defDepth > 0 && defDepth < curDepth {
		for i := defDepth; i < curDepth; i++ {
			fc := r.funcs[i]
			if fc.owner != nil && fc.owner.ID == b.ID {
				// A function's recursive reference to its own name never
				// appears in its own Upvalues; it is handled separately as
				// UPVALUE:0 at index-writing time.
				continue
			}
			addUpvalue(fc, b)
		}
	}

	if defDepth == 0 && curDepth == 0 && r.currentTop != nil && b.ID != r.currentTop.ID {
		appendDependency(r.currentTop, b.ID)
	}
}

func addUpvalue(fc *funcCtx, b *ast.Binding) {
	for _, existing := range *fc.upvalues {
		if existing.ID == b.ID {
			return
		}
	}
	*fc.upvalues = append(*fc.upvalues, b)
}

func appendDependency(top *ast.Binding, depID ident.ID) {
	for _, existing := range top.Dependency {
		if existing == depID {
			return
		}
	}
	top.Dependency = append(top.Dependency, depID)
}

func (r *Resolver) resolveLambda(n *ast.Lambda) {
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
	r.resolveExpr(n.Body)

	r.popScope()
	r.funcs = r.funcs[:len(r.funcs)-1]
}

func (r *Resolver) resolveBlock(b *ast.Block) {
	r.pushScope(len(r.funcs))
	for _, item := range b.Items {
		r.resolveBlockItem(item)
	}
	r.popScope()
}

func (r *Resolver) resolveBlockItem(item ast.Stmt) {
	switch n := item.(type) {
	case *ast.ValueDecl:
		if n.Annot != nil {
			r.resolveTypeExpr(n.Annot)
		}
		r.resolveExpr(n.Init)
		for _, b := range n.Bindings {
			r.declare(b)
		}
	case *ast.FunctionDecl:
		r.declare(n.Binding)
		r.resolveFunctionDecl(n)
	case *ast.StructDecl:
		r.declare(n.Binding)
		if _, ok := r.structsByName[n.Binding.Name]; !ok {
			r.structsByName[n.Binding.Name] = n
		}
		r.resolveStructDecl(n)
	default:
		r.resolveStmt(item)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		r.resolveBlock(n)
	case *ast.If:
		for _, c := range n.Conds {
			r.resolveExpr(c)
		}
		for _, b := range n.Blocks {
			r.resolveBlock(b)
		}
		if n.Else != nil {
			r.resolveBlock(n.Else)
		}
	case *ast.While:
		if n.Cond != nil {
			r.resolveExpr(n.Cond)
		}
		r.resolveBlock(n.Body)
	case *ast.Return:
		if n.Value != nil {
			r.resolveExpr(n.Value)
		}
	case *ast.Print:
		if n.Value != nil {
			r.resolveExpr(n.Value)
		}
	case *ast.ExprStmt:
		r.resolveExpr(n.Value)
	case *ast.Set:
		r.resolveExpr(n.Target)
		r.resolveExpr(n.Value)
	}
}
