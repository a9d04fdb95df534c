package typecheck

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// expr type-checks e, writes the result onto e via its promoted SetType
// method, and returns the same type for the caller's own rule.
func (c *checker) expr(e ast.Expr) types.Type {
	var t types.Type

	switch n := e.(type) {
	case *ast.IntLit:
		t = types.NewBuiltin(types.INT)
	case *ast.NumLit:
		t = types.NewBuiltin(types.NUM)
	case *ast.StrLit:
		t = types.NewBuiltin(types.STR)
	case *ast.BoolLit:
		t = types.NewBuiltin(types.BOOL)
	case *ast.NilLit:
		t = types.NewBuiltin(types.NIL)
	case *ast.Ident:
		t = c.typeOf(n.Ref)
	case *ast.Unary:
		t = c.unary(n)
	case *ast.Binary:
		t = c.binary(n)
	case *ast.Call:
		t = c.call(n)
	case *ast.TupleExpr:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.expr(el)
		}
		t = types.NewTuple(elems)
	case *ast.Lambda:
		t = c.lambda(n)
	case *ast.CaseExpr:
		t = c.caseExpr(n)
	case *ast.Construct:
		t = c.construct(n)
	case *ast.Access:
		t = c.access(n)
	default:
		t = types.Unresolved
	}

	if s, ok := e.(settableType); ok {
		s.SetType(t)
	}
	return t
}

// settableType is satisfied by every Expr node (all embed typed by value
// and are always handled through a pointer), mirroring resolve's
// settableType trick for TypeExpr nodes.
type settableType interface {
	SetType(types.Type)
}

func (c *checker) unary(n *ast.Unary) types.Type {
	operand := c.expr(n.Operand)

	switch n.Op {
	case types.OpNot:
		if !types.Equal(operand, types.NewBuiltin(types.BOOL)) {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "! requires bool, got %s", operand)
			return types.Unresolved
		}
		return types.NewBuiltin(types.BOOL)
	case types.OpNeg:
		b, ok := operand.AsBuiltin()
		if !ok {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "- requires int or num, got %s", operand)
			return types.Unresolved
		}
		if _, ret, ok := types.UnarySignature(types.OpNeg, b); ok {
			return ret
		}
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "- requires int or num, got %s", operand)
		return types.Unresolved
	}
	return types.Unresolved
}

func (c *checker) binary(n *ast.Binary) types.Type {
	left := c.expr(n.Left)
	right := c.expr(n.Right)

	switch n.Op {
	case types.OpAnd, types.OpOr:
		boolT := types.NewBuiltin(types.BOOL)
		if !types.Equal(left, boolT) || !types.Equal(right, boolT) {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s requires bool operands", n.Op)
			return types.Unresolved
		}
		return boolT

	case types.OpEqual, types.OpNotEqual:
		if !left.Valid() || !right.Valid() {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s requires valid operand types", n.Op)
		}
		return types.NewBuiltin(types.BOOL)
	}

	if !types.Equal(left, right) {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "operands of %s must have the same type, got %s and %s", n.Op, left, right)
		return types.Unresolved
	}

	b, ok := left.AsBuiltin()
	if !ok {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s is not valid for %s", n.Op, left)
		return types.Unresolved
	}

	if _, ret, ok := types.BinarySignature(n.Op, b); ok {
		return ret
	}

	c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s is not valid for %s", n.Op, left)
	return types.Unresolved
}

func (c *checker) call(n *ast.Call) types.Type {
	calleeType := c.expr(n.Callee)
	params, ret, ok := calleeType.AsFunction()
	if !ok {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s is not callable", calleeType)
		for _, a := range n.Args {
			c.expr(a)
		}
		return types.Unresolved
	}

	if len(n.Args) != len(params) {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()},
			"expected %d argument(s), got %d", len(params), len(n.Args))
	}

	for i, a := range n.Args {
		at := c.expr(a)
		if i >= len(params) {
			continue
		}
		if !types.Contains(params[i], at) {
			c.errs.Addf(errors.Semantic, []source.View{a.Region()},
				"argument %d: cannot use %s as %s", i+1, at, params[i])
		}
	}

	return ret
}

func (c *checker) lambda(n *ast.Lambda) types.Type {
	paramTypes := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		pt := p.Type.Resolved()
		c.bindType(p.Binding, pt)
		paramTypes[i] = pt
	}

	bodyType := c.expr(n.Body)

	ret := bodyType
	if n.ReturnType != nil {
		want := n.ReturnType.Resolved()
		if !types.Contains(want, bodyType) {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "lambda body is %s, expected %s", bodyType, want)
		}
		ret = want
	}

	ft := types.NewFunction(paramTypes, ret)
	if n.Binding != nil {
		c.bindType(n.Binding, ft)
	}
	return ft
}

func (c *checker) caseExpr(n *ast.CaseExpr) types.Type {
	c.expr(n.Target)

	result := types.Unresolved
	first := true
	for _, arm := range n.Arms {
		at := c.expr(arm.Value)
		if first {
			result = at
			first = false
		} else {
			result = types.Union(result, at)
		}
	}
	if n.Fallback != nil {
		ft := c.expr(n.Fallback)
		if first {
			result = ft
		} else {
			result = types.Union(result, ft)
		}
	}
	return result.Contract()
}

func (c *checker) construct(n *ast.Construct) types.Type {
	structID, ok := n.TypeName.Resolved().AsStruct()
	if !ok {
		for i := range n.Fields {
			c.expr(n.Fields[i].Value)
		}
		return types.Unresolved
	}

	decl, ok := c.structs[structID]
	if !ok {
		for i := range n.Fields {
			c.expr(n.Fields[i].Value)
		}
		return n.TypeName.Resolved()
	}

	provided := map[string]bool{}
	for i := range n.Fields {
		f := &n.Fields[i]
		vt := c.expr(f.Value)
		provided[f.Label] = true

		field, ok := findField(decl, f.Label)
		if !ok {
			c.errs.Addf(errors.Semantic, []source.View{f.Region}, "%s has no field %q", decl.Binding.Name, f.Label)
			continue
		}
		want := field.Type.Resolved()
		if !types.Contains(want, vt) {
			c.errs.Addf(errors.Semantic, []source.View{f.Region}, "field %q: cannot use %s as %s", f.Label, vt, want)
		}
	}

	for _, f := range decl.Fields {
		if !provided[f.Binding.Name] {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "missing field %q", f.Binding.Name)
		}
	}

	return n.TypeName.Resolved()
}

func (c *checker) access(n *ast.Access) types.Type {
	targetType := c.expr(n.Target)
	structID, ok := targetType.AsStruct()
	if !ok {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s is not a struct", targetType)
		return types.Unresolved
	}

	decl, ok := c.structs[structID]
	if !ok {
		return types.Unresolved
	}

	if field, ok := findField(decl, n.Field); ok {
		return field.Type.Resolved()
	}

	if method, ok := findMethod(decl, n.Field); ok {
		n.Method = method
		return signatureOf(method)
	}

	c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "%s has no field %q", decl.Binding.Name, n.Field)
	return types.Unresolved
}
