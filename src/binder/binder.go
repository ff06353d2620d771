// binder.go implements the two-pass binder of spec.md §4.3: a declaration
// pass that forward-declares every top-level signature (so mutually
// recursive functions resolve), followed by a body pass that type-checks
// each function body in a fresh scope. Grounded on the teacher's
// ir/symtab.go for the general shape of a symbol table keyed by name, but
// substantially generalized: the teacher only tracked two primitive
// DataTypes, while this binder implements the full closed Type algebra,
// convertibility, and the named-argument/struct-literal/enum-tag
// extensions of SPEC_FULL.md §C.

package binder

import (
	"fmt"

	"slc/src/ast"
	"slc/src/bound"
	"slc/src/token"
	"slc/src/types"
	"slc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// binder holds the shared diagnostic sink and the symbol tables built up
// across the declaration pass, consulted during the body pass.
type binder struct {
	diags     *util.Engine
	global    *types.Scope
	records   map[string]*types.Type
	enums     map[string]*types.Type
	functions map[string]*types.FunctionSymbol
	stringTy  *types.Type

	currentFn *types.FunctionSymbol
	loopDepth int
}

// ---------------------
// ----- functions -----
// ---------------------

// Bind runs both passes over root and returns the bound program. Callers
// should check diags.HadErrors() before handing the result to irgen, per
// spec.md §5's stage-gating rule; Bind itself does not abort on error; it
// keeps going so a single run surfaces as many diagnostics as possible.
func Bind(root *ast.Root, diags *util.Engine) *bound.Program {
	b := &binder{
		diags:     diags,
		global:    types.NewGlobalScope(),
		records:   make(map[string]*types.Type),
		enums:     make(map[string]*types.Type),
		functions: make(map[string]*types.FunctionSymbol),
	}
	if sym, ok := b.global.Lookup("String"); ok {
		b.stringTy = sym.(*types.TypeSymbol).Type
	}

	b.declareTypes(root)
	b.declareFunctions(root)

	prog := &bound.Program{Sp: root.Sp}
	added := make(map[*types.Type]bool)
	for _, child := range root.Children {
		switch d := child.(type) {
		case *ast.RecordDecl:
			if t := b.records[d.Name]; t != nil && !added[t] {
				added[t] = true
				prog.Records = append(prog.Records, t)
			}
		case *ast.EnumDecl:
			if t := b.enums[d.Name]; t != nil && !added[t] {
				added[t] = true
				prog.Enums = append(prog.Enums, t)
			}
		}
	}

	boundFns := make(map[string]bool)
	for _, child := range root.Children {
		fd, ok := child.(*ast.FunDecl)
		if !ok || boundFns[fd.Name] {
			continue // A later duplicate was already reported by declareFunctions.
		}
		boundFns[fd.Name] = true
		if fn := b.bindFunction(fd); fn != nil {
			prog.Functions = append(prog.Functions, fn)
		}
	}
	return prog
}

func sortedKeys(m map[string]*types.Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i1 := 1; i1 < len(keys); i1++ {
		for j := i1; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ----------------------------
// ----- declaration pass -----
// ----------------------------

// declareTypes registers every record and enum name before resolving any
// field types, so mutually-referencing records (e.g. via pointer fields)
// resolve regardless of declaration order.
func (b *binder) declareTypes(root *ast.Root) {
	for _, child := range root.Children {
		switch d := child.(type) {
		case *ast.RecordDecl:
			if _, exists := b.records[d.Name]; exists {
				b.diags.Error(util.NameError, d.Sp, "record %s already declared", d.Name)
				continue
			}
			t := types.Record(d.Name, nil)
			b.records[d.Name] = t
			b.global.Declare(d.Name, &types.TypeSymbol{Name: d.Name, Type: t})
		case *ast.EnumDecl:
			if _, exists := b.enums[d.Name]; exists {
				b.diags.Error(util.NameError, d.Sp, "enum %s already declared", d.Name)
				continue
			}
			t := types.Enum(d.Name, append([]string(nil), d.Tags...))
			b.enums[d.Name] = t
			b.global.Declare(d.Name, &types.TypeSymbol{Name: d.Name, Type: t})
		}
	}
	// Second sub-pass: now that every name is registered, resolve field
	// types for records (enums carry no nested types).
	for _, child := range root.Children {
		d, ok := child.(*ast.RecordDecl)
		if !ok {
			continue
		}
		t := b.records[d.Name]
		fields := make([]types.Field, 0, len(d.Fields))
		seen := make(map[string]bool, len(d.Fields))
		for _, f := range d.Fields {
			if seen[f.Name] {
				b.diags.Error(util.NameError, f.Sp, "duplicate field %s in record %s", f.Name, d.Name)
				continue
			}
			seen[f.Name] = true
			fields = append(fields, types.Field{Name: f.Name, Type: b.resolveTypeExpr(b.global, f.Type)})
		}
		t.Fields = fields
	}
}

// declareFunctions forward-declares every function signature in the
// global scope, so calls to functions defined later in the source still
// resolve (spec.md §4.3: mutual recursion support).
func (b *binder) declareFunctions(root *ast.Root) {
	for _, child := range root.Children {
		fd, ok := child.(*ast.FunDecl)
		if !ok {
			continue
		}
		if _, exists := b.functions[fd.Name]; exists {
			b.diags.Error(util.NameError, fd.Sp, "function %s already declared", fd.Name)
			continue
		}
		params := make([]*types.VariableSymbol, 0, len(fd.Params))
		for _, p := range fd.Params {
			params = append(params, &types.VariableSymbol{Name: p.Name, Type: b.resolveTypeExpr(b.global, p.Type), IsParameter: true})
		}
		var ret *types.Type = types.Void
		if fd.ReturnType != nil {
			ret = b.resolveTypeExpr(b.global, fd.ReturnType)
		}
		sym := &types.FunctionSymbol{
			Name: fd.Name, Params: params, ReturnType: ret, Variadic: fd.Variadic,
			Extern: fd.Modifiers&ast.ModExtern != 0, Static: fd.Modifiers&ast.ModStatic != 0, Pub: fd.Modifiers&ast.ModPub != 0,
		}
		b.functions[fd.Name] = sym
		b.global.Declare(fd.Name, sym)

		if sym.Extern && (fd.Body != nil || fd.Lambda != nil) {
			b.diags.Error(util.TypeError, fd.Sp, "extern function %s cannot have a body", fd.Name)
		}
		if !sym.Extern && fd.Body == nil && fd.Lambda == nil {
			b.diags.Error(util.TypeError, fd.Sp, "function %s must have a body", fd.Name)
		}
	}
}

// resolveTypeExpr resolves an ast.TypeExpr to a concrete *types.Type,
// reporting a NameError and returning types.Void on any unresolvable name
// so binding can continue past the error (spec.md §9's recovery policy,
// mirrored from the parser's synthetic-token approach).
func (b *binder) resolveTypeExpr(scope *types.Scope, te ast.TypeExpr) *types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		sym, ok := scope.Lookup(t.Name)
		if !ok {
			b.diags.Error(util.NameError, t.Sp, "undefined type %s", t.Name)
			return types.Void
		}
		ts, ok := sym.(*types.TypeSymbol)
		if !ok {
			b.diags.Error(util.NameError, t.Sp, "%s is not a type", t.Name)
			return types.Void
		}
		return ts.Type
	case *ast.PointerTo:
		return types.Pointer(b.resolveTypeExpr(scope, t.Elem))
	case *ast.ReferenceTo:
		// References are modeled as pointers at the type level; the
		// distinction (if any) is purely syntactic sugar at the source
		// level per spec.md §3.4's closed algebra, which has no separate
		// reference kind.
		return types.Pointer(b.resolveTypeExpr(scope, t.Elem))
	case *ast.ArrayOf:
		size, ok := constantInt(t.Size)
		if !ok {
			b.diags.Error(util.TypeError, t.Sp, "array size must be a constant integer")
			size = 0
		}
		return types.Array(b.resolveTypeExpr(scope, t.Elem), size)
	default:
		b.diags.Error(util.InternalError, te.Span(), "unresolvable type expression %T", te)
		return types.Void
	}
}

// constantInt evaluates e as a compile-time integer constant. Only
// literal integers are supported; arbitrary constant folding over
// arithmetic expressions is out of scope (spec.md §1's non-goals
// implicitly exclude a general constant-folding pass).
func constantInt(e ast.Expr) (int, bool) {
	if lit, ok := e.(*ast.IntLit); ok {
		return int(lit.Value), true
	}
	return 0, false
}

// ----------------------
// ----- body pass -----
// ----------------------

func (b *binder) bindFunction(fd *ast.FunDecl) *bound.Function {
	sym := b.functions[fd.Name]
	if sym == nil {
		return nil // Not registered by declareFunctions.
	}
	if fd.Body == nil && fd.Lambda == nil {
		return &bound.Function{Sym: sym, Sp: fd.Sp}
	}

	b.currentFn = sym
	b.loopDepth = 0
	scope := b.global.Push()
	for _, p := range sym.Params {
		scope.Declare(p.Name, p)
	}

	fn := &bound.Function{Sym: sym, Sp: fd.Sp}
	if fd.Lambda != nil {
		fn.Lambda = b.bindExpr(scope, fd.Lambda)
		b.checkConvertible(fn.Lambda.Type(), sym.ReturnType, fd.Lambda.Span(), "lambda body")
	} else {
		fn.Body = b.bindBlock(scope, fd.Body)
		b.checkFunctionReturns(fn.Body, sym)
	}
	b.currentFn = nil
	return fn
}

// checkFunctionReturns checks the block's trailing result (if any) against
// the function's declared return type; explicit return statements are
// checked individually as they are bound.
func (b *binder) checkFunctionReturns(blk *bound.Block, sym *types.FunctionSymbol) {
	if blk.Result != nil {
		b.checkConvertible(blk.Result.Type(), sym.ReturnType, blk.Result.Span(), fmt.Sprintf("function %s's trailing result", sym.Name))
	}
}

// bindBlock pushes a new lexical scope and binds every statement plus the
// optional trailing result expression (spec.md §4.3: every block
// introduces a new scope).
func (b *binder) bindBlock(parent *types.Scope, blk *ast.Block) *bound.Block {
	scope := parent.Push()
	out := &bound.Block{Sp: blk.Sp}
	for _, s := range blk.Stmts {
		if bs := b.bindStmt(scope, s); bs != nil {
			out.Stmts = append(out.Stmts, bs)
		}
	}
	if blk.Result != nil {
		out.Result = b.bindExpr(scope, blk.Result)
	}
	return out
}

func (b *binder) bindStmt(scope *types.Scope, s ast.Stmt) bound.Stmt {
	switch n := s.(type) {
	case *ast.VarDecl:
		declType := b.resolveTypeExpr(scope, n.Type)
		var init bound.Expr
		if n.Init != nil {
			init = b.bindExpr(scope, n.Init)
			init = b.coerce(init, declType, n.Init.Span(), fmt.Sprintf("initializer for %s", n.Name))
		}
		sym := &types.VariableSymbol{Name: n.Name, Type: declType}
		if !scope.Declare(n.Name, sym) {
			b.diags.Error(util.NameError, n.Sp, "%s already declared in this scope", n.Name)
		}
		return &bound.VarDecl{Sym: sym, Init: init, Sp: n.Sp}

	case *ast.Assign:
		sym := b.lookupVariable(scope, n.Target, n.Sp)
		value := b.bindExpr(scope, n.Value)
		if sym != nil {
			value = b.coerce(value, sym.Type, n.Value.Span(), fmt.Sprintf("assignment to %s", n.Target))
		}
		return &bound.Assign{Sym: sym, Value: value, Sp: n.Sp}

	case *ast.Return:
		var val bound.Expr
		if n.Value != nil {
			val = b.bindExpr(scope, n.Value)
			if b.currentFn != nil {
				val = b.coerce(val, b.currentFn.ReturnType, n.Value.Span(), fmt.Sprintf("return from %s", b.currentFn.Name))
			}
		} else if b.currentFn != nil && b.currentFn.ReturnType.Kind != types.KVoid {
			b.diags.Error(util.TypeError, n.Sp, "missing return value, function %s returns %s", b.currentFn.Name, b.currentFn.ReturnType)
		}
		return &bound.Return{Value: val, Sp: n.Sp}

	case *ast.If:
		cond := b.bindExpr(scope, n.Cond)
		b.checkBool(cond, n.Cond.Span(), "if condition")
		then := b.bindBlock(scope, n.Then)
		var els *bound.Block
		if n.Else != nil {
			els = b.bindBlock(scope, n.Else)
		}
		return &bound.If{Cond: cond, Then: then, Else: els, Sp: n.Sp}

	case *ast.While:
		cond := b.bindExpr(scope, n.Cond)
		b.checkBool(cond, n.Cond.Span(), "while condition")
		b.loopDepth++
		body := b.bindBlock(scope, n.Body)
		b.loopDepth--
		return &bound.While{Cond: cond, Body: body, Sp: n.Sp}

	case *ast.Break:
		if b.loopDepth == 0 {
			b.diags.Error(util.FlowError, n.Sp, "break outside of a loop")
		}
		return &bound.Break{Sp: n.Sp}

	case *ast.Continue:
		if b.loopDepth == 0 {
			b.diags.Error(util.FlowError, n.Sp, "continue outside of a loop")
		}
		return &bound.Continue{Sp: n.Sp}

	case *ast.ExprStmt:
		return &bound.ExprStmt{X: b.bindExpr(scope, n.X), Sp: n.Sp}

	default:
		b.diags.Error(util.InternalError, s.Span(), "unbound statement type %T", s)
		return nil
	}
}

func (b *binder) lookupVariable(scope *types.Scope, name string, sp util.Span) *types.VariableSymbol {
	sym, ok := scope.Lookup(name)
	if !ok {
		b.diags.Error(util.NameError, sp, "undefined name %s", name)
		return nil
	}
	v, ok := sym.(*types.VariableSymbol)
	if !ok {
		b.diags.Error(util.NameError, sp, "%s is not a variable", name)
		return nil
	}
	return v
}

// ------------------------
// ----- expressions -----
// ------------------------

func (b *binder) bindExpr(scope *types.Scope, e ast.Expr) bound.Expr {
	switch n := e.(type) {
	case *ast.IntLit:
		return &bound.IntLit{Value: n.Value, Sp: n.Sp}
	case *ast.FloatLit:
		return &bound.FloatLit{Value: n.Value, Sp: n.Sp}
	case *ast.StringLit:
		return &bound.StringLit{Value: n.Value, Typ: b.stringTy, Sp: n.Sp}
	case *ast.BoolLit:
		return &bound.BoolLit{Value: n.Value, Sp: n.Sp}
	case *ast.IdRef:
		return b.bindIdRef(scope, n)
	case *ast.EnumTagRef:
		return b.bindEnumTagRef(n)
	case *ast.BinOp:
		return b.bindBinOp(scope, n)
	case *ast.UnaryOp:
		return b.bindUnaryOp(scope, n)
	case *ast.Call:
		return b.bindCall(scope, n)
	case *ast.ArrayLit:
		return b.bindArrayLit(scope, n)
	case *ast.FieldAccess:
		return b.bindFieldAccess(scope, n)
	case *ast.StructLit:
		return b.bindStructLit(scope, n)
	case *ast.IfExpr:
		return b.bindIfExpr(scope, n)
	default:
		b.diags.Error(util.InternalError, e.Span(), "unbound expression type %T", e)
		return &bound.IntLit{Value: 0, Sp: e.Span()}
	}
}

func (b *binder) bindIdRef(scope *types.Scope, n *ast.IdRef) bound.Expr {
	sym, ok := scope.Lookup(n.Name)
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "undefined name %s", n.Name)
		return &bound.IntLit{Value: 0, Sp: n.Sp}
	}
	v, ok := sym.(*types.VariableSymbol)
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "%s is not a variable", n.Name)
		return &bound.IntLit{Value: 0, Sp: n.Sp}
	}
	return &bound.VarRef{Sym: v, Sp: n.Sp}
}

func (b *binder) bindEnumTagRef(n *ast.EnumTagRef) bound.Expr {
	enumTy, ok := b.enums[n.EnumName]
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "undefined enum %s", n.EnumName)
		return &bound.IntLit{Value: 0, Sp: n.Sp}
	}
	idx, ok := enumTy.TagIndex(n.Tag)
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "enum %s has no tag %s", n.EnumName, n.Tag)
		return &bound.IntLit{Value: 0, Sp: n.Sp}
	}
	return &bound.EnumTag{Enum: enumTy, Tag: n.Tag, Index: idx, Sp: n.Sp}
}

// isComparisonOp classifies a token.Kind operator for
// spec.md §4.3's binary-operator typing rules. The grammar admits no
// boolean connectives (&&, ||) at the binary-operator precedence levels,
// so no third category is needed here.
func isComparisonOp(k int) bool {
	switch token.Kind(k) {
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func (b *binder) bindBinOp(scope *types.Scope, n *ast.BinOp) bound.Expr {
	left := b.bindExpr(scope, n.Left)
	right := b.bindExpr(scope, n.Right)

	if isComparisonOp(n.Op) {
		if left.Type().IsNumeric() && right.Type().IsNumeric() {
			prom := types.Promote(left.Type(), right.Type())
			left = b.coerce(left, prom, n.Left.Span(), "comparison operand")
			right = b.coerce(right, prom, n.Right.Span(), "comparison operand")
		} else if !types.Equal(left.Type(), right.Type()) {
			b.diags.Error(util.TypeError, n.Sp, "cannot compare %s and %s", left.Type(), right.Type())
		}
		return &bound.BinOp{Op: n.Op, Left: left, Right: right, Typ: types.Bool, Sp: n.Sp}
	}

	// Arithmetic: + - * / % ^
	if !left.Type().IsNumeric() || !right.Type().IsNumeric() {
		b.diags.Error(util.TypeError, n.Sp, "arithmetic operator %s requires numeric operands, got %s and %s", token.Kind(n.Op), left.Type(), right.Type())
		return &bound.BinOp{Op: n.Op, Left: left, Right: right, Typ: types.Int, Sp: n.Sp}
	}
	prom := types.Promote(left.Type(), right.Type())
	left = b.coerce(left, prom, n.Left.Span(), "arithmetic operand")
	right = b.coerce(right, prom, n.Right.Span(), "arithmetic operand")
	return &bound.BinOp{Op: n.Op, Left: left, Right: right, Typ: prom, Sp: n.Sp}
}

func (b *binder) bindUnaryOp(scope *types.Scope, n *ast.UnaryOp) bound.Expr {
	x := b.bindExpr(scope, n.X)
	switch token.Kind(n.Op) {
	case token.MINUS:
		if !x.Type().IsNumeric() {
			b.diags.Error(util.TypeError, n.Sp, "unary - requires a numeric operand, got %s", x.Type())
		}
		return &bound.UnaryOp{Op: n.Op, X: x, Typ: x.Type(), Sp: n.Sp}
	case token.NOT:
		b.checkBool(x, n.X.Span(), "unary !")
		return &bound.UnaryOp{Op: n.Op, X: x, Typ: types.Bool, Sp: n.Sp}
	case token.STAR:
		if x.Type().Kind != types.KPointer {
			b.diags.Error(util.TypeError, n.Sp, "cannot dereference non-pointer type %s", x.Type())
			return &bound.UnaryOp{Op: n.Op, X: x, Typ: types.Void, Sp: n.Sp}
		}
		return &bound.UnaryOp{Op: n.Op, X: x, Typ: x.Type().Elem, Sp: n.Sp}
	case token.AMP:
		if !isAddressable(x) {
			b.diags.Error(util.TypeError, n.Sp, "cannot take the address of a non-addressable expression")
		}
		return &bound.UnaryOp{Op: n.Op, X: x, Typ: types.Pointer(x.Type()), Sp: n.Sp}
	default:
		b.diags.Error(util.InternalError, n.Sp, "unrecognized unary operator")
		return &bound.UnaryOp{Op: n.Op, X: x, Typ: x.Type(), Sp: n.Sp}
	}
}

func (b *binder) bindCall(scope *types.Scope, n *ast.Call) bound.Expr {
	sym, ok := b.functions[n.Callee]
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "undefined function %s", n.Callee)
		return &bound.IntLit{Value: 0, Sp: n.Sp}
	}

	slots := make([]bound.Expr, len(sym.Params))
	filled := make([]bool, len(sym.Params))
	var extra []bound.Expr // Variadic trailing arguments beyond the fixed parameter list.
	nextPositional := 0

	for _, a := range n.Args {
		val := b.bindExpr(scope, a.Value)
		if a.Name == "" {
			if nextPositional < len(sym.Params) {
				slots[nextPositional] = val
				filled[nextPositional] = true
				nextPositional++
			} else if sym.Variadic {
				extra = append(extra, val)
			} else {
				b.diags.Error(util.TypeError, a.Value.Span(), "too many arguments to %s", n.Callee)
			}
			continue
		}
		idx := -1
		for i1, p := range sym.Params {
			if p.Name == a.Name {
				idx = i1
				break
			}
		}
		if idx == -1 {
			b.diags.Error(util.NameError, a.Value.Span(), "%s has no parameter named %s", n.Callee, a.Name)
			continue
		}
		if filled[idx] {
			b.diags.Error(util.TypeError, a.Value.Span(), "parameter %s already assigned", a.Name)
			continue
		}
		slots[idx] = val
		filled[idx] = true
	}

	args := make([]bound.Arg, 0, len(slots)+len(extra))
	for i1, p := range sym.Params {
		if !filled[i1] {
			b.diags.Error(util.TypeError, n.Sp, "missing argument %s in call to %s", p.Name, n.Callee)
			continue
		}
		slots[i1] = b.coerce(slots[i1], p.Type, n.Sp, fmt.Sprintf("argument %s", p.Name))
		args = append(args, bound.Arg{Value: slots[i1]})
	}
	for _, e := range extra {
		args = append(args, bound.Arg{Value: e})
	}

	return &bound.Call{Sym: sym, Args: args, Sp: n.Sp}
}

func (b *binder) bindArrayLit(scope *types.Scope, n *ast.ArrayLit) bound.Expr {
	if len(n.Elems) == 0 {
		b.diags.Error(util.TypeError, n.Sp, "cannot infer the element type of an empty array literal")
		return &bound.ArrayLit{Typ: types.Array(types.Void, 0), Sp: n.Sp}
	}
	elems := make([]bound.Expr, len(n.Elems))
	elems[0] = b.bindExpr(scope, n.Elems[0])
	elemTy := elems[0].Type()
	for i1 := 1; i1 < len(n.Elems); i1++ {
		v := b.bindExpr(scope, n.Elems[i1])
		elems[i1] = b.coerce(v, elemTy, n.Elems[i1].Span(), "array element")
	}
	return &bound.ArrayLit{Elems: elems, Typ: types.Array(elemTy, len(elems)), Sp: n.Sp}
}

func (b *binder) bindFieldAccess(scope *types.Scope, n *ast.FieldAccess) bound.Expr {
	x := b.bindExpr(scope, n.X)
	recTy := x.Type()
	if recTy.Kind == types.KPointer {
		recTy = recTy.Elem
	}
	if recTy.Kind != types.KRecord {
		b.diags.Error(util.TypeError, n.Sp, "%s is not a record", recTy)
		return &bound.FieldAccess{X: x, FieldName: n.Field, FieldType: types.Void, Sp: n.Sp}
	}
	f, ok := recTy.Field(n.Field)
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "record %s has no field %s", recTy.Name, n.Field)
		return &bound.FieldAccess{X: x, FieldName: n.Field, FieldType: types.Void, Sp: n.Sp}
	}
	return &bound.FieldAccess{X: x, FieldName: n.Field, FieldType: f.Type, Sp: n.Sp}
}

func (b *binder) bindStructLit(scope *types.Scope, n *ast.StructLit) bound.Expr {
	recTy, ok := b.records[n.TypeName]
	if !ok {
		b.diags.Error(util.NameError, n.Sp, "undefined record %s", n.TypeName)
		return &bound.StructLit{Typ: types.Void, Sp: n.Sp}
	}

	provided := make(map[string]bound.Expr, len(n.Fields))
	for _, f := range n.Fields {
		if _, dup := provided[f.Name]; dup {
			b.diags.Error(util.TypeError, n.Sp, "duplicate field %s in struct literal for %s", f.Name, n.TypeName)
			continue
		}
		if _, ok := recTy.Field(f.Name); !ok {
			b.diags.Error(util.NameError, n.Sp, "record %s has no field %s", n.TypeName, f.Name)
			continue
		}
		provided[f.Name] = b.bindExpr(scope, f.Value)
	}

	// Struct literals require every declared field to be initialized
	// exactly once (SPEC_FULL.md §C.1).
	fields := make([]bound.StructLitField, 0, len(recTy.Fields))
	for _, decl := range recTy.Fields {
		val, ok := provided[decl.Name]
		if !ok {
			b.diags.Error(util.TypeError, n.Sp, "missing field %s in struct literal for %s", decl.Name, n.TypeName)
			continue
		}
		val = b.coerce(val, decl.Type, n.Sp, fmt.Sprintf("field %s", decl.Name))
		fields = append(fields, bound.StructLitField{Name: decl.Name, Value: val})
	}
	return &bound.StructLit{Typ: recTy, Fields: fields, Sp: n.Sp}
}

func (b *binder) bindIfExpr(scope *types.Scope, n *ast.IfExpr) bound.Expr {
	cond := b.bindExpr(scope, n.Cond)
	b.checkBool(cond, n.Cond.Span(), "if condition")
	then := b.bindBlock(scope, n.Then)

	thenTy := types.Void
	if then.Result != nil {
		thenTy = then.Result.Type()
	}

	if n.Else == nil {
		return &bound.IfExpr{Cond: cond, Then: then, Typ: types.Void, Sp: n.Sp}
	}
	els := b.bindBlock(scope, n.Else)
	elseTy := types.Void
	if els.Result != nil {
		elseTy = els.Result.Type()
	}
	resultTy := thenTy
	if thenTy.IsNumeric() && elseTy.IsNumeric() {
		resultTy = types.Promote(thenTy, elseTy)
		if then.Result != nil {
			then.Result = b.coerce(then.Result, resultTy, n.Then.Sp, "if-expression branch")
		}
		if els.Result != nil {
			els.Result = b.coerce(els.Result, resultTy, n.Else.Sp, "if-expression branch")
		}
	} else if !types.Equal(thenTy, elseTy) {
		b.diags.Error(util.TypeError, n.Sp, "if-expression branches have mismatched types %s and %s", thenTy, elseTy)
	}
	return &bound.IfExpr{Cond: cond, Then: then, Else: els, Typ: resultTy, Sp: n.Sp}
}

// ------------------------------
// ----- shared type checks -----
// ------------------------------

// coerce checks that value's type converts to target (spec.md §4.3's
// convertibility rule) and wraps it in a bound.Convert node when the
// conversion is a non-identity Int->Float promotion. On a type mismatch it
// reports a TypeError and returns value unchanged so binding can continue.
func (b *binder) coerce(value bound.Expr, target *types.Type, sp util.Span, context string) bound.Expr {
	if types.Equal(value.Type(), target) {
		return value
	}
	if !types.ConvertibleTo(value.Type(), target) {
		b.diags.Error(util.TypeError, sp, "%s: cannot convert %s to %s", context, value.Type(), target)
		return value
	}
	return &bound.Convert{X: value, Typ: target, Sp: sp}
}

func (b *binder) checkConvertible(from, to *types.Type, sp util.Span, context string) {
	if !types.ConvertibleTo(from, to) {
		b.diags.Error(util.TypeError, sp, "%s: cannot convert %s to %s", context, from, to)
	}
}

func (b *binder) checkBool(e bound.Expr, sp util.Span, context string) {
	if e.Type().Kind != types.KBool {
		b.diags.Error(util.TypeError, sp, "%s must be Bool, got %s", context, e.Type())
	}
}

// isAddressable reports whether e denotes a storage location, per spec.md
// §4.3: only a variable, a field of an addressable record, or a
// dereferenced pointer can have its address taken.
func isAddressable(e bound.Expr) bool {
	switch v := e.(type) {
	case *bound.VarRef:
		return true
	case *bound.FieldAccess:
		return isAddressable(v.X)
	case *bound.UnaryOp:
		return token.Kind(v.Op) == token.STAR
	default:
		return false
	}
}
