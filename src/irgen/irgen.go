// irgen.go implements the lowering of spec.md §4.4: every bound.Function
// becomes an ir.Function, every local becomes an entry-block Alloca, and
// every bound expression/statement lowers to a straight-line sequence of
// ir instructions threaded through the "current basic block" pointer.
// Grounded on the teacher's ir/llvm/transform.go for the general recursive
// lowering-with-a-current-block pattern, generalized from that file's
// direct-to-LLVM emission into emission against this package's own
// intermediate ir.Module (spec.md's IR stage is a distinct stage from the
// LLVM backend, unlike the teacher's single-pass design).

package irgen

import (
	"slc/src/bound"
	"slc/src/ir"
	"slc/src/token"
	"slc/src/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// generator holds the per-function lowering state: the slot map from a
// variable symbol to its Alloca'd stack address, and the loop-exit/loop-
// continue target blocks for the innermost enclosing while (for break and
// continue).
type generator struct {
	fn       *ir.Function
	slots    map[*types.VariableSymbol]ir.Value
	slotSeq  int
	loopExit []*ir.BasicBlock // break target stack.
	loopCont []*ir.BasicBlock // continue target stack.
	fnByName map[string]*ir.Function
}

// ---------------------
// ----- functions -----
// ---------------------

// Generate lowers a fully bound program to an ir.Module. The caller must
// ensure diags.HadErrors() was false after binding; irgen assumes a
// well-typed tree and does not itself perform error recovery.
func Generate(prog *bound.Program) *ir.Module {
	m := &ir.Module{Records: prog.Records, Enums: prog.Enums}

	irFns := make(map[string]*ir.Function, len(prog.Functions))
	for _, fn := range prog.Functions {
		paramTypes := fn.Sym.ParamTypes()
		names := make([]string, len(fn.Sym.Params))
		for i1, p := range fn.Sym.Params {
			names[i1] = p.Name
		}
		irFn := ir.NewFunction(fn.Sym.Name, paramTypes, names, fn.Sym.ReturnType, fn.Sym.Variadic, fn.Sym.Extern)
		irFns[fn.Sym.Name] = irFn
		m.Functions = append(m.Functions, irFn)
	}

	for i1, fn := range prog.Functions {
		if fn.Sym.Extern {
			continue
		}
		g := &generator{fn: irFns[fn.Sym.Name], slots: make(map[*types.VariableSymbol]ir.Value), fnByName: irFns}
		g.lowerFunction(fn)
		_ = i1
	}
	return m
}

// lowerFunction emits the entry block's parameter Allocas, then lowers the
// body (or the lambda expression, implicitly returned).
func (g *generator) lowerFunction(fn *bound.Function) {
	entry := g.fn.Blocks[0]
	for i1, p := range fn.Sym.Params {
		slot := ir.Alloca(entry, p.Type, g.nextSlot())
		ir.Store(entry, slot, ir.ParamValue(i1, p.Type))
		g.slots[p] = slot
	}

	cur := entry
	if fn.Lambda != nil {
		val, block := g.lowerExpr(cur, fn.Lambda)
		if !block.Terminated() {
			ir.Ret(block, &val)
		}
		return
	}

	cur = g.lowerBlockInto(cur, fn.Body)
	if !cur.Terminated() {
		if fn.Sym.ReturnType.Kind == types.KVoid {
			ir.Ret(cur, nil)
		} else if fn.Body.Result != nil {
			val, block := g.lowerExpr(cur, fn.Body.Result)
			if !block.Terminated() {
				ir.Ret(block, &val)
			}
		} else {
			// No explicit return and no trailing result on a non-void
			// function. The binder does not reject a non-void function
			// whose path falls off the end, so this point can be reached;
			// a Ret(0) is emitted so the block still has a terminator.
			zero := ir.ConstInt(0, fn.Sym.ReturnType)
			ir.Ret(cur, &zero)
		}
	}
}

func (g *generator) nextSlot() int {
	g.slotSeq++
	return g.slotSeq
}

// lowerBlockInto lowers every statement of blk in order, threading the
// current basic block forward (a statement like If or While may split the
// block into several). It returns the block lowering should continue from.
func (g *generator) lowerBlockInto(cur *ir.BasicBlock, blk *bound.Block) *ir.BasicBlock {
	for _, s := range blk.Stmts {
		if cur.Terminated() {
			break
		}
		cur = g.lowerStmt(cur, s)
	}
	return cur
}

func (g *generator) lowerStmt(cur *ir.BasicBlock, s bound.Stmt) *ir.BasicBlock {
	switch n := s.(type) {
	case *bound.VarDecl:
		slot := ir.Alloca(g.fn.Blocks[0], n.Sym.Type, g.nextSlot())
		g.slots[n.Sym] = slot
		if n.Init != nil {
			val, block := g.lowerExpr(cur, n.Init)
			ir.Store(block, slot, val)
			return block
		}
		return cur

	case *bound.Assign:
		val, block := g.lowerExpr(cur, n.Value)
		if n.Sym != nil {
			ir.Store(block, g.slots[n.Sym], val)
		}
		return block

	case *bound.Return:
		if n.Value == nil {
			ir.Ret(cur, nil)
			return cur
		}
		val, block := g.lowerExpr(cur, n.Value)
		ir.Ret(block, &val)
		return block

	case *bound.If:
		return g.lowerIf(cur, n)

	case *bound.While:
		return g.lowerWhile(cur, n)

	case *bound.Break:
		if len(g.loopExit) > 0 {
			ir.Br(cur, g.loopExit[len(g.loopExit)-1])
		}
		return cur

	case *bound.Continue:
		if len(g.loopCont) > 0 {
			ir.Br(cur, g.loopCont[len(g.loopCont)-1])
		}
		return cur

	case *bound.ExprStmt:
		_, block := g.lowerExpr(cur, n.X)
		return block

	default:
		return cur
	}
}

// lowerIf lowers a bound.If into a diamond of basic blocks: cur splits
// into then/else blocks, which (if not already terminated, e.g. by a
// return) rejoin at a fresh merge block.
func (g *generator) lowerIf(cur *ir.BasicBlock, n *bound.If) *ir.BasicBlock {
	cond, cur := g.lowerExpr(cur, n.Cond)
	thenB := g.fn.NewBlock("")
	mergeNeeded := false

	if n.Else == nil {
		mergeB := g.fn.NewBlock("")
		ir.CondBr(cur, cond, thenB, mergeB)
		thenEnd := g.lowerBlockInto(thenB, n.Then)
		if !thenEnd.Terminated() {
			ir.Br(thenEnd, mergeB)
		}
		return mergeB
	}

	elseB := g.fn.NewBlock("")
	ir.CondBr(cur, cond, thenB, elseB)
	thenEnd := g.lowerBlockInto(thenB, n.Then)
	elseEnd := g.lowerBlockInto(elseB, n.Else)
	if !thenEnd.Terminated() || !elseEnd.Terminated() {
		mergeNeeded = true
	}
	if !mergeNeeded {
		// Both arms returned; nothing falls through. The caller's block
		// is unreachable past this point, but it must still be a valid
		// block to return, so fall back to a fresh empty block.
		return g.fn.NewBlock("")
	}
	mergeB := g.fn.NewBlock("")
	if !thenEnd.Terminated() {
		ir.Br(thenEnd, mergeB)
	}
	if !elseEnd.Terminated() {
		ir.Br(elseEnd, mergeB)
	}
	return mergeB
}

// lowerWhile lowers a bound.While into the classic header/body/exit triple.
func (g *generator) lowerWhile(cur *ir.BasicBlock, n *bound.While) *ir.BasicBlock {
	header := g.fn.NewBlock("")
	body := g.fn.NewBlock("")
	exit := g.fn.NewBlock("")

	ir.Br(cur, header)

	cond, condEnd := g.lowerExpr(header, n.Cond)
	ir.CondBr(condEnd, cond, body, exit)

	g.loopExit = append(g.loopExit, exit)
	g.loopCont = append(g.loopCont, header)
	bodyEnd := g.lowerBlockInto(body, n.Body)
	g.loopExit = g.loopExit[:len(g.loopExit)-1]
	g.loopCont = g.loopCont[:len(g.loopCont)-1]

	if !bodyEnd.Terminated() {
		ir.Br(bodyEnd, header)
	}
	return exit
}

// lowerExpr lowers e, returning its Value and the basic block execution
// continues from (expressions like IfExpr may themselves split blocks).
func (g *generator) lowerExpr(cur *ir.BasicBlock, e bound.Expr) (ir.Value, *ir.BasicBlock) {
	switch n := e.(type) {
	case *bound.IntLit:
		return ir.ConstInt(n.Value, types.Int), cur
	case *bound.FloatLit:
		return ir.ConstFloat(n.Value), cur
	case *bound.BoolLit:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return ir.ConstInt(v, types.Bool), cur
	case *bound.StringLit:
		// String constants are not materialized to a data section at this
		// stage (no backend/linker concerns belong to the IR stage); they
		// lower to a ValConstString operand carrying the literal bytes, for
		// a backend to materialize.
		return ir.ConstString(n.Value, n.Typ), cur
	case *bound.VarRef:
		slot := g.slots[n.Sym]
		return ir.Load(cur, slot), cur
	case *bound.EnumTag:
		return ir.ConstInt(int64(n.Index), types.Int), cur
	case *bound.BinOp:
		return g.lowerBinOp(cur, n)
	case *bound.UnaryOp:
		return g.lowerUnaryOp(cur, n)
	case *bound.Convert:
		val, block := g.lowerExpr(cur, n.X)
		return ir.SIToFP(block, val), block
	case *bound.Call:
		return g.lowerCall(cur, n)
	case *bound.FieldAccess:
		return g.lowerFieldAccess(cur, n)
	case *bound.IfExpr:
		return g.lowerIfExpr(cur, n)
	case *bound.ArrayLit:
		return g.lowerArrayLit(cur, n)
	case *bound.StructLit:
		return g.lowerStructLit(cur, n)
	default:
		return ir.ConstInt(0, types.Int), cur
	}
}

func (g *generator) lowerBinOp(cur *ir.BasicBlock, n *bound.BinOp) (ir.Value, *ir.BasicBlock) {
	lhs, cur := g.lowerExpr(cur, n.Left)
	rhs, cur := g.lowerExpr(cur, n.Right)
	op := binOpcode(n.Op, n.Left.Type())
	if opIsCompare(op) {
		return ir.Cmp(cur, op, lhs, rhs), cur
	}
	return ir.BinArith(cur, op, n.Typ, lhs, rhs), cur
}

func (g *generator) lowerUnaryOp(cur *ir.BasicBlock, n *bound.UnaryOp) (ir.Value, *ir.BasicBlock) {
	x, cur := g.lowerExpr(cur, n.X)
	switch unaryKindOf(n.Op) {
	case unaryNeg:
		return ir.Neg(cur, n.Typ, x), cur
	case unaryNot:
		return ir.Not(cur, x), cur
	case unaryDeref:
		return ir.Load(cur, x), cur
	case unaryAddr:
		// Address-of a VarRef is simply its existing stack slot. Other
		// operands that lower to a Load (a field access via GEP, or a
		// dereference) yield that Load's pointer operand.
		if ref, ok := n.X.(*bound.VarRef); ok {
			return g.slots[ref.Sym], cur
		}
		if x.Kind == ir.ValInstr && x.Block != nil && x.Block.Instr[x.Index].Op == ir.OpLoad {
			return x.Block.Instr[x.Index].Args[0], cur
		}
		return x, cur
	default:
		return x, cur
	}
}

func (g *generator) lowerCall(cur *ir.BasicBlock, n *bound.Call) (ir.Value, *ir.BasicBlock) {
	args := make([]ir.Value, len(n.Args))
	for i1, a := range n.Args {
		var v ir.Value
		v, cur = g.lowerExpr(cur, a.Value)
		args[i1] = v
	}
	callee := g.fnByName[n.Sym.Name]
	return ir.Call(cur, callee, args), cur
}

func (g *generator) lowerFieldAccess(cur *ir.BasicBlock, n *bound.FieldAccess) (ir.Value, *ir.BasicBlock) {
	base, cur := g.lowerExpr(cur, n.X)
	recTy := n.X.Type()
	if recTy.Kind == types.KPointer {
		recTy = recTy.Elem
	}
	idx := 0
	for i1, f := range recTy.Fields {
		if f.Name == n.FieldName {
			idx = i1
			break
		}
	}
	addr := ir.GEP(cur, base, ir.ConstInt(int64(idx), types.Int), n.FieldType)
	return ir.Load(cur, addr), cur
}

// lowerIfExprArm lowers one arm of an if-expression (its statements, then
// its trailing result expression, or a zero value of t if the arm has no
// result) and, if the arm's block did not already terminate (e.g. via an
// embedded return), stores the arm's value into slot and jumps to merge.
func (g *generator) lowerIfExprArm(armB *ir.BasicBlock, blk *bound.Block, t *types.Type, slot ir.Value, merge *ir.BasicBlock) {
	end := g.lowerBlockInto(armB, blk)
	if end.Terminated() {
		return
	}
	var val ir.Value
	if blk.Result != nil {
		val, end = g.lowerExpr(end, blk.Result)
	} else {
		val = ir.ConstInt(0, t)
	}
	ir.Store(end, slot, val)
	ir.Br(end, merge)
}

func (g *generator) lowerIfExpr(cur *ir.BasicBlock, n *bound.IfExpr) (ir.Value, *ir.BasicBlock) {
	cond, cur := g.lowerExpr(cur, n.Cond)
	thenB := g.fn.NewBlock("")
	elseB := g.fn.NewBlock("")
	mergeB := g.fn.NewBlock("")
	ir.CondBr(cur, cond, thenB, elseB)

	slot := ir.Alloca(g.fn.Blocks[0], n.Typ, g.nextSlot())
	g.lowerIfExprArm(thenB, n.Then, n.Typ, slot, mergeB)
	if n.Else != nil {
		g.lowerIfExprArm(elseB, n.Else, n.Typ, slot, mergeB)
	} else {
		ir.Store(elseB, slot, ir.ConstInt(0, n.Typ))
		ir.Br(elseB, mergeB)
	}
	return ir.Load(mergeB, slot), mergeB
}

func (g *generator) lowerArrayLit(cur *ir.BasicBlock, n *bound.ArrayLit) (ir.Value, *ir.BasicBlock) {
	arr := ir.Alloca(g.fn.Blocks[0], n.Typ, g.nextSlot())
	for i1, elem := range n.Elems {
		var v ir.Value
		v, cur = g.lowerExpr(cur, elem)
		addr := ir.GEP(cur, arr, ir.ConstInt(int64(i1), types.Int), n.Typ.Elem)
		ir.Store(cur, addr, v)
	}
	return ir.Load(cur, arr), cur
}

func (g *generator) lowerStructLit(cur *ir.BasicBlock, n *bound.StructLit) (ir.Value, *ir.BasicBlock) {
	rec := ir.Alloca(g.fn.Blocks[0], n.Typ, g.nextSlot())
	for i1, f := range n.Fields {
		var v ir.Value
		v, cur = g.lowerExpr(cur, f.Value)
		addr := ir.GEP(cur, rec, ir.ConstInt(int64(i1), types.Int), v.Type)
		ir.Store(cur, addr, v)
	}
	return ir.Load(cur, rec), cur
}

// -----------------------------
// ----- operator dispatch -----
// -----------------------------

// binOpcode maps a bound BinOp's token.Kind operator (stored as int) and
// the (already-promoted) operand type to the corresponding Opcode,
// dispatching between the integer and floating point instruction families
// at lowering time per spec.md §4.4.
func binOpcode(op int, operandType *types.Type) ir.Opcode {
	isFloat := operandType.Kind == types.KFloat
	switch token.Kind(op) {
	case token.PLUS:
		if isFloat {
			return ir.OpFAdd
		}
		return ir.OpIAdd
	case token.MINUS:
		if isFloat {
			return ir.OpFSub
		}
		return ir.OpISub
	case token.STAR:
		if isFloat {
			return ir.OpFMul
		}
		return ir.OpIMul
	case token.SLASH:
		if isFloat {
			return ir.OpFDiv
		}
		return ir.OpIDiv
	case token.PERCENT:
		return ir.OpIRem
	case token.CARET:
		if isFloat {
			return ir.OpFPow
		}
		return ir.OpIPow
	case token.EQ:
		if isFloat {
			return ir.OpFCmpEQ
		}
		return ir.OpICmpEQ
	case token.NEQ:
		if isFloat {
			return ir.OpFCmpNE
		}
		return ir.OpICmpNE
	case token.LT:
		if isFloat {
			return ir.OpFCmpLT
		}
		return ir.OpICmpLT
	case token.LE:
		if isFloat {
			return ir.OpFCmpLE
		}
		return ir.OpICmpLE
	case token.GT:
		if isFloat {
			return ir.OpFCmpGT
		}
		return ir.OpICmpGT
	case token.GE:
		if isFloat {
			return ir.OpFCmpGE
		}
		return ir.OpICmpGE
	default:
		return ir.OpIAdd
	}
}

func opIsCompare(op ir.Opcode) bool {
	switch op {
	case ir.OpICmpEQ, ir.OpICmpNE, ir.OpICmpLT, ir.OpICmpLE, ir.OpICmpGT, ir.OpICmpGE,
		ir.OpFCmpEQ, ir.OpFCmpNE, ir.OpFCmpLT, ir.OpFCmpLE, ir.OpFCmpGT, ir.OpFCmpGE:
		return true
	}
	return false
}

type unaryKind int

const (
	unaryNeg unaryKind = iota
	unaryNot
	unaryDeref
	unaryAddr
)

func unaryKindOf(op int) unaryKind {
	switch token.Kind(op) {
	case token.MINUS:
		return unaryNeg
	case token.NOT:
		return unaryNot
	case token.STAR:
		return unaryDeref
	case token.AMP:
		return unaryAddr
	default:
		return unaryNeg
	}
}
