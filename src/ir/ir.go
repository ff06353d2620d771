// ir.go implements the three-address, basic-block structured IR of
// spec.md §3.6: Module -> Function -> BasicBlock -> Instruction, with
// every BasicBlock ending in exactly one explicit terminator. Grounded on
// the teacher's ir/lir package for the general block/instruction shape
// (an ordered instruction list per block, SSA-like Value results), but
// the opcode set and terminator discipline are this spec's own -- the
// teacher's lir mixes physical-register concerns (spill slots, ISA
// operands) that spec.md §1 places out of scope for this stage.

package ir

import (
	"fmt"
	"strings"

	"slc/src/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Opcode identifies an IR instruction's operation.
type Opcode int

const (
	OpAlloca Opcode = iota
	OpLoad
	OpStore
	OpIAdd
	OpISub
	OpIMul
	OpIDiv
	OpIRem
	OpIPow
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFPow
	OpNeg
	OpFNeg
	OpNot
	OpICmpEQ
	OpICmpNE
	OpICmpLT
	OpICmpLE
	OpICmpGT
	OpICmpGE
	OpFCmpEQ
	OpFCmpNE
	OpFCmpLT
	OpFCmpLE
	OpFCmpGT
	OpFCmpGE
	OpSIToFP // signed-int-to-float conversion, emitted for Int->Float promotion.
	OpGEP    // getelementptr-style address computation for array/field indexing.
	OpCall

	// Terminators. Every BasicBlock ends in exactly one of these.
	OpRet
	OpBr
	OpCondBr
)

var opNames = map[Opcode]string{
	OpAlloca: "alloca", OpLoad: "load", OpStore: "store",
	OpIAdd: "iadd", OpISub: "isub", OpIMul: "imul", OpIDiv: "idiv", OpIRem: "irem", OpIPow: "ipow",
	OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv", OpFPow: "fpow",
	OpNeg: "neg", OpFNeg: "fneg", OpNot: "not",
	OpICmpEQ: "icmp.eq", OpICmpNE: "icmp.ne", OpICmpLT: "icmp.lt", OpICmpLE: "icmp.le", OpICmpGT: "icmp.gt", OpICmpGE: "icmp.ge",
	OpFCmpEQ: "fcmp.eq", OpFCmpNE: "fcmp.ne", OpFCmpLT: "fcmp.lt", OpFCmpLE: "fcmp.le", OpFCmpGT: "fcmp.gt", OpFCmpGE: "fcmp.ge",
	OpSIToFP: "sitofp", OpGEP: "gep", OpCall: "call",
	OpRet: "ret", OpBr: "br", OpCondBr: "condbr",
}

func (o Opcode) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Value identifies an SSA-style result: either an instruction's result
// slot (Kind==ValInstr, referenced by instruction index within its
// defining block) or an immediate constant, or a reference to a named
// Function (for OpCall's callee operand).
type Value struct {
	Kind  ValueKind
	Block *BasicBlock // Defining block, for ValInstr.
	Index int         // Instruction index within Block, for ValInstr.
	Int   int64       // Constant payload for ValConstInt.
	Float float64     // Constant payload for ValConstFloat.
	Str   string      // Constant payload for ValConstString.
	Func  *Function   // Referenced function, for ValFunc.
	Type  *types.Type
}

// ValueKind differentiates the operand forms an Instruction may reference.
type ValueKind int

const (
	ValInstr ValueKind = iota
	ValConstInt
	ValConstFloat
	ValConstString
	ValFunc
	ValParam
)

// ConstInt returns a constant integer operand of the given type (Int or,
// for the purpose of representing enum tags, any integer-sized type).
func ConstInt(v int64, t *types.Type) Value {
	return Value{Kind: ValConstInt, Int: v, Type: t}
}

// ConstFloat returns a constant floating point operand.
func ConstFloat(v float64) Value {
	return Value{Kind: ValConstFloat, Float: v, Type: types.Float}
}

// ConstString returns a constant string operand of the given (record
// surrogate) type. No data section exists at the IR stage -- the bytes
// are carried on the Value itself purely so the textual IR stays readable
// and a backend has the literal available to materialize; see irgen's
// *bound.StringLit lowering.
func ConstString(v string, t *types.Type) Value {
	return Value{Kind: ValConstString, Str: v, Type: t}
}

// FuncRef returns an operand referencing fn by name (used as OpCall's
// callee operand).
func FuncRef(fn *Function) Value {
	return Value{Kind: ValFunc, Func: fn, Type: fn.ReturnType}
}

// ParamValue returns an operand reading the index-th incoming parameter of
// a function, of the given type. Emitted once per parameter, into the
// entry block's initial Store, so every parameter immediately gets an
// addressable stack slot (spec.md §4.4's argument-slot convention).
func ParamValue(index int, t *types.Type) Value {
	return Value{Kind: ValParam, Index: index, Type: t}
}

func instrValue(b *BasicBlock, idx int, t *types.Type) Value {
	return Value{Kind: ValInstr, Block: b, Index: idx, Type: t}
}

// String renders a Value in the textual form of spec.md §6.3.
func (v Value) String() string {
	switch v.Kind {
	case ValConstInt:
		return fmt.Sprintf("%d", v.Int)
	case ValConstFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValConstString:
		return fmt.Sprintf("%q", v.Str)
	case ValFunc:
		return "@" + v.Func.Name
	case ValParam:
		return fmt.Sprintf("%%param%d", v.Index)
	default:
		return fmt.Sprintf("%%%s.%d", v.Block.Name, v.Index)
	}
}

// Instruction is a single three-address operation. Not every field is
// meaningful for every Opcode; see the per-opcode operand convention
// documented alongside each emit helper (Alloca, Load, Store, ...) below.
type Instruction struct {
	Op       Opcode
	Type     *types.Type // Result type; Void for instructions with no result (Store, terminators).
	Args     []Value     // Operand list, opcode-dependent order.
	Targets  []*BasicBlock // Branch targets: [then] for Br, [then, else] for CondBr.
	CallName string      // Callee name, set only for OpCall (kept alongside FuncRef for readability in Print).
	Slot     int         // Alloca-only: the slot number irgen assigned; it is recorded here but not read back or printed.
}

// BasicBlock is a straight-line instruction sequence ending in exactly one
// terminator (Ret, Br, or CondBr).
type BasicBlock struct {
	Name  string
	Instr []Instruction
}

// Terminated reports whether b already ends in a terminator.
func (b *BasicBlock) Terminated() bool {
	if len(b.Instr) == 0 {
		return false
	}
	switch b.Instr[len(b.Instr)-1].Op {
	case OpRet, OpBr, OpCondBr:
		return true
	default:
		return false
	}
}

// Function is a single IR function: a parameter list, return type, and an
// ordered list of basic blocks (the first is the entry block).
type Function struct {
	Name       string
	Params     []*types.Type
	ParamNames []string
	ReturnType *Type
	Variadic   bool
	Extern     bool
	Blocks     []*BasicBlock

	blockSeq int // Monotonic counter feeding fresh block names.
}

// Type is an alias kept distinct from types.Type only at the name level so
// ir.go's godoc reads naturally; the two are the same underlying algebra.
type Type = types.Type

// Module is the root of a compiled translation unit: every function plus
// the record/enum types it references, carried through for the backend.
type Module struct {
	Functions []*Function
	Records   []*types.Type
	Enums     []*types.Type
}

// ---------------------
// ----- functions -----
// ---------------------

// NewFunction allocates a Function with a fresh entry block already
// appended, named "entry" per convention. An extern function gets no
// blocks at all.
func NewFunction(name string, params []*types.Type, paramNames []string, ret *types.Type, variadic, extern bool) *Function {
	f := &Function{Name: name, Params: params, ParamNames: paramNames, ReturnType: ret, Variadic: variadic, Extern: extern}
	if !extern {
		f.NewBlock("entry")
	}
	return f
}

// NewBlock appends and returns a fresh basic block. If name is empty a
// name is synthesized from an internal counter (e.g. "bb3").
func (f *Function) NewBlock(name string) *BasicBlock {
	if name == "" {
		name = fmt.Sprintf("bb%d", f.blockSeq)
	}
	f.blockSeq++
	b := &BasicBlock{Name: name}
	f.Blocks = append(f.Blocks, b)
	return b
}

// emit appends instr to b and returns the Value naming its result (or the
// zero Value if instr has no result, i.e. Type is Void).
func emit(b *BasicBlock, instr Instruction) Value {
	idx := len(b.Instr)
	b.Instr = append(b.Instr, instr)
	if instr.Type == nil || instr.Type.Kind == types.KVoid {
		return Value{}
	}
	return instrValue(b, idx, instr.Type)
}

// Alloca emits a stack slot of type t and returns a Pointer(t) Value
// naming it. slot is an irgen-assigned number stored on the instruction.
// If b already ends in a terminator, the Alloca is placed just before it,
// so b stays terminated.
func Alloca(b *BasicBlock, t *types.Type, slot int) Value {
	instr := Instruction{Op: OpAlloca, Type: types.Pointer(t), Slot: slot}
	if !b.Terminated() {
		return emit(b, instr)
	}
	last := len(b.Instr) - 1
	term := b.Instr[last]
	b.Instr[last] = instr
	b.Instr = append(b.Instr, term)
	return instrValue(b, last, instr.Type)
}

// Load emits a load from ptr (which must be a Pointer(t) Value) and
// returns the loaded t Value.
func Load(b *BasicBlock, ptr Value) Value {
	return emit(b, Instruction{Op: OpLoad, Type: ptr.Type.Elem, Args: []Value{ptr}})
}

// Store emits a store of val into ptr. Store has no result.
func Store(b *BasicBlock, ptr, val Value) {
	emit(b, Instruction{Op: OpStore, Type: types.Void, Args: []Value{ptr, val}})
}

// BinArith emits the numeric binary instruction op with result type t.
// It does not choose between the integer and floating-point opcode
// families; the caller passes the already-selected op.
func BinArith(b *BasicBlock, op Opcode, t *types.Type, lhs, rhs Value) Value {
	return emit(b, Instruction{Op: op, Type: t, Args: []Value{lhs, rhs}})
}

// Cmp emits a comparison instruction; its result is always Bool.
func Cmp(b *BasicBlock, op Opcode, lhs, rhs Value) Value {
	return emit(b, Instruction{Op: op, Type: types.Bool, Args: []Value{lhs, rhs}})
}

// Neg emits a unary arithmetic negation, dispatching on t's kind.
func Neg(b *BasicBlock, t *types.Type, x Value) Value {
	op := OpNeg
	if t.Kind == types.KFloat {
		op = OpFNeg
	}
	return emit(b, Instruction{Op: op, Type: t, Args: []Value{x}})
}

// Not emits a boolean negation.
func Not(b *BasicBlock, x Value) Value {
	return emit(b, Instruction{Op: OpNot, Type: types.Bool, Args: []Value{x}})
}

// SIToFP emits an explicit Int->Float conversion, the lowering of a bound
// Convert node.
func SIToFP(b *BasicBlock, x Value) Value {
	return emit(b, Instruction{Op: OpSIToFP, Type: types.Float, Args: []Value{x}})
}

// GEP emits an address computation over base at the given index operand,
// yielding a Pointer(elemType) Value (array indexing and record field
// addressing both lower to this opcode).
func GEP(b *BasicBlock, base Value, index Value, elemType *types.Type) Value {
	return emit(b, Instruction{Op: OpGEP, Type: types.Pointer(elemType), Args: []Value{base, index}})
}

// Call emits a call to callee with the given argument Values, returning a
// ret-typed Value (Void if the callee returns Void, in which case the
// caller must not use the returned Value).
func Call(b *BasicBlock, callee *Function, args []Value) Value {
	return emit(b, Instruction{Op: OpCall, Type: callee.ReturnType, Args: append([]Value{FuncRef(callee)}, args...), CallName: callee.Name})
}

// Ret terminates b with a return of val, or a bare "return;" if val is nil
// (only valid for a Void-returning function).
func Ret(b *BasicBlock, val *Value) {
	var args []Value
	if val != nil {
		args = []Value{*val}
	}
	emit(b, Instruction{Op: OpRet, Type: types.Void, Args: args})
}

// Br terminates b with an unconditional jump to target.
func Br(b *BasicBlock, target *BasicBlock) {
	emit(b, Instruction{Op: OpBr, Type: types.Void, Targets: []*BasicBlock{target}})
}

// CondBr terminates b with a conditional branch: thenB if cond is true,
// elseB otherwise.
func CondBr(b *BasicBlock, cond Value, thenB, elseB *BasicBlock) {
	emit(b, Instruction{Op: OpCondBr, Type: types.Void, Args: []Value{cond}, Targets: []*BasicBlock{thenB, elseB}})
}

// ----------------------
// ----- printing -----
// ----------------------

// Print renders m's functions as text: one function per paragraph, headed
// "fun @name(params) -> T {" (or ending in "extern" with no body), one
// basic block label per line, one instruction per subsequent indented
// line. The module's record and enum types are not printed.
func Print(m *Module) string {
	var sb strings.Builder
	for _, fn := range m.Functions {
		printFunction(&sb, fn)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Params))
	for i1, t := range fn.Params {
		name := ""
		if i1 < len(fn.ParamNames) {
			name = fn.ParamNames[i1]
		}
		params[i1] = fmt.Sprintf("%s: %s", name, t)
	}
	fmt.Fprintf(sb, "fun @%s(%s) -> %s", fn.Name, strings.Join(params, ", "), fn.ReturnType)
	if fn.Extern {
		sb.WriteString(" extern\n")
		return
	}
	sb.WriteString(" {\n")
	for _, blk := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", blk.Name)
		for i1, instr := range blk.Instr {
			printInstr(sb, blk, i1, instr)
		}
	}
	sb.WriteString("}\n")
}

func printInstr(sb *strings.Builder, blk *BasicBlock, idx int, instr Instruction) {
	sb.WriteString("    ")
	if instr.Type != nil && instr.Type.Kind != types.KVoid {
		fmt.Fprintf(sb, "%s = ", instrValue(blk, idx, instr.Type))
	}
	sb.WriteString(instr.Op.String())
	for _, a := range instr.Args {
		fmt.Fprintf(sb, " %s", a)
	}
	for _, t := range instr.Targets {
		fmt.Fprintf(sb, " %s", t.Name)
	}
	sb.WriteByte('\n')
}
