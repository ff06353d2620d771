// Package llvm lowers a compiled ir.Module to LLVM IR using the
// system-installed LLVM runtime, through tinygo.org/x/go-llvm. Grounded on
// the teacher's ir/llvm/transform.go: the same llvm.NewContext /
// llvm.NewBuilder / llvm.NewModule setup, the same per-opcode
// Create*-method dispatch style, and the same llvm.AddBasicBlock-per-block
// shape. Deliberately partial, per spec.md §1's non-goals: this package
// emits an in-memory llvm.Module and nothing more -- no target triple
// selection, no optimization passes, and no object-file emission or
// linking, all of which the teacher's transform.go performs but this
// spec's backend is explicitly not responsible for. It exists to show the
// IR stage's output has a real external consumer, not to be a complete
// code generator.
package llvm

import (
	"fmt"

	goirllvm "tinygo.org/x/go-llvm"

	"slc/src/ir"
	"slc/src/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// emitter holds the per-module LLVM handles plus the running map from this
// package's ir.Value operands to the llvm.Value they were already lowered
// to, so repeated references to the same instruction result reuse the
// single llvm.Value the teacher's genExpression re-derives from an ast
// stack but which this design simply memoizes per function.
type emitter struct {
	ctx     goirllvm.Context
	builder goirllvm.Builder
	module  goirllvm.Module
	fns     map[string]goirllvm.Value
	values  map[ir.Value]goirllvm.Value // Cache, keyed per-function (reset at the start of each function).
	blocks  map[*ir.BasicBlock]goirllvm.BasicBlock
}

// ---------------------
// ----- functions -----
// ---------------------

// Emit lowers m to a fresh LLVM module named name. The caller owns the
// returned Context and must Dispose() it (mirroring the teacher's
// defer ctx.Dispose() convention in GenLLVM).
func Emit(name string, m *ir.Module) (goirllvm.Context, goirllvm.Module, error) {
	ctx := goirllvm.NewContext()
	e := &emitter{
		ctx:     ctx,
		builder: ctx.NewBuilder(),
		module:  ctx.NewModule(name),
		fns:     make(map[string]goirllvm.Value, len(m.Functions)),
	}

	for _, fn := range m.Functions {
		e.fns[fn.Name] = e.declareFunction(fn)
	}
	for _, fn := range m.Functions {
		if fn.Extern {
			continue
		}
		if err := e.defineFunction(fn); err != nil {
			return ctx, e.module, err
		}
	}
	return ctx, e.module, nil
}

func (e *emitter) declareFunction(fn *ir.Function) goirllvm.Value {
	params := make([]goirllvm.Type, len(fn.Params))
	for i1, t := range fn.Params {
		params[i1] = llvmType(e.ctx, t)
	}
	ret := llvmType(e.ctx, fn.ReturnType)
	ftyp := goirllvm.FunctionType(ret, params, fn.Variadic)
	return goirllvm.AddFunction(e.module, fn.Name, ftyp)
}

func (e *emitter) defineFunction(fn *ir.Function) error {
	llfn := e.fns[fn.Name]
	e.blocks = make(map[*ir.BasicBlock]goirllvm.BasicBlock, len(fn.Blocks))
	e.values = make(map[ir.Value]goirllvm.Value, 16)

	for _, blk := range fn.Blocks {
		e.blocks[blk] = goirllvm.AddBasicBlock(llfn, blk.Name)
	}
	for _, blk := range fn.Blocks {
		e.builder.SetInsertPointAtEnd(e.blocks[blk])
		for idx, instr := range blk.Instr {
			val, err := e.defineInstr(llfn, blk, idx, instr)
			if err != nil {
				return fmt.Errorf("function %s, block %s: %w", fn.Name, blk.Name, err)
			}
			if val != (goirllvm.Value{}) {
				e.values[resultValueOf(blk, idx, instr)] = val
			}
		}
	}
	return nil
}

// resultValueOf reconstructs the ir.Value key an instruction's own result
// would be referenced by from elsewhere in the same function, mirroring
// ir.instrValue (unexported, so recomputed here from the public fields).
func resultValueOf(blk *ir.BasicBlock, idx int, instr ir.Instruction) ir.Value {
	return ir.Value{Kind: ir.ValInstr, Block: blk, Index: idx, Type: instr.Type}
}

func (e *emitter) defineInstr(fn goirllvm.Value, blk *ir.BasicBlock, idx int, instr ir.Instruction) (goirllvm.Value, error) {
	b := e.builder
	switch instr.Op {
	case ir.OpAlloca:
		return b.CreateAlloca(llvmType(e.ctx, instr.Type.Elem), ""), nil
	case ir.OpLoad:
		ptr := e.operand(fn, instr.Args[0])
		return b.CreateLoad(llvmType(e.ctx, instr.Type), ptr, ""), nil
	case ir.OpStore:
		ptr := e.operand(fn, instr.Args[0])
		val := e.operand(fn, instr.Args[1])
		b.CreateStore(val, ptr)
		return goirllvm.Value{}, nil
	case ir.OpIAdd:
		return b.CreateAdd(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpISub:
		return b.CreateSub(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpIMul:
		return b.CreateMul(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpIDiv:
		return b.CreateSDiv(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpIRem:
		return b.CreateSRem(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFAdd:
		return b.CreateFAdd(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFSub:
		return b.CreateFSub(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFMul:
		return b.CreateFMul(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFDiv:
		return b.CreateFDiv(e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpIPow, ir.OpFPow:
		// LLVM has no native integer/float power instruction; spec.md's
		// backend boundary (§6.4) does not require intrinsic lowering, so
		// this is reported rather than silently miscompiled.
		return goirllvm.Value{}, fmt.Errorf("^ (power) has no direct LLVM lowering in this backend")
	case ir.OpNeg:
		return b.CreateNeg(e.operand(fn, instr.Args[0]), ""), nil
	case ir.OpFNeg:
		return b.CreateFNeg(e.operand(fn, instr.Args[0]), ""), nil
	case ir.OpNot:
		return b.CreateNot(e.operand(fn, instr.Args[0]), ""), nil
	case ir.OpICmpEQ:
		return b.CreateICmp(goirllvm.IntEQ, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpICmpNE:
		return b.CreateICmp(goirllvm.IntNE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpICmpLT:
		return b.CreateICmp(goirllvm.IntSLT, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpICmpLE:
		return b.CreateICmp(goirllvm.IntSLE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpICmpGT:
		return b.CreateICmp(goirllvm.IntSGT, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpICmpGE:
		return b.CreateICmp(goirllvm.IntSGE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpEQ:
		return b.CreateFCmp(goirllvm.FloatOEQ, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpNE:
		return b.CreateFCmp(goirllvm.FloatONE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpLT:
		return b.CreateFCmp(goirllvm.FloatOLT, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpLE:
		return b.CreateFCmp(goirllvm.FloatOLE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpGT:
		return b.CreateFCmp(goirllvm.FloatOGT, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpFCmpGE:
		return b.CreateFCmp(goirllvm.FloatOGE, e.operand(fn, instr.Args[0]), e.operand(fn, instr.Args[1]), ""), nil
	case ir.OpSIToFP:
		return b.CreateSIToFP(e.operand(fn, instr.Args[0]), llvmType(e.ctx, types.Float), ""), nil
	case ir.OpGEP:
		base := e.operand(fn, instr.Args[0])
		index := e.operand(fn, instr.Args[1])
		zero := goirllvm.ConstInt(e.ctx.Int32Type(), 0, false)
		return b.CreateGEP(base, []goirllvm.Value{zero, index}, ""), nil
	case ir.OpCall:
		callee := e.fns[instr.CallName]
		args := make([]goirllvm.Value, len(instr.Args)-1)
		for i1, a := range instr.Args[1:] {
			args[i1] = e.operand(fn, a)
		}
		return b.CreateCall(callee, args, ""), nil
	case ir.OpRet:
		if len(instr.Args) == 0 {
			b.CreateRetVoid()
		} else {
			b.CreateRet(e.operand(fn, instr.Args[0]))
		}
		return goirllvm.Value{}, nil
	case ir.OpBr:
		b.CreateBr(e.blocks[instr.Targets[0]])
		return goirllvm.Value{}, nil
	case ir.OpCondBr:
		b.CreateCondBr(e.operand(fn, instr.Args[0]), e.blocks[instr.Targets[0]], e.blocks[instr.Targets[1]])
		return goirllvm.Value{}, nil
	default:
		return goirllvm.Value{}, fmt.Errorf("unsupported opcode %s", instr.Op)
	}
}

// operand resolves an ir.Value operand to its already-lowered llvm.Value,
// materializing constants and parameter reads on demand.
func (e *emitter) operand(fn goirllvm.Value, v ir.Value) goirllvm.Value {
	switch v.Kind {
	case ir.ValConstInt:
		return goirllvm.ConstInt(llvmType(e.ctx, v.Type), uint64(v.Int), true)
	case ir.ValConstFloat:
		return goirllvm.ConstFloat(llvmType(e.ctx, v.Type), v.Float)
	case ir.ValConstString:
		return e.builder.CreateGlobalStringPtr(v.Str, "")
	case ir.ValFunc:
		return e.fns[v.Func.Name]
	case ir.ValParam:
		return fn.Param(v.Index)
	default:
		return e.values[v]
	}
}

// llvmType maps the closed Type algebra of spec.md §3.4 to an LLVM type.
// Record and Enum map to an LLVM struct/integer respectively; arrays map
// directly since LLVM's array type already matches spec.md §3.4's
// fixed-size Array(T, size).
func llvmType(ctx goirllvm.Context, t *types.Type) goirllvm.Type {
	switch t.Kind {
	case types.KVoid:
		return ctx.VoidType()
	case types.KBool:
		return ctx.Int1Type()
	case types.KInt:
		return ctx.Int64Type()
	case types.KFloat:
		return ctx.DoubleType()
	case types.KPointer:
		return goirllvm.PointerType(llvmType(ctx, t.Elem), 0)
	case types.KArray:
		return goirllvm.ArrayType(llvmType(ctx, t.Elem), t.Size)
	case types.KEnum:
		return ctx.Int64Type() // Enums are represented by their Int ordinal.
	case types.KRecord:
		fields := make([]goirllvm.Type, len(t.Fields))
		for i1, f := range t.Fields {
			fields[i1] = llvmType(ctx, f.Type)
		}
		return ctx.StructType(fields, false)
	default:
		return ctx.VoidType()
	}
}
