// bound.go defines the typed (bound) tree of spec.md §3.5: a tree that
// mirrors ast's shape one-for-one, except every node additionally carries
// its resolved *types.Type (and, where relevant, the types.Symbol it
// resolves to). Grounded on the same tagged-variant pattern as ast.Node;
// the teacher has no equivalent stage, since its goyacc-based frontend
// type-checks in the same pass as parsing.

package bound

import (
	"slc/src/types"
	"slc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Node is implemented by every bound tree node.
type Node interface {
	Span() util.Span
}

// Program is the bound tree root: every top-level declaration, fully
// resolved.
type Program struct {
	Functions []*Function
	Records   []*types.Type // Resolved Record types, in declaration order.
	Enums     []*types.Type // Resolved Enum types, in declaration order.
	Sp        util.Span
}

// Function is a bound function declaration. Body is nil for extern
// declarations; Lambda is set instead of Body for lambda-expression forms
// (mirroring ast.FunDecl).
type Function struct {
	Sym    *types.FunctionSymbol
	Body   *Block
	Lambda Expr
	Sp     util.Span
}

func (n *Function) Span() util.Span { return n.Sp }

// ----------------------------
// ----- Statement family -----
// ----------------------------

// Stmt is the sealed family of bound statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// Block is a bound statement sequence with an optional trailing result
// expression; Result.Type() gives the block's value type (Void if absent).
type Block struct {
	Stmts  []Stmt
	Result Expr
	Sp     util.Span
}

func (n *Block) Span() util.Span { return n.Sp }
func (*Block) stmtNode()         {}

// VarDecl is a bound local variable declaration.
type VarDecl struct {
	Sym  *types.VariableSymbol
	Init Expr // nil if uninitialized.
	Sp   util.Span
}

func (n *VarDecl) Span() util.Span { return n.Sp }
func (*VarDecl) stmtNode()         {}

// Assign is a bound assignment to a previously declared variable.
type Assign struct {
	Sym   *types.VariableSymbol
	Value Expr
	Sp    util.Span
}

func (n *Assign) Span() util.Span { return n.Sp }
func (*Assign) stmtNode()         {}

// Return is a bound return statement.
type Return struct {
	Value Expr // nil for a bare "return;"
	Sp    util.Span
}

func (n *Return) Span() util.Span { return n.Sp }
func (*Return) stmtNode()         {}

// If is a bound conditional statement.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
	Sp   util.Span
}

func (n *If) Span() util.Span { return n.Sp }
func (*If) stmtNode()         {}

// While is a bound pre-tested loop.
type While struct {
	Cond Expr
	Body *Block
	Sp   util.Span
}

func (n *While) Span() util.Span { return n.Sp }
func (*While) stmtNode()         {}

// Break exits the nearest enclosing While.
type Break struct {
	Sp util.Span
}

func (n *Break) Span() util.Span { return n.Sp }
func (*Break) stmtNode()         {}

// Continue jumps to the condition check of the nearest enclosing While.
type Continue struct {
	Sp util.Span
}

func (n *Continue) Span() util.Span { return n.Sp }
func (*Continue) stmtNode()         {}

// ExprStmt wraps a bound expression used as a statement.
type ExprStmt struct {
	X  Expr
	Sp util.Span
}

func (n *ExprStmt) Span() util.Span { return n.Sp }
func (*ExprStmt) stmtNode()         {}

// -----------------------------
// ----- Expression family -----
// -----------------------------

// Expr is the sealed family of bound expression variants. Every variant
// reports its resolved Type.
type Expr interface {
	Node
	exprNode()
	Type() *types.Type
}

// IntLit is a bound integer literal (always of type Int).
type IntLit struct {
	Value int64
	Sp    util.Span
}

func (n *IntLit) Span() util.Span  { return n.Sp }
func (*IntLit) exprNode()          {}
func (n *IntLit) Type() *types.Type { return types.Int }

// FloatLit is a bound floating point literal (always of type Float).
type FloatLit struct {
	Value float64
	Sp    util.Span
}

func (n *FloatLit) Span() util.Span  { return n.Sp }
func (*FloatLit) exprNode()          {}
func (n *FloatLit) Type() *types.Type { return types.Float }

// StringLit is a bound string literal (of the built-in String record type).
type StringLit struct {
	Value string
	Typ   *types.Type
	Sp    util.Span
}

func (n *StringLit) Span() util.Span  { return n.Sp }
func (*StringLit) exprNode()          {}
func (n *StringLit) Type() *types.Type { return n.Typ }

// BoolLit is a bound boolean literal (always of type Bool).
type BoolLit struct {
	Value bool
	Sp    util.Span
}

func (n *BoolLit) Span() util.Span  { return n.Sp }
func (*BoolLit) exprNode()          {}
func (n *BoolLit) Type() *types.Type { return types.Bool }

// VarRef is a bound reference to a local variable or parameter.
type VarRef struct {
	Sym *types.VariableSymbol
	Sp  util.Span
}

func (n *VarRef) Span() util.Span  { return n.Sp }
func (*VarRef) exprNode()          {}
func (n *VarRef) Type() *types.Type { return n.Sym.Type }

// EnumTag is a bound "EnumName::Tag" reference (SPEC_FULL.md §C.4),
// evaluating to the tag's Int ordinal.
type EnumTag struct {
	Enum  *types.Type
	Tag   string
	Index int
	Sp    util.Span
}

func (n *EnumTag) Span() util.Span  { return n.Sp }
func (*EnumTag) exprNode()          {}
func (n *EnumTag) Type() *types.Type { return types.Int }

// BinOp is a bound binary operator expression. Op holds the token.Kind of
// the operator (kept as int here for the same reason as ast.BinOp).
type BinOp struct {
	Op    int
	Left  Expr
	Right Expr
	Typ   *types.Type
	Sp    util.Span
}

func (n *BinOp) Span() util.Span  { return n.Sp }
func (*BinOp) exprNode()          {}
func (n *BinOp) Type() *types.Type { return n.Typ }

// UnaryOp is a bound unary prefix operator expression.
type UnaryOp struct {
	Op  int
	X   Expr
	Typ *types.Type
	Sp  util.Span
}

func (n *UnaryOp) Span() util.Span  { return n.Sp }
func (*UnaryOp) exprNode()          {}
func (n *UnaryOp) Type() *types.Type { return n.Typ }

// Convert is an implicit Int->Float promotion node, inserted by the binder
// wherever spec.md §4.3's convertibility rule applies to an operand that
// did not already have the target type.
type Convert struct {
	X   Expr
	Typ *types.Type
	Sp  util.Span
}

func (n *Convert) Span() util.Span  { return n.Sp }
func (*Convert) exprNode()          {}
func (n *Convert) Type() *types.Type { return n.Typ }

// Arg is a single bound call argument, already resolved to its parameter
// position (named arguments are reordered to positional order by the
// binder, per SPEC_FULL.md §C.2).
type Arg struct {
	Value Expr
}

// Call is a bound function call expression.
type Call struct {
	Sym  *types.FunctionSymbol
	Args []Arg
	Sp   util.Span
}

func (n *Call) Span() util.Span  { return n.Sp }
func (*Call) exprNode()          {}
func (n *Call) Type() *types.Type { return n.Sym.ReturnType }

// ArrayLit is a bound array literal.
type ArrayLit struct {
	Elems []Expr
	Typ   *types.Type
	Sp    util.Span
}

func (n *ArrayLit) Span() util.Span  { return n.Sp }
func (*ArrayLit) exprNode()          {}
func (n *ArrayLit) Type() *types.Type { return n.Typ }

// FieldAccess is a bound record field access expression.
type FieldAccess struct {
	X         Expr
	FieldName string
	FieldType *types.Type
	Sp        util.Span
}

func (n *FieldAccess) Span() util.Span  { return n.Sp }
func (*FieldAccess) exprNode()          {}
func (n *FieldAccess) Type() *types.Type { return n.FieldType }

// StructLitField is a single bound field initializer.
type StructLitField struct {
	Name  string
	Value Expr
}

// StructLit is a bound "Name { field: expr, ... }" construction expression
// (SPEC_FULL.md §C.1). The binder guarantees Fields covers every declared
// field of Typ exactly once.
type StructLit struct {
	Typ    *types.Type
	Fields []StructLitField
	Sp     util.Span
}

func (n *StructLit) Span() util.Span  { return n.Sp }
func (*StructLit) exprNode()          {}
func (n *StructLit) Type() *types.Type { return n.Typ }

// IfExpr is a bound expression-producing conditional.
type IfExpr struct {
	Cond Expr
	Then *Block
	Else *Block
	Typ  *types.Type
	Sp   util.Span
}

func (n *IfExpr) Span() util.Span  { return n.Sp }
func (*IfExpr) exprNode()          {}
func (n *IfExpr) Type() *types.Type { return n.Typ }
