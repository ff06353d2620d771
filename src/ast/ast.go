// ast.go defines the untyped syntax tree as tagged variants: one Go
// interface per family (TopLevel, Stmt, Expr, TypeExpr), each implemented
// by a sealed set of structs. This is the representation spec.md §9
// explicitly asks for ("Polymorphic AST base classes -> composition...
// model this as a variant with exhaustive match"), and is deliberately NOT
// grounded on the teacher's wide-union ir.Node (src/ir/nodetype.go), which
// is the representation spec.md §9 says to reconcile away.

package ast

import "slc/src/util"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Node is implemented by every AST node and exposes its source Span.
type Node interface {
	Span() util.Span
}

// Root is the root of a parsed source file.
type Root struct {
	Children []TopLevel
	Sp       util.Span
}

func (n *Root) Span() util.Span { return n.Sp }

// TopLevel is the sealed family of declarations that may appear directly
// under Root.
type TopLevel interface {
	Node
	topLevelNode()
}

// Modifier is a bitset of the modifiers a FunDecl may carry.
type Modifier int

const (
	ModExtern Modifier = 1 << iota
	ModStatic
	ModPub
)

// Parameter is a single named, typed function parameter.
type Parameter struct {
	Name string
	Type TypeExpr
	Sp   util.Span
}

func (p *Parameter) Span() util.Span { return p.Sp }

// FunDecl declares a function. Body is nil for extern/forward declarations
// (terminated by ';' instead of a block per spec.md §4.2's FunDecl state
// machine); Body is non-nil otherwise. Lambda is set instead of Body when
// the function is declared with an explicit lambda expression in place of
// a block (spec.md §3.3: "body (or an explicit lambda expression)").
type FunDecl struct {
	Name       string
	Params     []*Parameter
	Variadic   bool
	ReturnType TypeExpr // nil means implicit void.
	Body       *Block
	Lambda     Expr
	Modifiers  Modifier
	Sp         util.Span
}

func (n *FunDecl) Span() util.Span { return n.Sp }
func (*FunDecl) topLevelNode()     {}

// RecordDecl declares a record (struct/record are accepted as synonyms by
// the parser, per SPEC_FULL.md §D).
type RecordDecl struct {
	Name   string
	Fields []*Parameter // Reused shape: name + type.
	Sp     util.Span
}

func (n *RecordDecl) Span() util.Span { return n.Sp }
func (*RecordDecl) topLevelNode()     {}

// EnumDecl declares an enum: a name and an ordered, 0-indexed list of tags.
type EnumDecl struct {
	Name string
	Tags []string
	Sp   util.Span
}

func (n *EnumDecl) Span() util.Span { return n.Sp }
func (*EnumDecl) topLevelNode()     {}

// ImportDecl is parsed but carries no semantic meaning: separate
// compilation / modules is an explicit non-goal (spec.md §1, SPEC_FULL.md
// §D). It is kept only so the binder sees a complete, well-formed Root.
type ImportDecl struct {
	Path string
	Sp   util.Span
}

func (n *ImportDecl) Span() util.Span { return n.Sp }
func (*ImportDecl) topLevelNode()     {}

// ----------------------------
// ----- Statement family -----
// ----------------------------

// Stmt is the sealed family of statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// Block is a brace-delimited sequence of statements, with an optional
// trailing result expression (spec.md §4.2's Block grammar: a non-trailing
// expression without ';' is an error, trailing-without-';' is the block's
// result).
type Block struct {
	Stmts  []Stmt
	Result Expr // nil if the block has no trailing result expression.
	Sp     util.Span
}

func (n *Block) Span() util.Span { return n.Sp }
func (*Block) stmtNode()         {}

// VarDecl declares a local variable, with an optional initializer.
type VarDecl struct {
	Name string
	Type TypeExpr
	Init Expr // nil if uninitialized.
	Sp   util.Span
}

func (n *VarDecl) Span() util.Span { return n.Sp }
func (*VarDecl) stmtNode()         {}

// Assign assigns the value of Value to the variable named Target.
type Assign struct {
	Target string
	Value  Expr
	Sp     util.Span
}

func (n *Assign) Span() util.Span { return n.Sp }
func (*Assign) stmtNode()         {}

// Return returns from the enclosing function, optionally with a value.
type Return struct {
	Value Expr // nil for a bare "return;"
	Sp    util.Span
}

func (n *Return) Span() util.Span { return n.Sp }
func (*Return) stmtNode()         {}

// If is a conditional statement (as opposed to IfExpr, the
// expression-producing form used in expression position).
type If struct {
	Cond Expr
	Then *Block
	Else *Block // may itself wrap a single nested If via Stmts; nil if no else.
	Sp   util.Span
}

func (n *If) Span() util.Span { return n.Sp }
func (*If) stmtNode()         {}

// While is a pre-tested loop.
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

// ExprStmt wraps an expression used as a statement. Per spec.md §9, a call
// that is also used as a statement is modeled as ExprStmt(Call), not as a
// node that is simultaneously an expression and a statement.
type ExprStmt struct {
	X  Expr
	Sp util.Span
}

func (n *ExprStmt) Span() util.Span { return n.Sp }
func (*ExprStmt) stmtNode()         {}

// -----------------------------
// ----- Expression family -----
// -----------------------------

// Expr is the sealed family of expression variants.
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Sp    util.Span
}

func (n *IntLit) Span() util.Span { return n.Sp }
func (*IntLit) exprNode()         {}

// FloatLit is a floating point literal.
type FloatLit struct {
	Value float64
	Sp    util.Span
}

func (n *FloatLit) Span() util.Span { return n.Sp }
func (*FloatLit) exprNode()         {}

// StringLit is a string literal, with escapes already decoded by the lexer.
type StringLit struct {
	Value string
	Sp    util.Span
}

func (n *StringLit) Span() util.Span { return n.Sp }
func (*StringLit) exprNode()         {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Sp    util.Span
}

func (n *BoolLit) Span() util.Span { return n.Sp }
func (*BoolLit) exprNode()         {}

// IdRef is a reference to a named variable, parameter, or enum tag.
type IdRef struct {
	Name string
	Sp   util.Span
}

func (n *IdRef) Span() util.Span { return n.Sp }
func (*IdRef) exprNode()         {}

// EnumTagRef is the "EnumName::Tag" qualified-access form (SPEC_FULL.md
// §C.4), evaluating to the tag's underlying Int value.
type EnumTagRef struct {
	EnumName string
	Tag      string
	Sp       util.Span
}

func (n *EnumTagRef) Span() util.Span { return n.Sp }
func (*EnumTagRef) exprNode()         {}

// BinOp is a binary operator expression. Op holds the token kind of the
// operator (e.g. token.PLUS), kept as an int here so ast does not import
// token; parser.go sets it directly from token.Kind.
type BinOp struct {
	Op    int
	Left  Expr
	Right Expr
	Sp    util.Span
}

func (n *BinOp) Span() util.Span { return n.Sp }
func (*BinOp) exprNode()         {}

// UnaryOp is a unary prefix operator expression: - ! * &
type UnaryOp struct {
	Op int
	X  Expr
	Sp util.Span
}

func (n *UnaryOp) Span() util.Span { return n.Sp }
func (*UnaryOp) exprNode()         {}

// Arg is a single call argument, optionally named (SPEC_FULL.md §C.2).
type Arg struct {
	Name  string // "" if positional.
	Value Expr
}

// Call is a function call expression.
type Call struct {
	Callee string
	Args   []Arg
	Sp     util.Span
}

func (n *Call) Span() util.Span { return n.Sp }
func (*Call) exprNode()         {}

// ArrayLit is an array literal.
type ArrayLit struct {
	Elems []Expr
	Sp    util.Span
}

func (n *ArrayLit) Span() util.Span { return n.Sp }
func (*ArrayLit) exprNode()         {}

// FieldAccess is a record field access expression.
type FieldAccess struct {
	X     Expr
	Field string
	Sp    util.Span
}

func (n *FieldAccess) Span() util.Span { return n.Sp }
func (*FieldAccess) exprNode()         {}

// StructLitField is a single field initializer inside a StructLit
// (SPEC_FULL.md §C.1).
type StructLitField struct {
	Name  string
	Value Expr
}

// StructLit is a "Name { field: expr, ... }" construction expression
// (SPEC_FULL.md §C.1). The binder requires every field to be initialized
// exactly once; field order need not match the declaration order.
type StructLit struct {
	TypeName string
	Fields   []StructLitField
	Sp       util.Span
}

func (n *StructLit) Span() util.Span { return n.Sp }
func (*StructLit) exprNode()         {}

// IfExpr is the expression-producing form of If, used where a value is
// required (e.g. as a block's trailing result, spec.md §4.2).
type IfExpr struct {
	Cond Expr
	Then *Block
	Else *Block // nil means the expression's type is void.
	Sp   util.Span
}

func (n *IfExpr) Span() util.Span { return n.Sp }
func (*IfExpr) exprNode()         {}

// -----------------------
// ----- Type family -----
// -----------------------

// TypeExpr is the sealed family of type-syntax variants.
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType references a type by name (a builtin, record, or enum name).
type NamedType struct {
	Name string
	Sp   util.Span
}

func (n *NamedType) Span() util.Span { return n.Sp }
func (*NamedType) typeNode()         {}

// PointerTo is "*T".
type PointerTo struct {
	Elem TypeExpr
	Sp   util.Span
}

func (n *PointerTo) Span() util.Span { return n.Sp }
func (*PointerTo) typeNode()         {}

// ReferenceTo is "&T".
type ReferenceTo struct {
	Elem TypeExpr
	Sp   util.Span
}

func (n *ReferenceTo) Span() util.Span { return n.Sp }
func (*ReferenceTo) typeNode()         {}

// ArrayOf is "[Size]T".
type ArrayOf struct {
	Size Expr
	Elem TypeExpr
	Sp   util.Span
}

func (n *ArrayOf) Span() util.Span { return n.Sp }
func (*ArrayOf) typeNode()         {}

// Varargs marks a trailing "..." parameter.
type Varargs struct {
	Sp util.Span
}

func (n *Varargs) Span() util.Span { return n.Sp }
func (*Varargs) typeNode()         {}
