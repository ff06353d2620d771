// types.go implements the closed Type algebra of spec.md §3.4. Grounded on
// the teacher's ir/symtab.go (which only distinguished DataInteger and
// DataFloat); generalized substantially to the full algebra this spec
// needs: Void, Bool, Int(64), Float(64), Pointer, Array, Record, Enum.

package types

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind differentiates the members of the Type algebra.
type Kind int

const (
	KVoid Kind = iota
	KBool
	KInt
	KFloat
	KPointer
	KArray
	KRecord
	KEnum
)

// Field is a single named, typed record field.
type Field struct {
	Name string
	Type *Type
}

// Type is a member of the closed algebra:
//
//	Type ::= Void | Bool | Int(64) | Float(64)
//	       | Pointer(Type) | Array(Type, size)
//	       | Record(name, [(field, Type)])
//	       | Enum(name, [tag])
type Type struct {
	Kind   Kind
	Elem   *Type    // Pointer/Array element type.
	Size   int      // Array size.
	Name   string   // Record/Enum nominal name.
	Fields []Field  // Record fields, in declaration order.
	Tags   []string // Enum tags, in declaration order (0-indexed).
}

// ---------------------
// ----- Constants -----
// ---------------------

// Built-in, pre-declared global-scope types.
var (
	Void  = &Type{Kind: KVoid}
	Bool  = &Type{Kind: KBool}
	Int   = &Type{Kind: KInt}
	Float = &Type{Kind: KFloat}
)

// ---------------------
// ----- functions -----
// ---------------------

// Pointer returns the Pointer(elem) type.
func Pointer(elem *Type) *Type {
	return &Type{Kind: KPointer, Elem: elem}
}

// Array returns the Array(elem, size) type.
func Array(elem *Type, size int) *Type {
	return &Type{Kind: KArray, Elem: elem, Size: size}
}

// Record returns a named Record type with the given fields.
func Record(name string, fields []Field) *Type {
	return &Type{Kind: KRecord, Name: name, Fields: fields}
}

// Enum returns a named Enum type with the given tags.
func Enum(name string, tags []string) *Type {
	return &Type{Kind: KEnum, Name: name, Tags: tags}
}

// TagIndex returns the 0-indexed ordinal of tag within an Enum type, and
// whether it was found.
func (t *Type) TagIndex(tag string) (int, bool) {
	if t.Kind != KEnum {
		return -1, false
	}
	for i1, tg := range t.Tags {
		if tg == tag {
			return i1, true
		}
	}
	return -1, false
}

// Field looks up a Record field by name.
func (t *Type) Field(name string) (Field, bool) {
	if t.Kind != KRecord {
		return Field{}, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsNumeric reports whether t is Int or Float.
func (t *Type) IsNumeric() bool {
	return t.Kind == KInt || t.Kind == KFloat
}

// IsReferenceLike reports whether t is Pointer or Record: values of these
// types are passed by handle at call sites, per spec.md §3.4.
func (t *Type) IsReferenceLike() bool {
	return t.Kind == KPointer || t.Kind == KRecord
}

// Equal implements the equality rule of spec.md §3.4: structural equality
// for primitives, pointers, and arrays; nominal equality (by name) for
// records and enums.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KVoid, KBool, KInt, KFloat:
		return true
	case KPointer:
		return Equal(a.Elem, b.Elem)
	case KArray:
		return a.Size == b.Size && Equal(a.Elem, b.Elem)
	case KRecord, KEnum:
		return a.Name == b.Name
	default:
		return false
	}
}

// ConvertibleTo implements the convertibility rule of spec.md §4.3:
// from -> to holds iff (a) same kind and identity, or (b) Int -> Float.
// Pointer types are nominal over their pointee (i.e. structurally equal,
// since pointee equality already recurses through Equal).
func ConvertibleTo(from, to *Type) bool {
	if Equal(from, to) {
		return true
	}
	return from != nil && to != nil && from.Kind == KInt && to.Kind == KFloat
}

// Promote returns the promoted type of mixing two numeric operands: if
// either operand is Float the result is Float, otherwise Int. Promote must
// only be called when both a and b are numeric.
func Promote(a, b *Type) *Type {
	if a.Kind == KFloat || b.Kind == KFloat {
		return Float
	}
	return Int
}

// String returns a print-friendly name for the Type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KVoid:
		return "Void"
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KPointer:
		return "*" + t.Elem.String()
	case KArray:
		return fmt.Sprintf("[%d]%s", t.Size, t.Elem.String())
	case KRecord:
		return t.Name
	case KEnum:
		return t.Name
	default:
		return "?"
	}
}

// Signature returns a print-friendly function signature for diagnostics.
func Signature(name string, params []*Type, ret *Type) string {
	parts := make([]string, len(params))
	for i1, p := range params {
		parts[i1] = p.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", name, strings.Join(parts, ", "), ret.String())
}
