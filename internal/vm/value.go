// Package vm executes instrumented programs by walking their IR.
package vm

import (
	"strconv"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	VKInvalid ValueKind = iota
	VKVoid
	VKNull
	VKInt
	VKBool
	VKString
	VKObject
	VKArray
	VKFunc
)

func (k ValueKind) String() string {
	switch k {
	case VKVoid:
		return "void"
	case VKNull:
		return "null"
	case VKInt:
		return "int"
	case VKBool:
		return "boolean"
	case VKString:
		return "String"
	case VKObject:
		return "object"
	case VKArray:
		return "array"
	case VKFunc:
		return "Function"
	}
	return "invalid"
}

// Value is a runtime value. Exactly one payload field is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
	Obj  *Object
	Arr  *Array
	Fn   *Closure
}

func VoidValue() Value            { return Value{Kind: VKVoid} }
func NullValue() Value            { return Value{Kind: VKNull} }
func IntValue(n int64) Value      { return Value{Kind: VKInt, Int: n} }
func BoolValue(b bool) Value      { return Value{Kind: VKBool, Bool: b} }
func StringValue(s string) Value  { return Value{Kind: VKString, Str: s} }
func ObjectValue(o *Object) Value { return Value{Kind: VKObject, Obj: o} }
func ArrayValue(a *Array) Value   { return Value{Kind: VKArray, Arr: a} }
func FuncValue(c *Closure) Value  { return Value{Kind: VKFunc, Fn: c} }
func (v Value) IsNull() bool      { return v.Kind == VKNull }
func (v Value) IsRef() bool       { return v.Kind >= VKObject }
func (v Value) ClassName() string { return v.className() }
func (v Value) String() string    { return v.debug() }

func (v Value) className() string {
	if v.Kind == VKObject && v.Obj != nil {
		return v.Obj.Class.Name
	}
	return v.Kind.String()
}

// debug renders v without running user code.
func (v Value) debug() string {
	switch v.Kind {
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKBool:
		return strconv.FormatBool(v.Bool)
	case VKString:
		return v.Str
	case VKNull:
		return "null"
	case VKVoid:
		return "void"
	case VKObject:
		return v.Obj.Class.Name + "@" + strconv.FormatUint(v.Obj.id, 10)
	case VKArray:
		return v.Arr.Elem.String() + "[" + strconv.Itoa(len(v.Arr.Values)) + "]"
	case VKFunc:
		return "<lambda>"
	}
	return "<invalid>"
}

// Equal is the == operator: primitives and strings by value, references
// by identity.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VKNull, VKVoid:
		return true
	case VKInt:
		return a.Int == b.Int
	case VKBool:
		return a.Bool == b.Bool
	case VKString:
		return a.Str == b.Str
	case VKObject:
		return a.Obj == b.Obj
	case VKArray:
		return a.Arr == b.Arr
	case VKFunc:
		return a.Fn == b.Fn
	}
	return false
}
