package ir

import (
	"dbc/internal/source"
)

// TypeKind classifies a TypeRef.
type TypeKind uint8

const (
	TInvalid TypeKind = iota
	TVoid
	TBool
	TInt
	TString
	TObject   // top type, accepts every value
	TFunction // lambdas
	TClass    // class or interface by name
	TArray
)

// TypeRef is a declared type as written in source.
type TypeRef struct {
	Kind TypeKind
	Name string   // TClass only
	Elem *TypeRef // TArray only
	Span source.Span
}

func VoidType() TypeRef   { return TypeRef{Kind: TVoid} }
func BoolType() TypeRef   { return TypeRef{Kind: TBool} }
func IntType() TypeRef    { return TypeRef{Kind: TInt} }
func StringType() TypeRef { return TypeRef{Kind: TString} }
func ObjectType() TypeRef { return TypeRef{Kind: TObject} }

// ClassType names a class or interface.
func ClassType(name string) TypeRef { return TypeRef{Kind: TClass, Name: name} }

// ArrayOf builds elem[].
func ArrayOf(elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: TArray, Elem: &e}
}

// ExceptionType is the type of the synthetic raises binding.
func ExceptionType() TypeRef { return ClassType("Exception") }

func (t TypeRef) IsVoid() bool { return t.Kind == TVoid }
func (t TypeRef) IsBool() bool { return t.Kind == TBool }

// IsPrimitive reports value types whose zero value is not null.
func (t TypeRef) IsPrimitive() bool {
	return t.Kind == TBool || t.Kind == TInt
}

// Equal compares structurally, ignoring spans.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TClass:
		return t.Name == o.Name
	case TArray:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	}
	return true
}

func (t TypeRef) String() string {
	switch t.Kind {
	case TVoid:
		return "void"
	case TBool:
		return "boolean"
	case TInt:
		return "int"
	case TString:
		return "String"
	case TObject:
		return "Object"
	case TFunction:
		return "Function"
	case TClass:
		return t.Name
	case TArray:
		if t.Elem == nil {
			return "?[]"
		}
		return t.Elem.String() + "[]"
	}
	return "<invalid>"
}

// BuiltinType maps a builtin type name to its TypeRef.
func BuiltinType(name string) (TypeRef, bool) {
	switch name {
	case "boolean":
		return BoolType(), true
	case "int":
		return IntType(), true
	case "String":
		return StringType(), true
	case "Object":
		return ObjectType(), true
	case "Function":
		return TypeRef{Kind: TFunction}, true
	}
	return TypeRef{}, false
}
