package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Static types
// ---------------------------------------------------------------------------

// Type is the closed set of static types in the core language. Types are
// values compared by equality; there is no subtyping.
type Type int

const (
	// TypeUnknown is the error sentinel assigned to expressions that failed
	// to check. It never appears in a program accepted for emission.
	TypeUnknown Type = iota

	TypeInt
	TypeFloat
	TypeBool
	TypeString

	// TypeUnit is the type of expressions that produce no value, such as
	// assignments.
	TypeUnit
)

var typeNames = map[Type]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeString:  "string",
	TypeUnit:    "unit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsNumeric returns true for int and float.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// IsValue returns true for types whose expressions produce a runtime
// value. Unit and Unknown expressions leave nothing to operate on.
func (t Type) IsValue() bool {
	switch t {
	case TypeInt, TypeFloat, TypeBool, TypeString:
		return true
	}
	return false
}

// TypeFromName maps a type annotation keyword to its Type.
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "float":
		return TypeFloat, true
	case "bool":
		return TypeBool, true
	case "string":
		return TypeString, true
	}
	return TypeUnknown, false
}
