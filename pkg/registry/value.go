package registry

import "fmt"

// Kind is the runtime type tag of a property value.
type Kind int

const (
	KindBytes Kind = iota
	KindInt
	KindDouble
	KindString
	KindBool
	KindDict
	KindArray
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "data"
	case KindInt:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindDict:
		return "dictionary"
	case KindArray:
		return "array"
	default:
		return "opaque"
	}
}

// Value is a decoded registry property. The concrete types below are the only
// implementations, so a type switch over them is exhaustive.
type Value interface {
	Kind() Kind
}

// Bytes may alias memory owned by the property it came from. It is only valid
// until that property is released.
type Bytes []byte

type Int int64

type Double float64

type String string

type Bool bool

type Dict map[string]Value

type Array []Value

// Opaque stands in for types the probe never decodes (dates, sets, ...).
type Opaque struct {
	TypeName string
}

func (Bytes) Kind() Kind  { return KindBytes }
func (Int) Kind() Kind    { return KindInt }
func (Double) Kind() Kind { return KindDouble }
func (String) Kind() Kind { return KindString }
func (Bool) Kind() Kind   { return KindBool }
func (Dict) Kind() Kind   { return KindDict }
func (Array) Kind() Kind  { return KindArray }
func (Opaque) Kind() Kind { return KindOpaque }

func (o Opaque) String() string {
	return fmt.Sprintf("<%s>", o.TypeName)
}
