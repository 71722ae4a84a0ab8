package asp

import (
	"fmt"
	"reflect"

	"github.com/born-ml/asp/internal/nn"
)

type refKind int

const (
	refInvalid refKind = iota
	refName
	refLayer
	refType
)

var layerInterface = reflect.TypeFor[nn.Layer]()

// LayerRef identifies a layer type for registration: by canonical name, by a
// layer value, or by a layer type. Build one with LayerName, LayerOf,
// LayerType or LayerTypeOf; the zero value is invalid.
type LayerRef struct {
	kind  refKind
	name  string
	layer nn.Layer
	typ   reflect.Type
}

// LayerName refers to a layer type by its canonical name (e.g. "linear").
// The name is used verbatim.
func LayerName(name string) LayerRef {
	return LayerRef{kind: refName, name: name}
}

// LayerOf refers to the type of a layer value.
func LayerOf(l nn.Layer) LayerRef {
	return LayerRef{kind: refLayer, layer: l}
}

// LayerType refers to a layer type. t, or a pointer to t, must implement nn.Layer.
func LayerType(t reflect.Type) LayerRef {
	return LayerRef{kind: refType, typ: t}
}

// LayerTypeOf refers to the layer type L.
//
//	asp.LayerTypeOf[*nn.LayerNorm]() // "layer_norm"
func LayerTypeOf[L nn.Layer]() LayerRef {
	return LayerType(reflect.TypeFor[L]())
}

// CanonicalName resolves the reference to its registry key.
func (r LayerRef) CanonicalName() (string, error) {
	switch r.kind {
	case refName:
		if r.name == "" {
			return "", fmt.Errorf("%w: empty layer name", ErrInvalidLayer)
		}
		return r.name, nil
	case refLayer:
		if r.layer == nil {
			return "", fmt.Errorf("%w: nil layer", ErrInvalidLayer)
		}
		if v := reflect.ValueOf(r.layer); v.Kind() == reflect.Pointer && v.IsNil() {
			return "", fmt.Errorf("%w: nil layer", ErrInvalidLayer)
		}
		return nn.TypeName(r.layer), nil
	case refType:
		if r.typ == nil {
			return "", fmt.Errorf("%w: nil type", ErrInvalidLayer)
		}
		if !r.typ.Implements(layerInterface) && !reflect.PointerTo(r.typ).Implements(layerInterface) {
			return "", fmt.Errorf("%w: type %s does not implement nn.Layer", ErrInvalidLayer, r.typ)
		}
		name := nn.TypeNameOf(r.typ)
		if name == "" {
			return "", fmt.Errorf("%w: unnamed type %s", ErrInvalidLayer, r.typ)
		}
		return name, nil
	default:
		return "", fmt.Errorf("%w: zero LayerRef", ErrInvalidLayer)
	}
}

// String implements fmt.Stringer.
func (r LayerRef) String() string {
	name, err := r.CanonicalName()
	if err != nil {
		return "<invalid layer>"
	}
	return name
}
