package nn

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// CanonicalName converts a Go type name to the snake_case layer name used as a registry key.
//
// Package qualifiers, pointer markers and generic arguments are dropped.
// An underscore starts every word: an upper-case letter after a lower-case one,
// or the last letter of an acronym followed by a lower-case letter. Digits never
// start a word, so "Conv2D" stays "conv2d".
//
//	LayerNorm          -> layer_norm
//	Conv2D             -> conv2d
//	RMSNorm            -> rms_norm
//	*nn.Linear         -> linear
//	Wrapper[float32]   -> wrapper
func CanonicalName(typeName string) string {
	name := strings.TrimLeft(typeName, "*")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// TypeName returns the canonical name of a layer's concrete type.
func TypeName(l Layer) string {
	return TypeNameOf(reflect.TypeOf(l))
}

// TypeNameOf returns the canonical name of a layer type.
// Pointer types are dereferenced.
func TypeNameOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return CanonicalName(t.Name())
}

// NamedParameter pairs a parameter with its model-unique name.
type NamedParameter struct {
	Name  string
	Layer string // Unique layer name, e.g. "linear_0"
	Param *Parameter
}

// NamedParameters walks the model depth-first and names every parameter.
//
// Each layer that owns parameters gets a unique name "<type>_<k>", numbered per
// type in visiting order, and each parameter is named "<layer>.<param>":
//
//	model := nn.NewSequential(nn.NewLinear(4, 8), nn.NewLinear(8, 2))
//	nn.NamedParameters(model) // linear_0.weight, linear_0.bias, linear_1.weight, linear_1.bias
func NamedParameters(root Layer) []NamedParameter {
	var out []NamedParameter
	counters := make(map[string]int)

	var walk func(l Layer)
	walk = func(l Layer) {
		if l == nil {
			return
		}
		if params := l.Parameters(); len(params) > 0 {
			typ := TypeName(l)
			layerName := typ + "_" + strconv.Itoa(counters[typ])
			counters[typ]++
			for _, p := range params {
				out = append(out, NamedParameter{
					Name:  layerName + "." + p.Name(),
					Layer: layerName,
					Param: p,
				})
			}
		}
		if c, ok := l.(Container); ok {
			for _, child := range c.Children() {
				walk(child)
			}
		}
	}
	walk(root)

	return out
}

// AllParameters returns every parameter of the model in NamedParameters order.
func AllParameters(root Layer) []*Parameter {
	named := NamedParameters(root)
	params := make([]*Parameter, len(named))
	for i, np := range named {
		params[i] = np.Param
	}
	return params
}

// SplitParamName splits "linear_0.weight" into its layer name and local name.
// Names without a dot return an empty local name.
func SplitParamName(name string) (layer, local string) {
	layer, local, _ = strings.Cut(name, ".")
	return layer, local
}

// LayerTypeOf strips the trailing "_<k>" counter from a unique layer name.
// "linear_0" becomes "linear"; names without an underscore are returned unchanged.
func LayerTypeOf(layerName string) string {
	i := strings.LastIndexByte(layerName, '_')
	if i < 0 {
		return layerName
	}
	return layerName[:i]
}

// String implements fmt.Stringer.
func (np NamedParameter) String() string {
	return fmt.Sprintf("%s%v", np.Name, np.Param.Tensor().Shape())
}
