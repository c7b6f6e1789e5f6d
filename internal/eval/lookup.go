package eval

import (
	"fmt"

	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// KeyText renders a value the way it is written as a lookup key or an
// index component: strings verbatim, numbers in their shortest exact
// decimal form.
func KeyText(v cty.Value) string {
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return v.GoString()
}

// indexContainer performs one lookup step on a container value. Objects
// and maps are addressed by key text, lists and tuples by position.
func indexContainer(container, key cty.Value, containerDesc string) (cty.Value, error) {
	t := container.Type()
	switch {
	case t.IsObjectType():
		name := KeyText(key)
		if !t.HasAttribute(name) {
			return cty.NilVal, &opterr.KeyNotFoundError{Key: name, Container: containerDesc}
		}
		return container.GetAttr(name), nil

	case t.IsMapType():
		name := KeyText(key)
		idx := cty.StringVal(name)
		if !container.HasIndex(idx).True() {
			return cty.NilVal, &opterr.KeyNotFoundError{Key: name, Container: containerDesc}
		}
		return container.Index(idx), nil

	case t.IsListType(), t.IsTupleType():
		if key.Type() != cty.Number {
			return cty.NilVal, &opterr.KeyNotFoundError{Key: KeyText(key), Container: containerDesc}
		}
		if !container.HasIndex(key).True() {
			return cty.NilVal, &opterr.KeyNotFoundError{Key: KeyText(key), Container: containerDesc}
		}
		return container.Index(key), nil
	}
	return cty.NilVal, fmt.Errorf("%s is a %s and cannot be indexed", containerDesc, t.FriendlyName())
}
