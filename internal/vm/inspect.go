package vm

import (
	"strings"

	"dbc/internal/source"
)

// display is the natural string form: toString() when the class has one,
// else Class{field=value, ...} in declaration order. Arrays render as
// [a, b]. Cycles render as Class{...}.
func (vm *VM) display(v Value, span source.Span) (string, error) {
	return vm.displayIn(v, span, make(map[any]bool))
}

func (vm *VM) displayIn(v Value, span source.Span, visiting map[any]bool) (string, error) {
	switch v.Kind {
	case VKArray:
		if visiting[v.Arr] {
			return "[...]", nil
		}
		visiting[v.Arr] = true
		defer delete(visiting, v.Arr)
		n := v.Arr.Len()
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			s, err := vm.displayIn(v.Arr.get(i), span, visiting)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case VKObject:
		if m := vm.findMethod(v.Obj.Class, "toString"); m != nil && len(m.Params) == 0 && !m.Static {
			r, err := vm.invoke(m, v, nil, span)
			if err != nil {
				return "", err
			}
			if r.Kind != VKString {
				return "", vm.typeMismatch(span, "String", r)
			}
			return r.Str, nil
		}
		return vm.natural(v.Obj, span, visiting)
	}
	return v.debug(), nil
}

func (vm *VM) natural(o *Object, span source.Span, visiting map[any]bool) (string, error) {
	if visiting[o] {
		return o.Class.Name + "{...}", nil
	}
	visiting[o] = true
	defer delete(visiting, o)
	var sb strings.Builder
	sb.WriteString(o.Class.Name)
	sb.WriteByte('{')
	for i, name := range o.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		fv, _ := o.Field(name)
		s, err := vm.displayIn(fv, span, visiting)
		if err != nil {
			return "", err
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(s)
	}
	sb.WriteByte('}')
	return sb.String(), nil
}
