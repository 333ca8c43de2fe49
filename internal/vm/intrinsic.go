package vm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dbc/internal/prelude"
	"dbc/internal/source"
)

// globalIntrinsic handles calls that no class declares: print and println.
func (vm *VM) globalIntrinsic(name string, args []Value, span source.Span) (Value, bool, error) {
	switch name {
	case "print", "println":
	default:
		return Value{}, false, nil
	}
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := vm.display(a, span)
		if err != nil {
			return Value{}, true, err
		}
		parts[i] = s
	}
	out := strings.Join(parts, " ")
	if name == "println" {
		out += "\n"
	}
	if _, err := fmt.Fprint(vm.rt.opts.Out, out); err != nil {
		return Value{}, true, err
	}
	return VoidValue(), true, nil
}

// objectMethod is what every object understands without declaring it.
func (vm *VM) objectMethod(recv Value, name string, args []Value, span source.Span) (Value, error) {
	switch {
	case name == "toString" && len(args) == 0:
		s, err := vm.natural(recv.Obj, span, make(map[any]bool))
		return StringValue(s), err
	case name == "equals" && len(args) == 1:
		return BoolValue(Equal(recv, args[0])), nil
	case name == "hashCode" && len(args) == 0:
		return IntValue(int64(recv.Obj.id)), nil
	}
	return Value{}, vm.fail(PanicUnknownMethod, span, "%s has no method %s", recv.className(), name)
}

func (vm *VM) stringMethod(s, name string, args []Value, span source.Span) (Value, error) {
	argInt := func(i int) (int64, error) {
		if args[i].Kind != VKInt {
			return 0, vm.typeMismatch(span, "int", args[i])
		}
		return args[i].Int, nil
	}
	argStr := func(i int) (string, error) {
		if args[i].Kind != VKString {
			return "", vm.typeMismatch(span, "String", args[i])
		}
		return args[i].Str, nil
	}
	runes := func() []rune { return []rune(s) }

	switch {
	case name == "length" && len(args) == 0:
		return IntValue(int64(utf8.RuneCountInString(s))), nil
	case name == "isEmpty" && len(args) == 0:
		return BoolValue(s == ""), nil
	case name == "toString" && len(args) == 0:
		return StringValue(s), nil
	case name == "equals" && len(args) == 1:
		return BoolValue(args[0].Kind == VKString && args[0].Str == s), nil
	case name == "contains" && len(args) == 1:
		sub, err := argStr(0)
		return BoolValue(strings.Contains(s, sub)), err
	case name == "startsWith" && len(args) == 1:
		sub, err := argStr(0)
		return BoolValue(strings.HasPrefix(s, sub)), err
	case name == "indexOf" && len(args) == 1:
		sub, err := argStr(0)
		if err != nil {
			return Value{}, err
		}
		i := strings.Index(s, sub)
		if i < 0 {
			return IntValue(-1), nil
		}
		return IntValue(int64(utf8.RuneCountInString(s[:i]))), nil
	case name == "charAt" && len(args) == 1:
		i, err := argInt(0)
		if err != nil {
			return Value{}, err
		}
		rs := runes()
		if i < 0 || i >= int64(len(rs)) {
			return Value{}, vm.throwNew(prelude.IndexOutOfBoundsException, fmt.Sprintf("index %d out of bounds for length %d", i, len(rs)), span)
		}
		return StringValue(string(rs[i])), nil
	case name == "substring" && (len(args) == 1 || len(args) == 2):
		rs := runes()
		from, err := argInt(0)
		if err != nil {
			return Value{}, err
		}
		to := int64(len(rs))
		if len(args) == 2 {
			if to, err = argInt(1); err != nil {
				return Value{}, err
			}
		}
		if from < 0 || to > int64(len(rs)) || from > to {
			return Value{}, vm.throwNew(prelude.IndexOutOfBoundsException, fmt.Sprintf("range [%d, %d) out of bounds for length %d", from, to, len(rs)), span)
		}
		return StringValue(string(rs[from:to])), nil
	}
	return Value{}, vm.fail(PanicUnknownMethod, span, "String has no method %s", name)
}
