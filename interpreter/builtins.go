package interpreter

import (
	"fmt"
	"lyra/ast"
	"math"
	"strconv"
	"strings"
)

// builtinFunc is the shape of every built-in callable. call carries the
// call-site token (for fault locations); args are the already-evaluated
// argument values.
type builtinFunc func(i *TreeWalkInterpreter, call ast.Call, args []any) any

// builtins is the fixed built-in function namespace. It is consulted before
// user-defined bindings, so these names cannot be shadowed by proc/fn
// declarations or variables.
var builtins = map[string]builtinFunc{
	"len":          builtinLength,
	"length":       builtinLength,
	"input":        builtinInput,
	"int":          builtinInt,
	"float":        builtinFloat,
	"string":       builtinString,
	"str":          builtinString,
	"toString":     builtinString,
	"substring":    builtinSubstring,
	"toUpperCase":  builtinToUpperCase,
	"toLowerCase":  builtinToLowerCase,
	"startsWith":   builtinStartsWith,
	"endsWith":     builtinEndsWith,
	"contains":     builtinContains,
	"indexOf":      builtinIndexOf,
	"split":        builtinSplit,
	"join":         builtinJoin,
	"abs":          builtinAbs,
	"floor":        builtinFloor,
	"ceil":         builtinCeil,
	"round":        builtinRound,
	"sqrt":         builtinSqrt,
	"pow":          builtinPow,
	"min":          builtinMin,
	"max":          builtinMax,
}

func arityFault(i *TreeWalkInterpreter, call ast.Call, name string, want, got int) {
	msg := fmt.Sprintf("ArityFault: '%s' expects %d argument(s), got %d", name, want, got)
	panic(CreateRuntimeError(call.Paren.Line, call.Paren.Column, msg))
}

func typeFault(call ast.Call, msg string) {
	panic(CreateRuntimeError(call.Paren.Line, call.Paren.Column, "TypeFault: "+msg))
}

func argNumber(call ast.Call, args []any, idx int) float64 {
	v, err := literalToFloat64(args[idx])
	if err != nil {
		typeFault(call, fmt.Sprintf("expected a numeric argument at position %d, got %v", idx, args[idx]))
	}
	return v
}

func argString(call ast.Call, args []any, idx int) string {
	s, ok := args[idx].(string)
	if !ok {
		typeFault(call, fmt.Sprintf("expected a string argument at position %d, got %v", idx, args[idx]))
	}
	return s
}

func builtinLength(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "len", 1, len(args))
	}
	switch v := args[0].(type) {
	case *Array:
		return float64(len(v.Elements))
	case string:
		return float64(len([]rune(v)))
	default:
		typeFault(call, fmt.Sprintf("'%v' has no length", args[0]))
		return nil
	}
}

func builtinInput(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	line, err := i.stdin.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		msg := "IOFault: no more input available"
		panic(CreateRuntimeError(call.Paren.Line, call.Paren.Column, msg))
	}
	return line
}

func builtinInt(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "int", 1, len(args))
	}
	switch v := args[0].(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			typeFault(call, fmt.Sprintf("cannot convert %q to int", v))
		}
		return math.Trunc(f)
	default:
		return math.Trunc(argNumber(call, args, 0))
	}
}

func builtinFloat(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "float", 1, len(args))
	}
	if s, ok := args[0].(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			typeFault(call, fmt.Sprintf("cannot convert %q to float", s))
		}
		return f
	}
	return argNumber(call, args, 0)
}

func builtinString(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "string", 1, len(args))
	}
	return stringifyValue(args[0])
}

func builtinSubstring(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 && len(args) != 3 {
		arityFault(i, call, "substring", 2, len(args))
	}
	s := []rune(argString(call, args, 0))
	start := int(argNumber(call, args, 1))
	end := len(s)
	if len(args) == 3 {
		end = int(argNumber(call, args, 2))
	}
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		start = end
	}
	return string(s[start:end])
}

func builtinToUpperCase(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "toUpperCase", 1, len(args))
	}
	return strings.ToUpper(argString(call, args, 0))
}

func builtinToLowerCase(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "toLowerCase", 1, len(args))
	}
	return strings.ToLower(argString(call, args, 0))
}

func builtinStartsWith(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "startsWith", 2, len(args))
	}
	return strings.HasPrefix(argString(call, args, 0), argString(call, args, 1))
}

func builtinEndsWith(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "endsWith", 2, len(args))
	}
	return strings.HasSuffix(argString(call, args, 0), argString(call, args, 1))
}

func builtinContains(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "contains", 2, len(args))
	}
	return strings.Contains(argString(call, args, 0), argString(call, args, 1))
}

func builtinIndexOf(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "indexOf", 2, len(args))
	}
	return float64(strings.Index(argString(call, args, 0), argString(call, args, 1)))
}

func builtinSplit(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "split", 2, len(args))
	}
	parts := strings.Split(argString(call, args, 0), argString(call, args, 1))
	elements := make([]any, 0, len(parts))
	for _, p := range parts {
		elements = append(elements, p)
	}
	return &Array{Elements: elements}
}

func builtinJoin(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "join", 2, len(args))
	}
	array, ok := args[0].(*Array)
	if !ok {
		typeFault(call, fmt.Sprintf("join expects an array, got %v", args[0]))
	}
	sep := argString(call, args, 1)
	parts := make([]string, 0, len(array.Elements))
	for _, el := range array.Elements {
		parts = append(parts, stringifyValue(el))
	}
	return strings.Join(parts, sep)
}

func builtinAbs(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "abs", 1, len(args))
	}
	return math.Abs(argNumber(call, args, 0))
}

func builtinFloor(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "floor", 1, len(args))
	}
	return math.Floor(argNumber(call, args, 0))
}

func builtinCeil(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "ceil", 1, len(args))
	}
	return math.Ceil(argNumber(call, args, 0))
}

func builtinRound(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "round", 1, len(args))
	}
	return math.Round(argNumber(call, args, 0))
}

func builtinSqrt(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 1 {
		arityFault(i, call, "sqrt", 1, len(args))
	}
	v := argNumber(call, args, 0)
	if v < 0 {
		return 0.0
	}
	return math.Sqrt(v)
}

func builtinPow(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "pow", 2, len(args))
	}
	return math.Pow(argNumber(call, args, 0), argNumber(call, args, 1))
}

func builtinMin(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "min", 2, len(args))
	}
	return math.Min(argNumber(call, args, 0), argNumber(call, args, 1))
}

func builtinMax(i *TreeWalkInterpreter, call ast.Call, args []any) any {
	if len(args) != 2 {
		arityFault(i, call, "max", 2, len(args))
	}
	return math.Max(argNumber(call, args, 0), argNumber(call, args, 1))
}
