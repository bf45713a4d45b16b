/*
 * Copyright 2025 The EventFlux Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package record implements the tagged value universe and the two record
// shapes (StreamEvent, StateEvent) that flow through the runtime.
package record

import (
	"fmt"
	"math"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindObject
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt32:
		return "INT"
	case KindInt64:
		return "LONG"
	case KindFloat32:
		return "FLOAT"
	case KindFloat64:
		return "DOUBLE"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindObject:
		return "OBJECT"
	case KindStruct:
		return "STRUCT"
	default:
		return "UNKNOWN"
	}
}

// numericRank implements INT ⊆ LONG ⊆ FLOAT ⊆ DOUBLE widening order.
func (k Kind) numericRank() int {
	switch k {
	case KindInt32:
		return 0
	case KindInt64:
		return 1
	case KindFloat32:
		return 2
	case KindFloat64:
		return 3
	default:
		return -1
	}
}

func (k Kind) isNumeric() bool { return k.numericRank() >= 0 }

// Field is one named slot of a Struct value.
type Field struct {
	Name  string
	Value Value
}

// Value is a tagged union over the runtime's value universe (§3.1).
// The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	bytes  []byte
	obj    interface{}
	fields []Field
}

func Null() Value                  { return Value{kind: KindNull} }
func Bool(v bool) Value            { return Value{kind: KindBool, b: v} }
func Int32(v int32) Value          { return Value{kind: KindInt32, i: int64(v)} }
func Int64(v int64) Value          { return Value{kind: KindInt64, i: v} }
func Float32(v float32) Value      { return Value{kind: KindFloat32, f: float64(v)} }
func Float64(v float64) Value      { return Value{kind: KindFloat64, f: v} }
func String(v string) Value        { return Value{kind: KindString, s: v} }
func Bytes(v []byte) Value         { return Value{kind: KindBytes, bytes: v} }
func Object(v interface{}) Value   { return Value{kind: KindObject, obj: v} }
func Struct(fields []Field) Value  { return Value{kind: KindStruct, fields: fields} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) AsBool() bool  { return v.b }
func (v Value) AsString() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}
func (v Value) AsBytes() []byte       { return v.bytes }
func (v Value) AsObject() interface{} { return v.obj }
func (v Value) AsFields() []Field     { return v.fields }

// AsFloat64 returns the value widened to float64. It returns 0 if the value
// is not numeric, so callers that must tell the two apart check IsNumeric
// first.
func (v Value) AsFloat64() float64 {
	switch v.kind {
	case KindInt32, KindInt64:
		return float64(v.i)
	case KindFloat32, KindFloat64:
		return v.f
	default:
		return 0
	}
}

// AsInt64 returns the value as an int64, truncating floats.
func (v Value) AsInt64() int64 {
	switch v.kind {
	case KindInt32, KindInt64:
		return v.i
	case KindFloat32, KindFloat64:
		return int64(v.f)
	default:
		return 0
	}
}

func (v Value) IsNumeric() bool { return v.kind.isNumeric() }

// Field looks up a named field of a Struct value.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null(), false
}

// WidestNumeric returns the wider of two numeric kinds per INT ⊆ LONG ⊆
// FLOAT ⊆ DOUBLE. Both kinds must be numeric.
func WidestNumeric(a, b Kind) Kind {
	if a.numericRank() >= b.numericRank() {
		return a
	}
	return b
}

// Widen converts v to the target numeric kind.
func Widen(v Value, to Kind) Value {
	switch to {
	case KindInt32:
		return Int32(int32(v.AsInt64()))
	case KindInt64:
		return Int64(v.AsInt64())
	case KindFloat32:
		return Float32(float32(v.AsFloat64()))
	case KindFloat64:
		return Float64(v.AsFloat64())
	default:
		return v
	}
}

// ArithError is returned for arithmetic operations over incompatible kinds.
// The compiler is expected to have already rejected these at plan
// construction time; the runtime only sees this for the escaped cases of
// §7 ("type surprise that escaped inference"), which callers convert to a
// NULL/FALSE result per the expression-error policy.
type ArithError struct {
	Op   string
	Left Kind
	Right Kind
}

func (e *ArithError) Error() string {
	return fmt.Sprintf("invalid operation %s(%s, %s)", e.Op, e.Left, e.Right)
}

// Add implements widened addition per §4.13. String+numeric is an error.
func Add(a, b Value) (Value, error) { return arith("+", a, b) }
func Sub(a, b Value) (Value, error) { return arith("-", a, b) }
func Mul(a, b Value) (Value, error) { return arith("*", a, b) }
func Div(a, b Value) (Value, error) {
	if b.IsNumeric() && b.AsFloat64() == 0 {
		// Division by zero is an expression-runtime error (§7): callers treat
		// the result as NULL in projection, FALSE in WHERE/HAVING/ON.
		return Null(), &ArithError{Op: "/", Left: a.kind, Right: b.kind}
	}
	return arith("/", a, b)
}

func arith(op string, a, b Value) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return Null(), nil
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		if a.kind == KindString && op == "+" {
			// string concatenation is handled by the expression layer, not here.
		}
		return Null(), &ArithError{Op: op, Left: a.kind, Right: b.kind}
	}
	wide := WidestNumeric(a.kind, b.kind)
	x, y := a.AsFloat64(), b.AsFloat64()
	var r float64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/":
		r = x / y
	}
	if wide == KindInt32 || wide == KindInt64 {
		return Widen(Int64(int64(math.Trunc(r))), wide), nil
	}
	return Widen(Float64(r), wide), nil
}

// Equal implements SQL three-valued equality: (result, isKnown). isKnown is
// false whenever either operand is NULL, which callers must treat as
// "unknown" everywhere except the Simple-CASE optimized path (§3.1, §4.12).
func Equal(a, b Value) (result bool, isKnown bool) {
	if a.IsNull() || b.IsNull() {
		return false, false
	}
	return rawEqual(a, b), true
}

// StrictEqual never treats NULL as matching anything, including another
// NULL. It backs the Simple-CASE WHEN comparison (§4.12) where NULL never
// matches.
func StrictEqual(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	return rawEqual(a, b)
}

func rawEqual(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat64() == b.AsFloat64()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindBytes:
		return string(a.bytes) == string(b.bytes)
	default:
		return false
	}
}

// Compare orders two numeric or string values; ok is false for
// non-comparable kinds (struct/object/bytes), matching the window sort
// fallback contract in §4.4: a non-numeric sort key compares as greater
// than any numeric value rather than erroring.
func Compare(a, b Value) (cmp int, ok bool) {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		x, y := a.AsFloat64(), b.AsFloat64()
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case a.kind == KindString && b.kind == KindString:
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	case a.IsNumeric() && !b.IsNumeric():
		return -1, true // numeric sorts before the "greater than any numeric" fallback
	case !a.IsNumeric() && b.IsNumeric():
		return 1, true
	default:
		return 0, false
	}
}
