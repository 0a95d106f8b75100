package eval

import (
	"errors"
	"strings"
	"testing"

	"nickandperla.net/tinyjs/internal/scanner"
	"nickandperla.net/tinyjs/internal/value"
)

func newTestEvaluator(t *testing.T, opts ...Option) (*Evaluator, *strings.Builder) {
	t.Helper()
	var output strings.Builder
	opts = append([]Option{WithOutputWriter(func(text string) error {
		output.WriteString(text)
		return nil
	})}, opts...)
	return New(opts...), &output
}

func mustEval(t *testing.T, e *Evaluator, src string) string {
	t.Helper()
	result, err := e.Eval(src)
	if err != nil {
		t.Fatalf("Eval(%q): unexpected error: %v", src, err)
	}
	return result
}

func TestScalarLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"5", "5"},
		{"0x1f", "31"},
		{"010", "8"},
		{"2.5", "2.5"},
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
		{"undefined", "undefined"},
		{`"hello"`, "hello"},
		{`'single'`, "single"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			if got := mustEval(t, e, tt.src+";"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompoundAssignment(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "var x = 1; x += 2; x;"); got != "3" {
		t.Errorf("expected 3, got %q", got)
	}
	if v := e.Lookup("x"); v == nil || !v.IsInt() {
		t.Errorf("expected x to be an integer, got %v", v)
	}

	mustEval(t, e, "x -= 5;")
	if got := e.Lookup("x").Int(); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"-7 % 3", "-1"},
		{"7.0 / 2", "3.5"},
		{"1 + 2.5", "3.5"},
		{"6 & 3", "2"},
		{"6 | 3", "7"},
		{"6 ^ 3", "5"},
		{"1 << 4", "16"},
		{"256 >> 2 >> 1", "32"},
		{"~5", "-6"},
		{"!0", "true"},
		{"-(2 + 3)", "-5"},
		{`"ab" + 1`, "ab1"},
		{`"a" < "b"`, "true"},
		{"2 >= 2.0", "true"},
		{`"a" + [1, 2]`, "a"},
		{`"v=" + {x: 1}`, "v="},
		{`"" == []`, "true"},
		{`[] < "a"`, "true"},
		{"var a = []; a == a", "true"},
		{"[] == []", "false"},
		{"0.1 + 0.2", "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			if got := mustEval(t, e, tt.src+";"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDoublePromotion(t *testing.T) {
	for _, src := range []string{"1 + 0.5", "3 - 0.5", "2 * 0.5", "1 / 2.0"} {
		e, _ := newTestEvaluator(t)
		v, err := e.Run(src + ";")
		if err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
		if !v.IsDouble() {
			t.Errorf("%s: expected double, got %s", src, v.Type())
		}
	}
}

func TestEquality(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 == 1.0", "true"},
		{"1 === 1.0", "false"},
		{"1 !== 1.0", "true"},
		{`"1" == 1`, "true"},
		{`"1" === 1`, "false"},
		{"null == undefined", "true"},
		{"null != undefined", "false"},
		{"null + 1", "null1"},
		{"var a = {}; var b = a; a == b", "true"},
		{"var a = {}; var b = {}; a == b", "false"},
		{"var a = [1]; a != [1]", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			if got := mustEval(t, e, tt.src+";"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUnsupportedOperatorIsFatal(t *testing.T) {
	tests := []string{
		`"a" - 1;`,
		"true == true;",
		"undefined + undefined;",
		"var o = {}; o * 2;",
		"1 / 0;",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			_, err := e.Eval(src)
			var opErr *value.OpError
			if !errors.As(err, &opErr) {
				t.Fatalf("expected OpError, got %v", err)
			}
			var rt *RuntimeError
			if !errors.As(err, &rt) || rt.Line != 1 {
				t.Errorf("expected runtime error at line 1, got %v", err)
			}
		})
	}
}

func TestShortCircuit(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "false && (x = 1);"); got != "false" {
		t.Errorf("expected false, got %q", got)
	}
	if v := e.Lookup("x"); v != nil {
		t.Errorf("expected x to stay unbound, got %v", v)
	}

	mustEval(t, e, "var y = 0; true || (y = 1);")
	if got := e.Lookup("y").Int(); got != 0 {
		t.Errorf("expected y to stay 0, got %d", got)
	}

	if got := mustEval(t, e, "1 && 2;"); got != "true" {
		t.Errorf("expected coerced true, got %q", got)
	}
}

func TestTernary(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `var hits = 0;
var t = 1 < 2 ? "yes" : (hits = 1);
var n = 0 ? 1 : 0 ? 2 : 3;`
	mustEval(t, e, src)
	if got := e.Lookup("t").String(); got != "yes" {
		t.Errorf("expected yes, got %q", got)
	}
	if got := e.Lookup("hits").Int(); got != 0 {
		t.Errorf("untaken branch ran: hits = %d", got)
	}
	if got := e.Lookup("n").Int(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestIncrementDecrement(t *testing.T) {
	e, _ := newTestEvaluator(t)
	mustEval(t, e, "var i = 5; var a = i++; var b = ++i; var c = i--; var d = --i;")
	want := map[string]int{"i": 5, "a": 5, "b": 7, "c": 7, "d": 5}
	for name, n := range want {
		if got := e.Lookup(name).Int(); got != n {
			t.Errorf("%s: expected %d, got %d", name, n, got)
		}
	}
}

func TestImplicitGlobal(t *testing.T) {
	e, _ := newTestEvaluator(t)
	mustEval(t, e, "function f() { g = 5; } f();")
	if v := e.Lookup("g"); v == nil || v.Int() != 5 {
		t.Errorf("expected global g = 5, got %v", v)
	}

	mustEval(t, e, "var seen = missing;")
	if v := e.Lookup("missing"); v == nil || !v.IsUndefined() {
		t.Errorf("expected undefined global missing, got %v", v)
	}
}

func TestObjectAndArrayLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"({a: {b: 5}}).a.b", "5"},
		{"[1, 2, 3].length", "3"},
		{"[].length", "0"},
		{"var a = [10, 20, 30]; a[1]", "20"},
		{`var o = {"key": 1, n: 2}; o["key"] + o.n`, "3"},
		{"var a = [1, 2]; a[5] = 6; a.length", "6"},
		{`"hello".length`, "5"},
		{`"hello"[1]`, "e"},
		{"var o = {a: 1, b: 'x'}; o", `{a: 1, b: "x"}`},
		{"[1, [2, 3], 'z']", `[1, [2, 3], "z"]`},
		{"var o = {}; o.x = 1; o.x", "1"},
		{"var o; o.x = 2; o.x", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			if got := mustEval(t, e, tt.src+";"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestObjectLiteralWrapper(t *testing.T) {
	e, _ := newTestEvaluator(t)
	mustEval(t, e, "var o = {a: 1};")

	o := e.Lookup("o")
	if !o.IsWrapper() {
		t.Fatalf("expected object literal to be wrapped")
	}
	inner := o.Unwrap()
	if l := inner.FindChild("a"); l == nil || l.Var.Int() != 1 {
		t.Errorf("expected inner object to hold a = 1")
	}
}

func TestSyntaxError(t *testing.T) {
	tests := []string{
		"var = 1;",
		"1 +;",
		"if (1 { }",
		"var a = (1;",
		"{ var a = 1;",
		`"unterminated`,
		"var x = 1 var y = 2;",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			e, _ := newTestEvaluator(t)
			_, err := e.Eval(src)
			var se *scanner.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
		})
	}
}

func TestSemicolonOptionalBeforeBrace(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "var a = 1; if (a) { a = 2 } a"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestVarList(t *testing.T) {
	e, _ := newTestEvaluator(t)
	mustEval(t, e, "var a = 1, b, c = a + 1;")
	if got := e.Lookup("c").Int(); got != 2 {
		t.Errorf("expected c = 2, got %d", got)
	}
	if b := e.Lookup("b"); b == nil || !b.IsUndefined() {
		t.Errorf("expected b declared undefined, got %v", b)
	}
}

func TestPrint(t *testing.T) {
	e, output := newTestEvaluator(t)
	mustEval(t, e, `print("Hello"); print(1 + 2); print([1, "a"]);`)
	want := "Hello\n3\n[1, \"a\"]\n"
	if output.String() != want {
		t.Errorf("expected output %q, got %q", want, output.String())
	}
}

func TestWithNative(t *testing.T) {
	twice := Native{Name: "twice", Arity: 1, Fn: func(args []*value.Var) (*value.Var, error) {
		return value.NewInt(args[0].Int() * 2), nil
	}}
	e, _ := newTestEvaluator(t, WithNative(twice), WithNoNatives())
	if got := mustEval(t, e, "twice(21);"); got != "42" {
		t.Errorf("expected 42, got %q", got)
	}
	if e.Lookup("print") != nil {
		t.Errorf("expected no built-in natives")
	}
}

func TestNativeErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	fail := Native{Name: "fail", Arity: 0, Fn: func([]*value.Var) (*value.Var, error) {
		return nil, boom
	}}
	e, _ := newTestEvaluator(t, WithNative(fail))
	_, err := e.Eval("var a = 1;\nfail();")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var rt *RuntimeError
	if !errors.As(err, &rt) || rt.Line != 2 {
		t.Errorf("expected runtime error at line 2, got %v", err)
	}
}

func TestEvalReturnsLastExpression(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "var a = 1;"); got != "" {
		t.Errorf("expected empty result without expression statements, got %q", got)
	}
	if got := mustEval(t, e, "a; a + 1; var b = 5;"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestRootPersistsAcrossEvals(t *testing.T) {
	e, _ := newTestEvaluator(t)
	mustEval(t, e, "var counter = 1;")
	mustEval(t, e, "counter++;")
	if got := mustEval(t, e, "counter;"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestParsePersistMode(t *testing.T) {
	tests := []struct {
		in   string
		want PersistMode
		ok   bool
	}{
		{"on_demand", PersistOnDemand, true},
		{"on-demand", PersistOnDemand, true},
		{"ALWAYS", PersistAlways, true},
		{"never", PersistNever, true},
		{"sometimes", PersistOnDemand, false},
	}
	for _, tt := range tests {
		got, ok := ParsePersistMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePersistMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
