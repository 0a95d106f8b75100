package eval

import (
	"errors"
	"strings"
	"testing"
)

func TestFunctionCall(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "function add(a, b) { return a + b; } add(2, 3);"); got != "5" {
		t.Errorf("expected 5, got %q", got)
	}
	if got := mustEval(t, e, "function none() { var x = 1; } none();"); got != "undefined" {
		t.Errorf("expected undefined without return, got %q", got)
	}
	if got := mustEval(t, e, "var sq = function(n) { return n * n; }; sq(7);"); got != "49" {
		t.Errorf("expected 49, got %q", got)
	}
	if got := mustEval(t, e, "(function(n) { return n + 1; })(1);"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestRecursion(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
fib(15);`
	if got := mustEval(t, e, src); got != "610" {
		t.Errorf("expected 610, got %q", got)
	}
}

func TestClosureCapturesByReference(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function make() {
	var n = 0;
	function inc() { n = n + 1; return n; }
	return inc;
}
var f = make();
var first = f();
var second = f();`
	mustEval(t, e, src)
	if got := e.Lookup("first").Int(); got != 1 {
		t.Errorf("expected first call to return 1, got %d", got)
	}
	if got := e.Lookup("second").Int(); got != 2 {
		t.Errorf("expected second call to return 2, got %d", got)
	}
}

func TestClosuresDoNotShareFrames(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function counter(start) {
	var n = start;
	return function() { n++; return n; };
}
var a = counter(0);
var b = counter(100);
a(); a();
var ra = a();
var rb = b();`
	mustEval(t, e, src)
	if got := e.Lookup("ra").Int(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := e.Lookup("rb").Int(); got != 101 {
		t.Errorf("expected 101, got %d", got)
	}
}

func TestClosureSeesLaterOuterChanges(t *testing.T) {
	e, _ := newTestEvaluator(t)
	if got := mustEval(t, e, "var x = 1; function get() { return x; } x = 2; get();"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestParameterPassing(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function setField(o) { o.x = 5; }
function bump(n) { n = n + 1; n++; return n; }
function push(a) { a[a.length] = 9; }
var obj = {x: 1};
var k = 1;
var arr = [1];
setField(obj);
var bumped = bump(k);
push(arr);`
	mustEval(t, e, src)
	if got := mustEval(t, e, "obj.x;"); got != "5" {
		t.Errorf("object mutation not visible to caller: obj.x = %s", got)
	}
	if got := e.Lookup("k").Int(); got != 1 {
		t.Errorf("integer argument changed in caller: k = %d", got)
	}
	if got := e.Lookup("bumped").Int(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := mustEval(t, e, "arr.length;"); got != "2" {
		t.Errorf("array mutation not visible to caller: length = %s", got)
	}
}

func TestArityMismatch(t *testing.T) {
	e, output := newTestEvaluator(t)
	src := `function one(a) { return a; }
var r = one(1, 2);
var after = 7;`
	mustEval(t, e, src)
	if !strings.Contains(output.String(), "expected 1 arguments, got 2") {
		t.Errorf("expected arity diagnostic, got %q", output.String())
	}
	if r := e.Lookup("r"); r == nil || !r.IsUndefined() {
		t.Errorf("expected r to be undefined, got %v", r)
	}
	if got := e.Lookup("after").Int(); got != 7 {
		t.Errorf("statements after the bad call did not run")
	}
}

func TestCallNonFunction(t *testing.T) {
	e, _ := newTestEvaluator(t)
	_, err := e.Eval("var a = 1;\na();")
	var rt *RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rt.Line != 2 {
		t.Errorf("expected line 2, got %d", rt.Line)
	}
}

func TestErrorInsideFunctionReportsLine(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function bad() {
	var s = "x";
	return s - 1;
}
bad();`
	_, err := e.Eval(src)
	var rt *RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rt.Line != 3 {
		t.Errorf("expected line 3, got %d", rt.Line)
	}
	if got := mustEval(t, e, "1 + 1;"); got != "2" {
		t.Errorf("evaluator unusable after error in call: %q", got)
	}
}

func TestMaxDepth(t *testing.T) {
	e, _ := newTestEvaluator(t, WithMaxDepth(50))
	_, err := e.Eval("function r(n) { return r(n + 1); } r(0);")
	if err == nil || !strings.Contains(err.Error(), "maximum call depth") {
		t.Fatalf("expected depth error, got %v", err)
	}
}

func TestConstructor(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `function Point(x, y) {
	this.x = x;
	this.y = y;
	this.sum = function() { return 42; };
}
var p = new Point(1, 2);
var total = p.x + p.y;
var fromMethod = p.sum();`
	mustEval(t, e, src)
	if got := e.Lookup("total").Int(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := e.Lookup("fromMethod").Int(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if p := e.Lookup("p"); !p.IsWrapper() {
		t.Errorf("expected constructed object to be wrapped")
	}
}

func TestConstructorErrors(t *testing.T) {
	e, output := newTestEvaluator(t)
	if _, err := e.Eval("var x = new Nope();"); err == nil {
		t.Errorf("expected error for unknown constructor")
	}

	mustEval(t, e, "function P(a) { this.a = a; } var q = new P();")
	if !strings.Contains(output.String(), "expected 1 arguments, got 0") {
		t.Errorf("expected arity diagnostic, got %q", output.String())
	}
	if q := e.Lookup("q"); q == nil || !q.IsUndefined() {
		t.Errorf("expected q to be undefined, got %v", q)
	}
}

func TestObjectLiteralMethods(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `var calc = {
	base: 10,
	add: function(a, b) { return a + b; },
	nested: {deep: [1, 2, {z: "ok"}]}
};
calc.add(calc.base, 5);`
	if got := mustEval(t, e, src); got != "15" {
		t.Errorf("expected 15, got %q", got)
	}
	if got := mustEval(t, e, "calc.nested.deep[2].z;"); got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestReturnedObjectIsCopied(t *testing.T) {
	e, _ := newTestEvaluator(t)
	src := `var shared = {n: 1};
function get() { return shared; }
var c = get();
c.n = 2;`
	mustEval(t, e, src)
	if got := mustEval(t, e, "shared.n;"); got != "1" {
		t.Errorf("returned object should be a copy, shared.n = %s", got)
	}
}
