package value

import (
	"bytes"
	"testing"
)

func rebuild(params []string, body string, line int) *Var {
	return NewClosure(params, body, line, nil)
}

func sample() *Var {
	list := NewArray()
	list.AddChild("0", NewBool(true))
	list.AddChild("1", NewNull())
	o := NewObject()
	o.AddChild("a", NewInt(1))
	o.AddChild("s", NewString("x"))
	o.AddChild("d", NewDouble(2.5))
	o.AddChild("arr", list)
	return o
}

func TestMarshalRoundTrip(t *testing.T) {
	o := sample()
	data, err := Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data, rebuild)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if Inspect(got) != Inspect(o) {
		t.Errorf("expected %s, got %s", Inspect(o), Inspect(got))
	}
}

func TestMarshalIsCanonical(t *testing.T) {
	a, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected equal values to encode to equal bytes")
	}
}

func TestMarshalFunction(t *testing.T) {
	fn := NewClosure([]string{"a", "b"}, "{\n  return a + b;\n}", 4, []*Var{NewObject()})
	data, err := Marshal(fn)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data, rebuild)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Signature() != fn.Signature() || got.Line() != 4 {
		t.Errorf("expected %s at line 4, got %s at line %d", fn.Signature(), got.Signature(), got.Line())
	}

	got, err = Unmarshal(data, nil)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.IsUndefined() {
		t.Errorf("expected Undefined without a function builder, got %s", got.Type())
	}
}

func TestMarshalSkipsNativesAndCycles(t *testing.T) {
	o := NewObject()
	o.AddChild("name", NewString("loop"))
	o.AddChild("self", o)
	o.AddChild("fn", NewNativeFunction(0, func(args []*Var) (*Var, error) { return NewUndefined(), nil }))

	data, err := Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data, rebuild)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := `{name: "loop", self: undefined, fn: undefined}`
	if Inspect(got) != want {
		t.Errorf("expected %s, got %s", want, Inspect(got))
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff}, rebuild); err == nil {
		t.Error("expected an error decoding garbage")
	}
}
