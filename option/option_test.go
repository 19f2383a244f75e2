package option

import (
	"strconv"
	"testing"

	"github.com/zoobzio/lineage/result"
	"pgregory.net/rapid"
)

func TestMapAndBind(t *testing.T) {
	if got := Map(Some(4), func(x int) int { return x + 1 }); got != Some(5) {
		t.Errorf("expected Some(5), got %v", got)
	}
	if got := Map(None[int](), func(x int) int { return x + 1 }); got.IsSome() {
		t.Errorf("expected None, got %v", got)
	}

	half := func(x int) Option[int] {
		if x%2 != 0 {
			return None[int]()
		}
		return Some(x / 2)
	}
	if got := Bind(Some(8), half); got != Some(4) {
		t.Errorf("expected Some(4), got %v", got)
	}
	if got := Bind(Some(3), half); got.IsSome() {
		t.Errorf("expected None, got %v", got)
	}
}

func TestOrElseAndWhere(t *testing.T) {
	if got := None[string]().OrElse("fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	if got := Some("x").OrElseGet(func() string { return "y" }); got != "x" {
		t.Errorf("got %q", got)
	}
	if got := Some(3).Where(func(x int) bool { return x > 5 }); got.IsSome() {
		t.Errorf("expected None, got %v", got)
	}
}

func TestTapAndTapNone(t *testing.T) {
	var some, none int
	Some(1).Tap(func(int) { some++ }).TapNone(func() { none++ })
	None[int]().Tap(func(int) { some++ }).TapNone(func() { none++ })
	if some != 1 || none != 1 {
		t.Errorf("expected 1/1, got %d/%d", some, none)
	}
}

func TestCombineAndPipe(t *testing.T) {
	p := Combine(Some(1), Some("a"))
	if v, ok := p.Get(); !ok || v.First != 1 || v.Second != "a" {
		t.Errorf("unexpected %v", p)
	}
	if Combine(Some(1), None[string]()).IsSome() {
		t.Error("expected None")
	}
	if Combine3(Some(1), Some(2), None[int]()).IsSome() {
		t.Error("expected None")
	}

	inc := func(x int) Option[int] { return Some(x + 1) }
	stop := func(int) Option[int] { return None[int]() }
	if got := Pipe(Some(0), inc, inc); got != Some(2) {
		t.Errorf("got %v", got)
	}
	if got := Pipe(Some(0), inc, stop, inc); got.IsSome() {
		t.Errorf("got %v", got)
	}
}

func TestResultConversions(t *testing.T) {
	if got := FromResult(result.Success[int, string](2)); got != Some(2) {
		t.Errorf("got %v", got)
	}
	if got := FromResult(result.Failure[int]("e")); got.IsSome() {
		t.Errorf("got %v", got)
	}
	if r := ToResult(None[int](), "missing"); r.Err() != "missing" {
		t.Errorf("got %v", r)
	}
	n := 7
	if got := FromPtr(&n); got != Some(7) {
		t.Errorf("got %v", got)
	}
	if got := FromPtr[int](nil); got.IsSome() {
		t.Errorf("got %v", got)
	}
	if got := Match(Some(3), strconv.Itoa, func() string { return "none" }); got != "3" {
		t.Errorf("got %q", got)
	}
}

func TestOptionMonadLaws(t *testing.T) {
	f := func(x int) Option[int] {
		if x%4 == 0 {
			return None[int]()
		}
		return Some(x - 1)
	}
	g := func(x int) Option[int] {
		if x%3 == 0 {
			return None[int]()
		}
		return Some(x * 3)
	}

	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Int().Draw(t, "x")
		o := None[int]()
		if rapid.Bool().Draw(t, "some") {
			o = Some(rapid.Int().Draw(t, "v"))
		}

		if Bind(Some(x), f) != f(x) {
			t.Fatal("left identity violated")
		}
		if Bind(o, Some[int]) != o {
			t.Fatal("right identity violated")
		}
		if Bind(Bind(o, f), g) != Bind(o, func(v int) Option[int] { return Bind(f(v), g) }) {
			t.Fatal("associativity violated")
		}
	})
}
