package arrow

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/lineage/option"
	"github.com/zoobzio/lineage/result"
	"pgregory.net/rapid"
)

func run[A, B any](t testing.TB, s Step[A, B], in A) B {
	t.Helper()
	out, err := s.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestIdentityThenLift(t *testing.T) {
	inc := Lift(func(x int) int { return x + 1 })

	left := run(t, Then(Identity[int](), inc), 10)
	right := run(t, Then(inc, Identity[int]()), 10)

	if left != 11 || right != 11 {
		t.Errorf("expected 11 from both sides, got %d and %d", left, right)
	}
}

func TestThenStopsOnFault(t *testing.T) {
	boom := errors.New("boom")
	var ran bool
	failing := LiftAsync(func(context.Context, int) (int, error) { return 0, boom })
	after := Lift(func(x int) int { ran = true; return x })

	_, err := Then(failing, after).Run(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran {
		t.Error("stage after a fault must not run")
	}
}

func TestThenIsSequential(t *testing.T) {
	var order []string
	slow := LiftAsync(func(_ context.Context, x int) (int, error) {
		time.Sleep(5 * time.Millisecond)
		order = append(order, "first")
		return x, nil
	})
	second := Lift(func(x int) int {
		order = append(order, "second")
		return x
	})

	run(t, Then(slow, second), 0)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestMapAndTap(t *testing.T) {
	var seen int
	s := Map(Lift(func(x int) int { return x * 2 }), strconv.Itoa).Tap(func(v string) { seen++ })
	if got := run(t, s, 21); got != "42" {
		t.Errorf("expected \"42\", got %q", got)
	}
	if seen != 1 {
		t.Errorf("tap fired %d times", seen)
	}
}

func TestComposeAndRepeat(t *testing.T) {
	inc := Lift(func(x int) int { return x + 1 })
	if got := run(t, Compose(inc, inc, inc), 0); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := run(t, Compose[int](), 5); got != 5 {
		t.Errorf("empty compose should be identity, got %d", got)
	}
	if got := run(t, Repeat(4, inc), 0); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if got := run(t, Repeat(-1, inc), 9); got != 9 {
		t.Errorf("negative repeat should be identity, got %d", got)
	}
}

func TestComposeWithAndPartialCompose(t *testing.T) {
	double := Lift(func(x int) int { return x * 2 })
	show := Lift(strconv.Itoa)

	thenShow := ComposeWith[int, int, string](show)
	if got := run(t, thenShow(double), 4); got != "8" {
		t.Errorf("expected \"8\", got %q", got)
	}

	afterDouble := PartialCompose[int, int, string](double)
	if got := run(t, afterDouble(show), 5); got != "10" {
		t.Errorf("expected \"10\", got %q", got)
	}
}

func TestCatchConvertsErrorsAndPanics(t *testing.T) {
	boom := errors.New("boom")

	errStep := Catch(LiftAsync(func(context.Context, int) (int, error) { return 0, boom }))
	r := run(t, errStep, 1)
	if !errors.Is(r.Err(), boom) {
		t.Errorf("expected boom failure, got %v", r)
	}

	panicStep := Catch(Lift(func(int) int { panic("kaboom") }))
	r = run(t, panicStep, 1)
	var fault *Fault
	if !errors.As(r.Err(), &fault) {
		t.Fatalf("expected *Fault, got %v", r.Err())
	}
	if fault.Value != "kaboom" {
		t.Errorf("expected panic value kaboom, got %v", fault.Value)
	}

	ok := run(t, Catch(Lift(func(x int) int { return x })), 3)
	if ok.Value() != 3 {
		t.Errorf("expected Success(3), got %v", ok)
	}
}

func TestTryLift(t *testing.T) {
	parse := TryLift(strconv.Atoi)
	if r := run(t, parse, "12"); r.Value() != 12 {
		t.Errorf("expected 12, got %v", r)
	}
	if r := run(t, parse, "x"); r.IsSuccess() {
		t.Errorf("expected failure, got %v", r)
	}

	async := TryLiftAsync(func(ctx context.Context, s string) (int, error) { return len(s), ctx.Err() })
	if r := run(t, async, "abc"); r.Value() != 3 {
		t.Errorf("expected 3, got %v", r)
	}

	if _, err := Unwrap(parse).Run(context.Background(), "nope"); err == nil {
		t.Error("expected unwrap to raise the failure")
	}
}

func TestConstantArrows(t *testing.T) {
	if r := run(t, Success[string, int, string](1), "ignored"); r.Value() != 1 {
		t.Errorf("got %v", r)
	}
	if r := run(t, Failure[string, int]("e"), "ignored"); r.Err() != "e" {
		t.Errorf("got %v", r)
	}
	if o := run(t, Some[string](2), "ignored"); o != option.Some(2) {
		t.Errorf("got %v", o)
	}
	if o := run(t, None[string, int](), "ignored"); o.IsSome() {
		t.Errorf("got %v", o)
	}
}

func TestThenResultShortCircuits(t *testing.T) {
	var calls int
	count := Lift(func(x int) result.Result[int, string] {
		calls++
		return result.Success[int, string](x)
	})

	chain := ThenResult(ThenResult(Pure[int, string](), Failure[int, int]("halt")), count)
	r := run(t, chain, 1)
	if r.Err() != "halt" {
		t.Errorf("expected halt, got %v", r)
	}
	if calls != 0 {
		t.Errorf("stage after failure ran %d times", calls)
	}

	mapped := MapResult(Pure[int, string](), func(x int) int { return x + 100 })
	if r := run(t, mapped, 1); r.Value() != 101 {
		t.Errorf("got %v", r)
	}

	var okSeen, errSeen int
	tapped := TapResultError(TapResult(Failure[int, int]("bad"), func(int) { okSeen++ }), func(string) { errSeen++ })
	if r := run(t, tapped, 0); r.Err() != "bad" || okSeen != 0 || errSeen != 1 {
		t.Errorf("tap mismatch: %v ok=%d err=%d", r, okSeen, errSeen)
	}

	recovered := Recover(Failure[int, int]("oops"), func(e string) int { return len(e) })
	if got := run(t, recovered, 0); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
}

func TestThenOption(t *testing.T) {
	half := Lift(func(x int) option.Option[int] {
		if x%2 != 0 {
			return option.None[int]()
		}
		return option.Some(x / 2)
	})
	chain := ThenOption(half, half)
	if o := run(t, chain, 8); o != option.Some(2) {
		t.Errorf("got %v", o)
	}
	if o := run(t, chain, 6); o.IsSome() {
		t.Errorf("got %v", o)
	}

	var seen []int
	m := TapOption(MapOption(half, func(x int) int { return -x }), func(x int) { seen = append(seen, x) })
	if o := run(t, m, 4); o != option.Some(-2) || len(seen) != 1 {
		t.Errorf("got %v seen=%v", o, seen)
	}
}

func TestParallel(t *testing.T) {
	var active, peak int32
	track := func(d time.Duration) Step[int, int] {
		return LiftAsync(func(_ context.Context, x int) (int, error) {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(d)
			atomic.AddInt32(&active, -1)
			return x, nil
		})
	}

	p := run(t, Parallel(track(20*time.Millisecond), Map(track(20*time.Millisecond), strconv.Itoa)), 7)
	if p.First != 7 || p.Second != "7" {
		t.Errorf("unexpected pair %v", p)
	}
	if atomic.LoadInt32(&peak) != 2 {
		t.Errorf("expected both sides to overlap, peak=%d", peak)
	}

	boom := errors.New("boom")
	failing := LiftAsync(func(context.Context, int) (int, error) { return 0, boom })
	if _, err := Parallel(failing, Identity[int]()).Run(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestProcessorRoundTrip(t *testing.T) {
	inc := Lift(func(x int) int { return x + 1 })
	chainable := Processor("inc", "adds one", inc)

	if got := run(t, FromChainable(chainable), 1); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if err := chainable.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

// lawStep builds a deterministic arrow from a drawn affine function so the
// laws are checked over many different arrows rather than one fixed trio.
func lawStep(t *rapid.T, label string) Step[int, int] {
	a := rapid.IntRange(-5, 5).Draw(t, label+"-a")
	b := rapid.IntRange(-100, 100).Draw(t, label+"-b")
	return Lift(func(x int) int { return a*x + b })
}

func TestArrowLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f, g, h := lawStep(t, "f"), lawStep(t, "g"), lawStep(t, "h")
		x := rapid.IntRange(-1000, 1000).Draw(t, "x")
		ctx := context.Background()

		fx, _ := f(ctx, x)
		l, _ := Then(Identity[int](), f)(ctx, x)
		r, _ := Then(f, Identity[int]())(ctx, x)
		if l != fx || r != fx {
			t.Fatalf("identity: %d %d %d", l, fx, r)
		}

		a, _ := Then(Then(f, g), h)(ctx, x)
		b, _ := Then(f, Then(g, h))(ctx, x)
		if a != b {
			t.Fatalf("associativity: %d != %d", a, b)
		}
	})
}

func TestKleisliResultLaws(t *testing.T) {
	mk := func(t *rapid.T, label string) Step[int, result.Result[int, string]] {
		mod := rapid.IntRange(2, 7).Draw(t, label+"-mod")
		add := rapid.IntRange(-10, 10).Draw(t, label+"-add")
		return Lift(func(x int) result.Result[int, string] {
			if x%mod == 0 {
				return result.Failure[int](label)
			}
			return result.Success[int, string](x + add)
		})
	}

	rapid.Check(t, func(t *rapid.T) {
		f, g, h := mk(t, "f"), mk(t, "g"), mk(t, "h")
		x := rapid.IntRange(-1000, 1000).Draw(t, "x")
		ctx := context.Background()

		fx, _ := f(ctx, x)
		l, _ := ThenResult(Pure[int, string](), f)(ctx, x)
		r, _ := ThenResult(f, Pure[int, string]())(ctx, x)
		if l != fx || r != fx {
			t.Fatalf("identity: %v %v %v", l, fx, r)
		}

		a, _ := ThenResult(ThenResult(f, g), h)(ctx, x)
		b, _ := ThenResult(f, ThenResult(g, h))(ctx, x)
		if a != b {
			t.Fatalf("associativity: %v != %v", a, b)
		}
	})
}
