package taskrt

import (
	"errors"
	"testing"
)

func TestValueAsync_AwaitBeforeSetReceivesValue(t *testing.T) {
	v := NewValueAsync[string]()

	var got string
	var gotErr error
	v.Await(nil, func(s string, err error) {
		got, gotErr = s, err
	})
	v.Set("hello")

	if gotErr != nil || got != "hello" {
		t.Fatalf("got (%q, %v), want (\"hello\", nil)", got, gotErr)
	}
}

func TestValueAsync_AwaitAfterSetReceivesValueImmediately(t *testing.T) {
	v := NewValueAsync[int]()
	v.Set(42)

	var got int
	v.Await(nil, func(val int, err error) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = val
	})
	if got != 42 {
		t.Fatalf("got = %d, want 42", got)
	}
}

func TestValueAsync_FailDeliversError(t *testing.T) {
	v := NewValueAsync[int]()
	boom := errors.New("boom")

	var gotErr error
	v.Await(nil, func(val int, err error) { gotErr = err })
	v.Fail(boom)

	if !errors.Is(gotErr, boom) {
		t.Fatalf("gotErr = %v, want boom", gotErr)
	}
}

func TestValueAsync_SecondAwaitBeforeSettlementPanics(t *testing.T) {
	v := NewValueAsync[int]()
	v.Await(nil, func(int, error) {})

	defer func() {
		r := recover()
		if r != ErrAlreadyAwaited {
			t.Fatalf("recover() = %v, want ErrAlreadyAwaited", r)
		}
	}()
	v.Await(nil, func(int, error) {})
	t.Fatal("expected a panic from the second Await")
}

func TestValueAsync_SetIsIdempotent(t *testing.T) {
	v := NewValueAsync[int]()
	v.Set(1)
	v.Set(2)
	v.Fail(errors.New("ignored"))

	var got int
	v.Await(nil, func(val int, err error) {
		got = val
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if got != 1 {
		t.Fatalf("got = %d, want 1 (first Set wins)", got)
	}
}

func TestValueAsync_AwaitAfterFailAllowedOnceSettled(t *testing.T) {
	v := NewValueAsync[int]()
	boom := errors.New("boom")
	v.Fail(boom)

	var gotErr error
	v.Await(nil, func(val int, err error) { gotErr = err })
	if !errors.Is(gotErr, boom) {
		t.Fatalf("gotErr = %v, want boom", gotErr)
	}
}
