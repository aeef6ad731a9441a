package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"arbitration_loss":   ArbitrationLoss,
		"illegal_start_stop": IllegalStartStop,
		"nack":               Nack,
		"request":            Request,
		"would_block":        WouldBlock,
		"timeout":            Timeout,
		"already_taken":      AlreadyTaken,
		"invalid_word":       InvalidWord,
		"misuse":             Misuse,
		"unknown_model":      UnknownModel,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfUnwrapsWrappers(t *testing.T) {
	e := &E{C: ArbitrationLoss, Op: "i2c.Write"}
	if got := Of(e); got != ArbitrationLoss {
		t.Fatalf("Of(*E) = %q", got)
	}
	wrapped := fmt.Errorf("outer: %w", e)
	if got := Of(wrapped); got != ArbitrationLoss {
		t.Fatalf("Of(wrapped) = %q", got)
	}
	if !errors.Is(wrapped, ArbitrationLoss) {
		t.Fatal("errors.Is should match bare code")
	}
	if Of(nil) != OK {
		t.Fatal("Of(nil) should be OK")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("foreign errors map to Error")
	}
}

func TestEErrorText(t *testing.T) {
	e := &E{C: Misuse, Op: "swm.Bind", Msg: "pin 4 handle already consumed"}
	if got, want := e.Error(), "swm.Bind: misuse: pin 4 handle already consumed"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPanicCarriesMisuse(t *testing.T) {
	defer func() {
		r := recover()
		e, ok := r.(*E)
		if !ok || e.C != Misuse || e.Op != "op" {
			t.Fatalf("unexpected panic value %#v", r)
		}
	}()
	Panic("op", "stale")
}
