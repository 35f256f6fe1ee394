package timedim

import (
	"errors"
	"testing"
)

func TestParse_ReferenceTimeDescriptor(t *testing.T) {
	r, err := Parse("2022-06-19T12:00:00Z/2022-06-21T00:00:00Z/PT12H")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := Range{Start: "2022-06-19T12:00:00Z", End: "2022-06-21T00:00:00Z", Step: "PT12H"}
	if r != want {
		t.Fatalf("got %+v want %+v", r, want)
	}
}

func TestParse_TimeDescriptor(t *testing.T) {
	r, err := Parse("2022-06-21T01:00:00Z/2022-06-27T00:00:00Z/PT1H")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := Range{Start: "2022-06-21T01:00:00Z", End: "2022-06-27T00:00:00Z", Step: "PT1H"}
	if r != want {
		t.Fatalf("got %+v want %+v", r, want)
	}
}

func TestParse_FieldsPassThroughUnmodified(t *testing.T) {
	// No timezone normalization, no duration decoding: whatever text the
	// server published comes back byte for byte.
	r, err := Parse("2022-06-19T12:00:00+04:00/ 2022-06-21/p t1h")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Start != "2022-06-19T12:00:00+04:00" || r.End != " 2022-06-21" || r.Step != "p t1h" {
		t.Fatalf("fields were altered: %+v", r)
	}
}

func TestParse_TooFewSeparators(t *testing.T) {
	for _, in := range []string{"onlyonefield", "", "a/b"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedDescriptor) {
			t.Fatalf("Parse(%q): want ErrMalformedDescriptor, got %v", in, err)
		}
	}
}

func TestParse_TooManySeparators(t *testing.T) {
	if _, err := Parse("a/b/c/d"); !errors.Is(err, ErrMalformedDescriptor) {
		t.Fatal("expected ErrMalformedDescriptor for four fields")
	}
}

func TestParse_Idempotent(t *testing.T) {
	const in = "2022-06-21T01:00:00Z/2022-06-27T00:00:00Z/PT1H"
	r1, err1 := Parse(in)
	r2, err2 := Parse(in)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errs: %v, %v", err1, err2)
	}
	if r1 != r2 {
		t.Fatalf("parse not repeatable: %+v vs %+v", r1, r2)
	}
}

func TestString_RoundTrip(t *testing.T) {
	const in = "2022-06-19T12:00:00Z/2022-06-21T00:00:00Z/PT12H"
	r, err := Parse(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.String() != in {
		t.Fatalf("round trip got %q want %q", r.String(), in)
	}
}

func TestParseExtent_SingleRange(t *testing.T) {
	rs, err := ParseExtent("2022-06-21T01:00:00Z/2022-06-27T00:00:00Z/PT1H")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("got %d ranges, want 1", len(rs))
	}
	if rs[0].Step != "PT1H" {
		t.Fatalf("step got %q", rs[0].Step)
	}
}

func TestParseExtent_MultipleDisjointRanges(t *testing.T) {
	rs, err := ParseExtent("2022-06-19T00:00:00Z/2022-06-20T00:00:00Z/PT6H, 2022-06-21T00:00:00Z/2022-06-27T00:00:00Z/PT1H")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("got %d ranges, want 2", len(rs))
	}
	if rs[1].Start != "2022-06-21T00:00:00Z" {
		t.Fatalf("second range start got %q", rs[1].Start)
	}
}

func TestParseExtent_RejectsEmptyAndMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "a/b/c,notarange"} {
		if _, err := ParseExtent(in); !errors.Is(err, ErrMalformedDescriptor) {
			t.Fatalf("ParseExtent(%q): want ErrMalformedDescriptor, got %v", in, err)
		}
	}
}

func TestChoose_SingleRangeNeedsNoSelection(t *testing.T) {
	ranges := []Range{{Start: "a", End: "b", Step: "PT1H"}}
	got, err := Choose(ranges, -1)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got != ranges[0] {
		t.Fatalf("got %+v", got)
	}
}

func TestChoose_MultiRangeWithoutSelectionFails(t *testing.T) {
	ranges := []Range{
		{Start: "a", End: "b", Step: "PT1H"},
		{Start: "c", End: "d", Step: "PT3H"},
	}
	if _, err := Choose(ranges, -1); !errors.Is(err, ErrAmbiguousExtent) {
		t.Fatalf("err = %v, want ErrAmbiguousExtent", err)
	}
}

func TestChoose_ExplicitIndex(t *testing.T) {
	ranges := []Range{
		{Start: "a", End: "b", Step: "PT1H"},
		{Start: "c", End: "d", Step: "PT3H"},
	}
	got, err := Choose(ranges, 1)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got.Start != "c" || got.End != "d" {
		t.Fatalf("got %+v", got)
	}
}

func TestChoose_IndexOutOfRange(t *testing.T) {
	ranges := []Range{{Start: "a", End: "b", Step: "PT1H"}}
	if _, err := Choose(ranges, 3); !errors.Is(err, ErrAmbiguousExtent) {
		t.Fatalf("err = %v, want ErrAmbiguousExtent", err)
	}
}

func TestChoose_EmptyList(t *testing.T) {
	if _, err := Choose(nil, -1); !errors.Is(err, ErrMalformedDescriptor) {
		t.Fatalf("err = %v, want ErrMalformedDescriptor", err)
	}
}
