package problem

import (
	stderrors "errors"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/route/abs"
)

func TestResultCounters(t *testing.T) {
	res := NewResult("counters")
	res.AddRouted("a")
	res.AddRouted("b")
	res.AddFailed("c", errors.New(errors.ErrCodeInvalidLayer, "unknown routing layer %q", "m9"))
	if res.Routed != 2 || res.Failed != 1 {
		t.Errorf("counters = %d routed, %d failed, want 2 and 1", res.Routed, res.Failed)
	}
	if len(res.Requests) != 3 {
		t.Fatalf("recorded %d requests, want 3", len(res.Requests))
	}
	if !res.Requests[1].Routed || res.Requests[1].Net != "b" {
		t.Errorf("request 1 = %+v, want routed net b", res.Requests[1])
	}
}

func TestAddFailedCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code errors.Code
	}{
		{
			"coded error",
			errors.New(errors.ErrCodeInvalidLayer, "unknown routing layer %q", "m9"),
			errors.ErrCodeInvalidLayer,
		},
		{
			"route error",
			&errors.RouteError{Net: "a", SrcLayer: "m1", DstLayer: "m1", Cause: abs.ErrNoRouteFound},
			errors.ErrCodeRouteNotFound,
		},
		{
			"plain error",
			stderrors.New("boom"),
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := NewResult("codes")
			res.AddFailed("a", tc.err)
			got := res.Requests[0]
			if got.Code != tc.code {
				t.Errorf("AddFailed() code = %q, want %q", got.Code, tc.code)
			}
			if got.Routed {
				t.Error("AddFailed() marked the request routed")
			}
			if got.Error == "" {
				t.Error("AddFailed() left the error message empty")
			}
		})
	}
}
