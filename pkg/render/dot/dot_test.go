package dot

import (
	"strings"
	"testing"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/problem"
)

func testProblem() *problem.Problem {
	return &problem.Problem{
		Name: "pair",
		Requests: []problem.Request{
			{
				Net: "a",
				Src: problem.Endpoint{Layer: "m1", Rect: problem.Rect{0, 0, 10, 10}},
				Dst: problem.Endpoint{Layer: "m1", Rect: problem.Rect{0, 90, 10, 100}},
			},
			{
				Net: "b",
				Src: problem.Endpoint{Layer: "m2", Rect: problem.Rect{50, 0, 60, 10}},
				Dst: problem.Endpoint{Layer: "m2", Rect: problem.Rect{50, 90, 60, 100}},
			},
		},
	}
}

func testResult() *problem.Result {
	res := problem.NewResult("pair")
	res.AddRouted("a")
	res.AddFailed("b", errors.New(errors.ErrCodeRouteNotFound, "no route found for net b"))
	return res
}

func TestToDOT(t *testing.T) {
	out := ToDOT(testProblem(), testResult(), Options{})

	if !strings.HasPrefix(out, "digraph routes {") {
		t.Errorf("output should be a digraph: %.40s", out)
	}
	if !strings.Contains(out, `"r0.src" -> "r0.dst"`) || !strings.Contains(out, `"r1.src" -> "r1.dst"`) {
		t.Error("every request should become one edge")
	}
	if !strings.Contains(out, "#2e7d32") {
		t.Error("routed edges should be green")
	}
	if !strings.Contains(out, "#c62828") || !strings.Contains(out, "style=dashed") {
		t.Error("failed edges should be red and dashed")
	}
	if !strings.Contains(out, "pair: 1/2 routed") {
		t.Error("graph label should summarize the outcome")
	}
}

func TestToDOTDetailed(t *testing.T) {
	out := ToDOT(testProblem(), testResult(), Options{Detailed: true})

	if !strings.Contains(out, "m1 (0, 0)-(10, 10)") {
		t.Error("detailed labels should carry layer and coordinates")
	}
	if !strings.Contains(out, string(errors.ErrCodeRouteNotFound)) {
		t.Error("detailed failed edges should carry the error code")
	}
}

func TestToDOTWithoutResult(t *testing.T) {
	out := ToDOT(testProblem(), nil, Options{})

	if strings.Contains(out, "routed") {
		t.Error("no outcome summary without a result")
	}
	if !strings.Contains(out, "#444444") {
		t.Error("edges without an outcome should be grey")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="134pt" height="52pt" viewBox="0.00 0.00 134.00 52.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)

	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 134.00 52.00" width="134" height="52">`
	if !strings.Contains(out, want) {
		t.Errorf("normalizeViewBox = %s, want tag %s", out, want)
	}

	// Inputs without a viewBox pass through untouched
	plain := []byte(`<svg width="10"></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox without viewBox = %s, want unchanged", got)
	}
}
