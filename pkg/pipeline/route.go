package pipeline

import (
	"context"

	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render/jsonout"
)

// =============================================================================
// Route Stage
// =============================================================================

// Route builds the physical router for the problem, routes every request,
// optionally fills supply straps, and flattens the drawn geometry into a
// layout document. The document bytes are returned alongside the parsed
// form so callers can cache or emit them without re-marshaling; a cache hit
// and a fresh route therefore produce byte-identical JSON.
func Route(ctx context.Context, p *problem.Problem, tech *problem.Tech, opts Options) (*jsonout.Document, []byte, error) {
	router, err := p.Router(tech, opts.Logger)
	if err != nil {
		return nil, nil, err
	}
	res := p.RouteAll(ctx, router)
	if opts.Straps {
		placed, err := p.FillStraps(ctx, router, nil)
		if err != nil {
			return nil, nil, err
		}
		res.Straps = placed.Len()
		res.Summarize(router)
	}
	data, err := jsonout.Render(router.Area(), router.Group(),
		jsonout.WithName(p.Name), jsonout.WithResult(res))
	if err != nil {
		return nil, nil, err
	}
	doc, err := jsonout.Unmarshal(data)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
