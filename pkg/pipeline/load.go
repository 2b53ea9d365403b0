package pipeline

import (
	"path/filepath"

	"github.com/tracelayer/gridroute/pkg/problem"
)

// =============================================================================
// Load Stage
// =============================================================================

// Load reads the routing problem and resolves its technology. Inline
// problem bytes take precedence over ProblemPath; a tech file referenced by
// the problem is resolved relative to the problem file's directory.
// TechPath overrides whatever the problem names.
func Load(opts Options) (*problem.Problem, *problem.Tech, error) {
	var (
		p       *problem.Problem
		baseDir string
		err     error
	)
	if len(opts.Problem) > 0 {
		p, err = problem.Unmarshal(opts.Problem)
		if err == nil {
			err = p.Validate()
		}
	} else {
		p, err = problem.Load(opts.ProblemPath)
		baseDir = filepath.Dir(opts.ProblemPath)
	}
	if err != nil {
		return nil, nil, err
	}

	if opts.TechPath != "" {
		t, err := problem.LoadTech(opts.TechPath)
		if err != nil {
			return nil, nil, err
		}
		return p, t, nil
	}
	t, err := p.ResolveTech(baseDir)
	if err != nil {
		return nil, nil, err
	}
	return p, t, nil
}
