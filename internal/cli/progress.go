package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracelayer/gridroute/pkg/observability"
)

// stageProgress feeds pipeline stage transitions into a spinner so the
// message tracks what a long run is actually doing.
type stageProgress struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

// watchStages registers the spinner as the pipeline hook consumer. The
// returned func restores the noop hooks; callers defer it around Execute.
func watchStages(s *Spinner) func() {
	observability.SetPipelineHooks(stageProgress{spinner: s})
	return func() { observability.SetPipelineHooks(observability.NoopPipelineHooks{}) }
}

func (p stageProgress) OnLoadStart(_ context.Context, source string) {
	p.spinner.SetMessage(fmt.Sprintf("Loading %s...", source))
}

func (p stageProgress) OnRouteStart(_ context.Context, name string, requests int) {
	noun := "nets"
	if requests == 1 {
		noun = "net"
	}
	p.spinner.SetMessage(fmt.Sprintf("Routing %d %s in %s...", requests, noun, name))
}

func (p stageProgress) OnRenderStart(_ context.Context, formats []string) {
	p.spinner.SetMessage(fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
}
