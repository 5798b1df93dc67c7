package inspect

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/model"
)

// Report pairs a component with its inspected state.
type Report struct {
	Component catalog.Component  `json:"component"`
	State     model.InstallState `json:"state"`
}

// InspectAll inspects components with at most parallel concurrent
// inspections. Reports follow the order of components.
func (i *Inspector) InspectAll(ctx context.Context, components []catalog.Component, parallel int) []Report {
	if parallel < 1 {
		parallel = 1
	}

	reports := make([]Report, len(components))
	pool := make(chan struct{}, parallel)
	var wg sync.WaitGroup

	for idx, comp := range components {
		wg.Add(1)
		go func(idx int, comp catalog.Component) {
			defer wg.Done()

			reports[idx] = Report{Component: comp, State: model.Absent()}

			select {
			case pool <- struct{}{}:
				defer func() { <-pool }()
			case <-ctx.Done():
				return
			}

			reports[idx].State = i.Inspect(ctx, comp.ID, comp.Channels())
		}(idx, comp)
	}

	wg.Wait()
	return reports
}
