package reconcile

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/inspect"
	"github.com/alexisbeaulieu97/gameready/internal/logger"
	"github.com/alexisbeaulieu97/gameready/internal/model"
)

// Confirmer asks the operator a yes/no question about a component.
type Confirmer interface {
	Confirm(ctx context.Context, component catalog.Component, question Question) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, component catalog.Component, question Question) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, component catalog.Component, question Question) (bool, error) {
	return f(ctx, component, question)
}

// Decision records how one component was reconciled.
type Decision struct {
	Component catalog.Component  `json:"component"`
	State     model.InstallState `json:"state"`
	Question  Question           `json:"question"`
	Action    Action             `json:"action"`
}

// Planner asks about each report in order.
type Planner struct {
	confirmer Confirmer
	log       *logger.Logger
}

// NewPlanner builds a Planner.
func NewPlanner(confirmer Confirmer, log *logger.Logger) *Planner {
	return &Planner{confirmer: confirmer, log: log}
}

// Plan returns one decision per report. It stops at the first confirmer
// error and returns the decisions made so far.
func (p *Planner) Plan(ctx context.Context, reports []inspect.Report) ([]Decision, error) {
	if p.confirmer == nil {
		return nil, fmt.Errorf("planner has no confirmer")
	}

	decisions := make([]Decision, 0, len(reports))
	for _, report := range reports {
		if err := ctx.Err(); err != nil {
			return decisions, err
		}

		question := Ask(report.State)
		choice, err := p.confirmer.Confirm(ctx, report.Component, question)
		if err != nil {
			return decisions, fmt.Errorf("confirm %s: %w", report.Component.ID, err)
		}

		action := Decide(report.State, choice)
		p.log.WithFields(map[string]any{
			"component": string(report.Component.ID),
			"question":  question.Kind.String(),
			"action":    action.Kind.String(),
		}).Info("component decided")

		decisions = append(decisions, Decision{
			Component: report.Component,
			State:     report.State,
			Question:  question,
			Action:    action,
		})
	}
	return decisions, nil
}
