package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/reconcile"
)

var (
	// ErrAborted is returned when the operator leaves a prompt with Esc or Ctrl+C.
	ErrAborted = errors.New("aborted by user")
	// ErrNotInteractive is returned when prompting without a terminal.
	ErrNotInteractive = errors.New("confirmation requires an interactive terminal; pass --yes or --no")
)

// Interactive reports whether stdin and stderr are both terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

var runFormFunc = func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) }

// HuhConfirmer asks each question with a huh confirm field rendered on stderr.
type HuhConfirmer struct {
	isTerminal func() bool
}

// NewHuhConfirmer returns a confirmer using the real terminal check.
func NewHuhConfirmer() *HuhConfirmer {
	return &HuhConfirmer{isTerminal: Interactive}
}

var _ reconcile.Confirmer = (*HuhConfirmer)(nil)

func confirmKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "abort"))
	return km
}

// Confirm implements reconcile.Confirmer.
func (c *HuhConfirmer) Confirm(ctx context.Context, component catalog.Component, question reconcile.Question) (bool, error) {
	if c.isTerminal != nil && !c.isTerminal() {
		return false, ErrNotInteractive
	}

	answer := question.Recommended()
	field := huh.NewConfirm().
		Title(question.Text(component.Name)).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if component.Description != "" {
		field = field.Description(component.Description)
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(confirmKeyMap()).
		WithProgramOptions(tea.WithOutput(os.Stderr))

	if err := runFormFunc(ctx, form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrAborted
		}
		return false, err
	}
	return answer, nil
}

// StaticConfirmer answers every question the same way and echoes it to Out.
// Reinstall questions are only accepted when Reinstall is also set.
type StaticConfirmer struct {
	Answer    bool
	Reinstall bool
	Out       io.Writer
}

var _ reconcile.Confirmer = StaticConfirmer{}

// Confirm implements reconcile.Confirmer.
func (c StaticConfirmer) Confirm(_ context.Context, component catalog.Component, question reconcile.Question) (bool, error) {
	ok := c.Answer
	if question.Kind == reconcile.AskReinstall {
		ok = ok && c.Reinstall
	}
	if c.Out != nil {
		answer := "no"
		if ok {
			answer = "yes"
		}
		fmt.Fprintf(c.Out, "%s %s\n", question.Text(component.Name), skippedStyle.Render(answer))
	}
	return ok, nil
}
