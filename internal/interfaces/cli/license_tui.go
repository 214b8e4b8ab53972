package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"apppresser.com/updater/internal/core/domain"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

var errValidationCancelled = errors.New("validation cancelled")

// validateModel shows a spinner while one license request is in flight
type validateModel struct {
	plugin    string
	run       func() domain.LicenseResult
	cancel    context.CancelFunc
	frame     int
	started   time.Time
	elapsed   time.Duration
	done      bool
	cancelled bool
	result    domain.LicenseResult
}

// validationDoneMsg carries the finished request
type validationDoneMsg struct {
	result domain.LicenseResult
}

// spinnerTickMsg advances the spinner
type spinnerTickMsg time.Time

func newValidateModel(plugin string, run func() domain.LicenseResult, cancel context.CancelFunc) validateModel {
	return validateModel{
		plugin:  plugin,
		run:     run,
		cancel:  cancel,
		started: time.Now(),
	}
}

// Init implements the Bubble Tea init method
func (m validateModel) Init() tea.Cmd {
	return tea.Batch(m.validateCmd(), m.tickCmd())
}

// Update implements the Bubble Tea update method
func (m validateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		m.elapsed = time.Since(m.started)
		return m, m.tickCmd()

	case validationDoneMsg:
		m.done = true
		m.result = msg.result
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m validateModel) View() string {
	if m.cancelled {
		return warningStyle.Render("Validation cancelled") + "\n"
	}

	if m.done {
		footer := mutedStyle.Render(fmt.Sprintf("completed in %s", m.elapsed.Round(time.Millisecond)))
		return lipgloss.JoinVertical(lipgloss.Left,
			renderResult(m.plugin, domain.ActionActivate, m.result),
			footer,
		) + "\n"
	}

	line := fmt.Sprintf("%s Validating license for %s",
		validStyle.Render(spinnerFrames[m.frame]),
		titleStyle.Render(m.plugin),
	)
	controls := mutedStyle.Render("[q] Cancel")
	return lipgloss.JoinVertical(lipgloss.Left, line, controls) + "\n"
}

func (m validateModel) validateCmd() tea.Cmd {
	return func() tea.Msg {
		return validationDoneMsg{result: m.run()}
	}
}

func (m validateModel) tickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// runValidateTUI runs Validate behind an interactive progress view
func runValidateTUI(ctx context.Context, out io.Writer, container *CLIContainer, plugin, license string) error {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newValidateModel(plugin, func() domain.LicenseResult {
		return container.LicenseService.Validate(reqCtx, license, plugin)
	}, cancel)

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}

	m, ok := final.(validateModel)
	if !ok {
		return fmt.Errorf("unexpected model type %T", final)
	}
	if m.cancelled {
		return errValidationCancelled
	}
	if !m.result.OK() {
		return fmt.Errorf("license activate failed: %w", m.result.Err)
	}
	return nil
}
