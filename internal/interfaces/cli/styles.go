package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"apppresser.com/updater/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	validStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46"))

	invalidStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// renderStatus colors a license status
func renderStatus(status domain.LicenseStatus) string {
	if status.IsValid() {
		return validStyle.Render(status.String())
	}
	return invalidStyle.Render(status.String())
}

// renderResult renders the outcome of one licensing call
func renderResult(plugin string, action domain.LicenseAction, result domain.LicenseResult) string {
	if status, ok := result.Lookup(); ok {
		return fmt.Sprintf("%s %s: %s", titleStyle.Render(plugin), mutedStyle.Render(actionLabel(action)), renderStatus(status))
	}
	return warningStyle.Render(fmt.Sprintf("Could not determine license status for %s (%s)", plugin, result.Kind))
}

func actionLabel(action domain.LicenseAction) string {
	switch action {
	case domain.ActionCheck:
		return "check"
	case domain.ActionDeactivate:
		return "deactivate"
	default:
		return "activate"
	}
}

// renderLicenseSet shows whether a license is stored without revealing it
func renderLicenseSet(license string) string {
	if license == "" {
		return mutedStyle.Render("(not set)")
	}
	return maskLicense(license)
}

// maskLicense masks the license key for display
func maskLicense(license string) string {
	if len(license) <= 8 {
		return "***"
	}
	return license[:4] + "..." + license[len(license)-4:]
}
