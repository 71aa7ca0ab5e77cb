package fleet

import (
	"fmt"
	"strings"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Settings reducers replace a whole sub-object. There are no partial patches.

// UpdateGeneral replaces the company profile.
func UpdateGeneral(s State, g models.GeneralSettings) (State, Effects, error) {
	if strings.TrimSpace(g.CompanyName) == "" {
		return s, Effects{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	next := s.Clone()
	next.Settings.General = g
	return next, settingsSaved(), nil
}

// UpdateCosts replaces the cost defaults and the collaborator key. The new
// fuel price applies from the next tick on.
func UpdateCosts(s State, c models.CostSettings) (State, Effects, error) {
	if c.FuelPrice <= 0 {
		return s, Effects{}, fmt.Errorf("%w: fuel price must be positive", ErrInvalidInput)
	}
	if c.PerDiem < 0 {
		return s, Effects{}, fmt.Errorf("%w: per diem must not be negative", ErrInvalidInput)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	next := s.Clone()
	next.Settings.Costs = c
	return next, settingsSaved(), nil
}

// UpdateNotificationPrefs replaces the alert toggles.
func UpdateNotificationPrefs(s State, p models.NotificationPrefs) (State, Effects, error) {
	next := s.Clone()
	next.Settings.Notifications = p
	return next, settingsSaved(), nil
}

func settingsSaved() Effects {
	var fx Effects
	fx.toast("Settings saved", models.SeveritySuccess)
	return fx
}
