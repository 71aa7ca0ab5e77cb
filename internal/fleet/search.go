package fleet

import (
	"strings"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// SearchResult is what the global search bar landed on. At most one of
// Vehicle and Driver is set.
type SearchResult struct {
	Vehicle *models.Vehicle `json:"vehicle,omitempty"`
	Driver  *models.Driver  `json:"driver,omitempty"`
}

// Search looks for the first vehicle whose name, driver or id contains
// query, then for the first driver whose name does. Matching ignores case.
func Search(s State, query string) (SearchResult, Effects) {
	var fx Effects
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		fx.toast("No matching records found", models.SeverityError)
		return SearchResult{}, fx
	}

	for _, v := range s.Vehicles {
		if strings.Contains(strings.ToLower(v.Name), term) ||
			strings.Contains(strings.ToLower(v.Driver), term) ||
			strings.Contains(strings.ToLower(v.ID), term) {
			found := v.Clone()
			fx.toast("Found vehicle: "+v.Name, models.SeveritySuccess)
			return SearchResult{Vehicle: &found}, fx
		}
	}
	for _, d := range s.Drivers {
		if strings.Contains(strings.ToLower(d.Name), term) {
			found := d
			fx.toast("Found driver: "+d.Name, models.SeveritySuccess)
			return SearchResult{Driver: &found}, fx
		}
	}

	fx.toast("No matching records found", models.SeverityError)
	return SearchResult{}, fx
}
