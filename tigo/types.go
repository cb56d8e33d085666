package tigo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// apiFloat tolerates the numbers the API sometimes emits as quoted
// strings. It marshals back as a plain JSON number.
type apiFloat float64

func (f *apiFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = apiFloat(v)
	return nil
}

// User describes the account returned by /users/view.
type User struct {
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Language  string `json:"language,omitempty"`
	Creation  string `json:"creation,omitempty"`
}

// System is one entry of the /systems listing. The same shape comes
// back from /systems/view.
type System struct {
	SystemID    int      `json:"system_id"`
	Name        string   `json:"name"`
	Status      string   `json:"status,omitempty"`
	PowerRating apiFloat `json:"power_rating,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	InstalledOn string   `json:"installed_on,omitempty"`
}

// Source is a power source (typically an inverter) attached to a system.
type Source struct {
	SourceID int    `json:"source_id"`
	Name     string `json:"name,omitempty"`
}

// Summary is the production snapshot returned by /data/summary.
type Summary struct {
	LastPowerDC      apiFloat `json:"last_power_dc"`
	DailyEnergyDC    apiFloat `json:"daily_energy_dc"`
	LifetimeEnergyDC apiFloat `json:"lifetime_energy_dc"`
	UpdatedOn        string   `json:"updated_on,omitempty"`
	Status           string   `json:"status,omitempty"`
}

// UpdatedAt parses the report time of the snapshot. The API writes
// times in the system's local timezone without an offset.
func (s Summary) UpdatedAt() (time.Time, bool) {
	t, err := time.Parse(timeLayout, s.UpdatedOn)
	return t, err == nil
}

// Alert is one entry of the /alerts/system listing.
type Alert struct {
	AlertID      int      `json:"alert_id"`
	AlertTypeID  int      `json:"alert_type_id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Status       string   `json:"status,omitempty"`
	AddedOn      string   `json:"added_on,omitempty"`
	ClearedOn    string   `json:"cleared_on,omitempty"`
	ObjectLabels []string `json:"object_labels,omitempty"`
}

// AlertType describes one alert classification from /alerts/types.
type AlertType struct {
	AlertTypeID int    `json:"alert_type_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// SystemInfo bundles the configuration surface of a single system.
// Layout is passed through as delivered by the API; its tree shape
// varies per installation.
type SystemInfo struct {
	System  System          `json:"system"`
	Layout  json.RawMessage `json:"layout,omitempty"`
	Sources []Source        `json:"sources"`
	Summary Summary         `json:"summary"`
}

// Response envelopes used for decoding only.
type (
	loginResponse struct {
		User struct {
			UserID int    `json:"user_id"`
			Auth   string `json:"auth"`
		} `json:"user"`
	}

	userResponse struct {
		User User `json:"user"`
	}

	systemsResponse struct {
		Systems []System `json:"systems"`
	}

	systemResponse struct {
		System System `json:"system"`
	}

	layoutResponse struct {
		SystemLayout json.RawMessage `json:"system_layout"`
	}

	sourcesResponse struct {
		Sources []Source `json:"sources"`
	}

	summaryResponse struct {
		Summary Summary `json:"summary"`
	}

	alertsResponse struct {
		Alerts []Alert `json:"alerts"`
	}

	alertTypesResponse struct {
		AlertTypes []AlertType `json:"alert_types"`
	}
)
