package locale

import (
	"strings"
)

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code, also the phone region
	Name            string   // Human-readable country name
	DefaultTimezone string   // IANA timezone identifier
	TimeZones       []string // zones that map to this country
}

var Countries = map[string]Country{
	"BD": {
		Code:            "BD",
		Name:            "Bangladesh",
		DefaultTimezone: "Asia/Dhaka",
		TimeZones:       []string{"Asia/Dhaka", "Asia/Dacca"},
	},
	"US": {
		Code:            "US",
		Name:            "United States",
		DefaultTimezone: "America/New_York",
		TimeZones:       []string{"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles", "US/Eastern", "US/Pacific"},
	},
	"GB": {
		Code:            "GB",
		Name:            "United Kingdom",
		DefaultTimezone: "Europe/London",
		TimeZones:       []string{"Europe/London", "GB"},
	},
}

// DetectRegion maps a clinic time zone to a phone region. It returns "" for
// zones that belong to no known country, such as UTC.
func DetectRegion(tz string) string {
	tz = strings.TrimSpace(tz)
	for code, country := range Countries {
		for _, z := range country.TimeZones {
			if strings.EqualFold(tz, z) {
				return code
			}
		}
	}
	return ""
}
