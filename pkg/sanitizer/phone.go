package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// supportedRegions are tried in order when a number has no country code.
var supportedRegions = []string{
	"BD",
	"US",
}

func NormalizePhone(phone string) string {
	return NormalizePhoneIn(phone, "")
}

// NormalizePhoneIn formats phone as E.164, reading national numbers as
// belonging to region first. An empty region uses supportedRegions only.
func NormalizePhoneIn(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	regions := supportedRegions
	if region != "" {
		regions = append([]string{region}, supportedRegions...)
	}

	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
