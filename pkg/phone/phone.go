package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize parses a phone number and formats it to E.164, using region as
// the default country when no country code is present.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", phonenumbers.ErrNotANumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
