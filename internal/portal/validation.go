package portal

import (
	"fmt"
	"unicode/utf8"
)

// MaxSSIDLength is the 802.11 limit on SSID length in bytes.
const MaxSSIDLength = 32

// ValidateSSID checks that an SSID can be submitted at all. Passphrase and
// username are not validated here: the device decides what the chosen
// network's security mode requires.
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return newValidationError("no network selected")
	}
	if len(ssid) > MaxSSIDLength {
		return newValidationError(fmt.Sprintf("SSID is %d bytes, the limit is %d", len(ssid), MaxSSIDLength))
	}
	if !utf8.ValidString(ssid) {
		return newValidationError("SSID is not valid UTF-8")
	}
	return nil
}
