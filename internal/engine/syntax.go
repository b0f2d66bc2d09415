package engine

import (
	"regexp"
	"strings"
)

// addressPattern implements spec.md §4.2's simplified RFC-5322 shape:
// local@label(.label)+ with a TLD of at least two alphabetic characters.
var addressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@([A-Za-z0-9-]+\.)+[A-Za-z]{2,}$`)

// checkSyntax returns whether address has valid shape, plus its lower-cased
// domain and as-is local part when it does.
func checkSyntax(address string) (valid bool, local string, domain string) {
	if !addressPattern.MatchString(address) {
		return false, "", ""
	}
	at := strings.LastIndex(address, "@")
	return true, address[:at], strings.ToLower(address[at+1:])
}
