package textutils

import (
	"regexp"
	"strconv"
	"strings"
)

var installmentPattern = regexp.MustCompile(`(\d+)\s*(?:de|/)\s*(\d+)`)

// Installment is the position of a charge inside a multi-charge purchase.
type Installment struct {
	Current int
	Total   int
}

// ParseInstallment reads tokens such as "1 de 10" or "01/12". A bare integer
// means a single payment (1, 1). Anything else reports ok=false.
func ParseInstallment(raw string) (Installment, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Installment{}, false
	}

	if m := installmentPattern.FindStringSubmatch(s); m != nil {
		current, errC := strconv.Atoi(m[1])
		total, errT := strconv.Atoi(m[2])
		if errC == nil && errT == nil {
			return Installment{Current: current, Total: total}, true
		}
		return Installment{}, false
	}

	if isDigits(s) {
		return Installment{Current: 1, Total: 1}, true
	}
	return Installment{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
