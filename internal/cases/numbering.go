package cases

import (
	"fmt"
	"strconv"
	"strings"
)

// NextCaseNumber returns "YYYY-NNNN" for the given year: the highest existing
// sequence of that year plus one. Gaps are never refilled. Numbers from other
// years and malformed numbers are ignored.
func NextCaseNumber(year int, existing []string) string {
	prefix := fmt.Sprintf("%04d-", year)
	max := 0
	for _, n := range existing {
		n = strings.TrimSpace(n)
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(n[len(prefix):])
		if err != nil || seq < 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%04d", prefix, max+1)
}
