package audit

import (
	"regexp"
	"strconv"
)

// NextCode proposes the next code for kind given the already-persisted
// entries of that kind. A nil or empty listing yields prefix+"1".
//
// The result is only a suggestion. Two sessions can propose the same code;
// the backend rejects the second one.
func NextCode(kind Kind, existing []Entry) string {
	codes := make([]string, 0, len(existing))
	for _, e := range existing {
		codes = append(codes, e.Code)
	}
	return NextCodeWithPrefix(kind.Prefix(), codes)
}

// NextCodeWithPrefix matches codes case-insensitively against ^prefix(\d+)$
// and returns prefix followed by the largest suffix plus one.
func NextCodeWithPrefix(prefix string, codes []string) string {
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	highest := 0
	for _, c := range codes {
		m := re.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}
