package idno

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingDigits = regexp.MustCompile(`^\d+`)
	suffixPattern = regexp.MustCompile(`\.[PE]\d*$`)
)

// Section returns the leading section number of an identifier.
func Section(id string) (string, bool) {
	m := leadingDigits.FindString(id)
	return m, m != ""
}

// WithSuffix replaces any existing ".P"/".E" suffix of id with suffix. An
// empty id yields the suffix alone.
func WithSuffix(id, suffix string) string {
	if strings.TrimSpace(id) == "" {
		return suffix
	}
	return suffixPattern.ReplaceAllString(id, "") + suffix
}

// Compare orders identifiers segment by segment, comparing numeric segments
// by value, so "4.10" sorts after "4.9". Empty identifiers sort first.
func Compare(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
