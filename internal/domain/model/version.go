package model

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// CompareVersions orders two lot version strings and returns -1, 0 or +1.
// Dotted numeric versions compare numerically ("1.10" > "1.9"). A version
// that does not parse always sorts below one that does, and two unparsable
// versions compare lexically, so the order is total.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(strings.TrimSpace(a))
	vb, errB := goversion.NewVersion(strings.TrimSpace(b))
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// MaxVersion returns the greater of two version strings per CompareVersions.
// Ties return a.
func MaxVersion(a, b string) string {
	if CompareVersions(b, a) > 0 {
		return b
	}
	return a
}
