package layout

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SortVersions orders game versions oldest first. Release-style versions ("1.20",
// "1.20.1") compare numerically; anything semver cannot parse (snapshots such as
// "24w14a") sorts after them, lexically.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, CompareVersions)
}

// CompareVersions compares two game versions using the SortVersions ordering
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)

	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
