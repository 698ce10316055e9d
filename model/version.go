package model

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed server version, compared component by component as integers
type Version struct {
	raw    string
	parsed *semver.Version
}

// ParseVersion parses a dotted version like "7.2.4" or "3.2", missing components are 0
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	parsed, err := semver.NewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", raw, err)
	}
	return Version{raw: trimmed, parsed: parsed}, nil
}

// MustParseVersion is `ParseVersion` for constants
func MustParseVersion(raw string) Version {
	version, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return version
}

// Parts is the (major, minor, patch) tuple
func (version Version) Parts() []uint64 {
	if version.parsed == nil {
		return []uint64{0, 0, 0}
	}
	return []uint64{version.parsed.Major(), version.parsed.Minor(), version.parsed.Patch()}
}

// Compare returns -1, 0 or 1, the first differing component decides
func (version Version) Compare(other Version) int {
	mine, theirs := version.Parts(), other.Parts()
	for i := range mine {
		switch {
		case mine[i] > theirs[i]:
			return 1
		case mine[i] < theirs[i]:
			return -1
		}
	}
	return 0
}

// AtLeast is `Compare(other) >= 0`
func (version Version) AtLeast(other Version) bool {
	return version.Compare(other) >= 0
}

func (version Version) String() string {
	if version.parsed == nil {
		return "unknown"
	}
	return version.raw
}

// MarshalText keeps the version readable in json/yaml reports
func (version Version) MarshalText() ([]byte, error) {
	return []byte(version.String()), nil
}

// CompareVersions compares two dotted version strings, unparsable input sorts first
func CompareVersions(a, b string) int {
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
