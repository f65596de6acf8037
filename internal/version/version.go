// Package version parses the "asyncapi" version string of a document and decides
// whether its components layout is one the generator understands.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported is the range of AsyncAPI major versions whose components.schemas and
// components.messages sections share the layout the generator reads.
var Supported = []int{2, 3}

type Version struct {
	Major int
	Minor int
	Patch int
}

func New(major, minor, patch int) *Version {
	return &Version{
		Major: major,
		Minor: minor,
		Patch: patch,
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) Equal(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

func (v Version) GreaterThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch > other.Patch
}

func (v Version) LessThan(other Version) bool {
	return !v.Equal(other) && !v.GreaterThan(other)
}

// IsSupported reports whether the major version is in Supported.
func (v Version) IsSupported() bool {
	for _, major := range Supported {
		if v.Major == major {
			return true
		}
	}
	return false
}

// Parse parses "major.minor[.patch]". A missing patch is treated as 0 and pre-release
// or build suffixes ("3.0.0-rc1", "2.6.0+build") are ignored.
func Parse(version string) (*Version, error) {
	core := strings.TrimSpace(version)
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}

	parts := strings.Split(core, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid version %s", version)
	}
	if len(parts) == 2 {
		parts = append(parts, "0")
	}

	nums := make([]int, len(parts))
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s version %s: %w", name, parts[i], err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid %s version %s: cannot be negative", name, parts[i])
		}
		nums[i] = n
	}

	return New(nums[0], nums[1], nums[2]), nil
}
