package atxpkg

import (
	"strconv"
	"strings"
)

// fnSuffix is the optional extension of a package archive filename.
const fnSuffix = ".atxpkg.zip"

// SplitNameVersion splits a package spec such as "atxpkg-1.5-3" or a
// package filename such as "atxpkg-1.5-3.atxpkg.zip" into its name and
// version parts (§4.1). The version is everything after the earliest
// hyphen whose remainder consists only of digits, dots and hyphens; if
// no such hyphen exists, version is empty and name is the whole spec.
//
// This mirrors split_package_name_version in the original
// implementation (a lazy name capture followed by an optional version
// capture): filenames whose name component itself contains
// "-<digits>" before the real version (e.g.
// "libfoo-2-stable-1.0-1") are inherently ambiguous. This is a known
// open question (§9, "Version parsing fragility"); we preserve source
// behavior rather than tightening the grammar.
func SplitNameVersion(spec string) (name, version string) {
	s := strings.TrimSuffix(spec, fnSuffix)

	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		candidate := s[i+1:]
		if candidate == "" || !isVersionRun(candidate) {
			continue
		}
		return s[:i], candidate
	}
	return s, ""
}

func isVersionRun(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

// PackageFilenameName returns the package name encoded in a repository
// filename (the last path component of a listing URL).
func PackageFilenameName(filename string) string {
	name, _ := SplitNameVersion(filename)
	return name
}

// PackageFilenameVersion returns the version encoded in a repository
// filename.
func PackageFilenameVersion(filename string) string {
	_, version := SplitNameVersion(filename)
	return version
}

// splitVersionParts splits a version string on '.' and '-' into a tuple
// of unsigned integers, as required by §4.1's ordering rule. Parts that
// fail to parse (should not normally happen for a well-formed version)
// are treated as zero.
func splitVersionParts(v string) []uint64 {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
	parts := make([]uint64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}

// CompareVersions returns -1, 0 or 1 according to whether v1 is less
// than, equal to, or greater than v2, comparing dotted/hyphenated
// unsigned-integer tuples lexicographically (§4.1, §8: "1.10-1 >
// 1.2-1", "20240722223043-1 > 20240722223042-1").
func CompareVersions(v1, v2 string) int {
	p1 := splitVersionParts(v1)
	p2 := splitVersionParts(v2)
	for i := 0; i < len(p1) || i < len(p2); i++ {
		var a, b uint64
		if i < len(p1) {
			a = p1[i]
		}
		if i < len(p2) {
			b = p2[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}
