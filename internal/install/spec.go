package install

import "github.com/rpodgorny/atxpkg"

// Spec is a single "name[-version]" CLI argument. Version is empty
// when unpinned, in which case the caller resolves it to the maximum
// available version.
type Spec struct {
	Name    string
	Version string
}

// ParseSpec splits a bare package argument into name and version
// using the same grammar as package filenames.
func ParseSpec(s string) Spec {
	name, version := atxpkg.SplitNameVersion(s)
	return Spec{Name: name, Version: version}
}

// UpdateSpec is a single update argument, either "name[-version]"
// (rename-in-place) or "old[-ver]..new[-ver]" (rename-across-names).
type UpdateSpec struct {
	OldName, OldVersion string
	NewName, NewVersion string
}

// ParseUpdateSpec parses a single update argument.
func ParseUpdateSpec(s string) UpdateSpec {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			oldName, oldVersion := atxpkg.SplitNameVersion(s[:i])
			newName, newVersion := atxpkg.SplitNameVersion(s[i+2:])
			return UpdateSpec{oldName, oldVersion, newName, newVersion}
		}
	}
	name, version := atxpkg.SplitNameVersion(s)
	return UpdateSpec{name, "", name, version}
}
