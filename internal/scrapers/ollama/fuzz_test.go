package ollama

import (
	"modelcatalog/internal/catalog"
	"strings"
	"testing"
)

// properties of a decorated line:
// - parsing never panics
// - every classified value is a trimmed substring of the input
func FuzzParseSummaryLine(f *testing.F) {
	f.Add("5.2GB · 128K context window · Text · 1 month ago")
	f.Add("274MB • 2K context window • Text, Image • yesterday")
	f.Add("·•··")
	f.Add("")

	f.Fuzz(func(t *testing.T, text string) {
		line := parseSummaryLine(text)
		for _, value := range []string{line.Size, line.Context, line.Updated} {
			if value == "" {
				continue
			}
			if value != strings.TrimSpace(value) || !strings.Contains(text, value) {
				t.Fatalf("%q is not a token of %q", value, text)
			}
		}
	})
}

func versionsFromNames(text string) []catalog.Version {
	var versions []catalog.Version
	for i, name := range strings.Split(text, ",") {
		v := catalog.Version{Name: name}
		if i%2 == 0 {
			v.Size = name + "-size"
		}
		versions = append(versions, v)
	}
	return versions
}

// properties of a merge:
// - names are unique and none are empty
// - every non-empty name of either side is present
// - desktop names keep the order of their first occurrence
func FuzzMergeVersions(f *testing.F) {
	f.Add("a,b,c", "c,d,a")
	f.Add("", "a")
	f.Add("a,a,,b", "b,,b")

	f.Fuzz(func(t *testing.T, desktopNames, mobileNames string) {
		desktop := versionsFromNames(desktopNames)
		mobile := versionsFromNames(mobileNames)
		merged := MergeVersions(desktop, mobile)

		seen := map[string]int{}
		for i, v := range merged {
			if v.Name == "" {
				t.Fatal("empty name in merge")
			}
			if _, ok := seen[v.Name]; ok {
				t.Fatalf("duplicate name %q", v.Name)
			}
			seen[v.Name] = i
		}

		last := -1
		visited := map[string]bool{}
		for _, v := range desktop {
			if v.Name == "" || visited[v.Name] {
				continue
			}
			visited[v.Name] = true
			i, ok := seen[v.Name]
			if !ok {
				t.Fatalf("desktop name %q missing", v.Name)
			}
			if i < last {
				t.Fatalf("desktop order broken at %q", v.Name)
			}
			last = i
		}
		for _, v := range mobile {
			if v.Name == "" {
				continue
			}
			if _, ok := seen[v.Name]; !ok {
				t.Fatalf("mobile name %q missing", v.Name)
			}
		}
	})
}
