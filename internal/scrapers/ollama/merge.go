package ollama

import (
	"modelcatalog/internal/catalog"
	"modelcatalog/pkg/textutil"
	"slices"
	"strconv"
	"strings"
)

func preferNonEmpty(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return fallback
}

func fillVersion(dst *catalog.Version, src catalog.Version) {
	dst.Digest = preferNonEmpty(dst.Digest, src.Digest)
	dst.Size = preferNonEmpty(dst.Size, src.Size)
	dst.Context = preferNonEmpty(dst.Context, src.Context)
	dst.Input = preferNonEmpty(dst.Input, src.Input)
	dst.Updated = preferNonEmpty(dst.Updated, src.Updated)
}

// MergeVersions joins the rows of both layouts by version name. Desktop
// rows come first in their own order followed by mobile only rows, every
// field keeps the desktop value unless it is empty.
func MergeVersions(desktop, mobile []catalog.Version) []catalog.Version {
	var out []catalog.Version
	index := map[string]int{}
	add := func(v catalog.Version) {
		if v.Name == "" {
			return
		}
		if i, ok := index[v.Name]; ok {
			fillVersion(&out[i], v)
			return
		}
		index[v.Name] = len(out)
		out = append(out, v)
	}
	for _, v := range desktop {
		add(v)
	}
	for _, v := range mobile {
		add(v)
	}
	return out
}

// MergeModel completes a listing record with its detail page, listing
// fields win when non-empty.
func MergeModel(listing catalog.Model, detail Detail) catalog.Model {
	out := listing.Clone()
	out.Title = preferNonEmpty(out.Title, detail.Title)
	out.Description = preferNonEmpty(out.Description, detail.Summary)
	out.Capabilities = textutil.Dedupe(append(out.Capabilities, detail.Capabilities...))
	if len(detail.Versions) > 0 {
		out.Versions = slices.Clone(detail.Versions)
	}
	if out.TagCount == "" && len(out.Versions) > 0 {
		out.TagCount = strconv.Itoa(len(out.Versions))
	}
	return out
}
