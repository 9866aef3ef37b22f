package ollama

import (
	"modelcatalog/internal/catalog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMergeVersions(t *testing.T) {
	desktop := []catalog.Version{
		{Name: "m:b", Digest: "bbb", Size: "2GB"},
		{Name: "m:a", Size: "1GB", Context: ""},
	}
	mobile := []catalog.Version{
		{Name: "m:a", Size: "9GB", Context: "8K", Input: "Text"},
		{Name: "m:c", Size: "3GB"},
		{Name: "", Size: "ignored"},
	}

	expected := []catalog.Version{
		{Name: "m:b", Digest: "bbb", Size: "2GB"},
		{Name: "m:a", Size: "1GB", Context: "8K", Input: "Text"},
		{Name: "m:c", Size: "3GB"},
	}
	if diff := cmp.Diff(expected, MergeVersions(desktop, mobile)); diff != "" {
		t.Fatal(diff)
	}
}

func TestMergeVersionsOneSided(t *testing.T) {
	only := []catalog.Version{{Name: "m:a", Size: "1GB"}, {Name: "m:a", Digest: "dup"}}

	require.Equal(t, []catalog.Version{{Name: "m:a", Digest: "dup", Size: "1GB"}}, MergeVersions(only, nil))
	require.Equal(t, []catalog.Version{{Name: "m:a", Digest: "dup", Size: "1GB"}}, MergeVersions(nil, only))
	require.Empty(t, MergeVersions(nil, nil))
}

func TestMergeVersionsWhitespaceIsEmpty(t *testing.T) {
	merged := MergeVersions(
		[]catalog.Version{{Name: "m:a", Size: "  "}},
		[]catalog.Version{{Name: "m:a", Size: "4GB"}},
	)
	require.Equal(t, "4GB", merged[0].Size)
}

func TestMergeModel(t *testing.T) {
	listing := catalog.Model{
		Name:         "llava",
		Capabilities: []string{"vision"},
		PullCount:    "5.1M",
	}
	detail := Detail{
		Title:        "llava",
		Summary:      "LLaVA is a multimodal model.",
		Capabilities: []string{"Vision", "tools"},
		Versions: []catalog.Version{
			{Name: "llava:7b"},
			{Name: "llava:13b"},
		},
	}

	merged := MergeModel(listing, detail)
	expected := catalog.Model{
		Name:         "llava",
		Title:        "llava",
		Description:  "LLaVA is a multimodal model.",
		Capabilities: []string{"vision", "tools"},
		PullCount:    "5.1M",
		TagCount:     "2",
		Versions:     detail.Versions,
	}
	if diff := cmp.Diff(expected, merged); diff != "" {
		t.Fatal(diff)
	}

	// the listing record is not aliased
	merged.Capabilities[0] = "changed"
	require.Equal(t, "vision", listing.Capabilities[0])
}

func TestMergeModelListingWins(t *testing.T) {
	listing := catalog.Model{
		Name:        "llava",
		Title:       "LLaVA",
		Description: "from the listing",
		TagCount:    "98",
	}
	detail := Detail{
		Title:    "llava",
		Summary:  "from the tags page",
		Versions: []catalog.Version{{Name: "llava:7b"}},
	}

	merged := MergeModel(listing, detail)
	require.Equal(t, "LLaVA", merged.Title)
	require.Equal(t, "from the listing", merged.Description)
	require.Equal(t, "98", merged.TagCount)
	require.Len(t, merged.Versions, 1)
}

func TestMergeModelWithoutDetail(t *testing.T) {
	listing := catalog.Model{Name: "qwen3", Versions: []catalog.Version{{Name: "qwen3:8b"}}}
	merged := MergeModel(listing, Detail{})
	require.Equal(t, listing.Versions, merged.Versions)
	require.Equal(t, "1", merged.TagCount)
}
