package ollama

// listing page, /library
const (
	selListingItem       = "li[x-test-model]"
	selListingLink       = "a[href]"
	selListingTitle      = "[x-test-model-title]"
	selListingTitleText  = "[x-test-search-response-title], h2"
	selListingDesc       = "[x-test-model-title] p"
	selListingCapability = "[x-test-capability]"
	selListingSize       = "[x-test-size]"
	selListingPulls      = "[x-test-pull-count]"
	selListingTags       = "[x-test-tag-count]"
	selListingUpdated    = "[x-test-updated]"
)

// tags page, /library/<name>/tags
const (
	selDetailTitle      = "[x-test-model-name], h1"
	selDetailSummary    = "#summary-content"
	selDetailCapability = "[x-test-capability]"

	// narrow viewports render every version as a single anchor with a
	// decorated summary line
	selMobileRow     = `a[class~="md:hidden"][href^="/library/"]`
	selMobileName    = "span.font-medium"
	selMobileSummary = "div.text-neutral-500"

	// wide viewports render a grid, the first row is the column header
	selDesktopRow    = `div[class~="sm:grid"]`
	selDesktopName   = "span.col-span-6 a"
	selDesktopMeta   = "span.col-span-6 .text-neutral-500"
	selDesktopDigest = ".font-mono"
	selDesktopCell   = ".col-span-2"
)
