package ollama

import (
	"modelcatalog/internal/catalog"
	"modelcatalog/pkg/htmlutil"
	"modelcatalog/pkg/textutil"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// libraryName is the path segment following /library/ in href, an empty
// string when href does not point into the library.
func libraryName(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	rest, ok := strings.CutPrefix(path.Clean(link.Path), "/library/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}

func parseListingItem(item *goquery.Selection, base *url.URL) (catalog.Model, bool) {
	anchors := htmlutil.GetAnchors(base, item.Find(selListingLink).First())

	title := item.Find(selListingTitle).First()
	displayed := htmlutil.Text(title.Find(selListingTitleText))

	name := htmlutil.CleanText(title.AttrOr("title", ""))
	if name == "" {
		name = displayed
	}
	if name == "" {
		if href, ok := item.Find(selListingLink).Attr("href"); ok {
			name = libraryName(href)
		}
	}
	if name == "" {
		return catalog.Model{}, false
	}

	m := catalog.Model{
		Name:         name,
		Title:        displayed,
		Description:  htmlutil.Text(item.Find(selListingDesc)),
		Capabilities: textutil.Dedupe(htmlutil.Texts(item.Find(selListingCapability))),
		Sizes:        textutil.Dedupe(htmlutil.Texts(item.Find(selListingSize))),
		PullCount:    htmlutil.Text(item.Find(selListingPulls)),
		TagCount:     htmlutil.Text(item.Find(selListingTags)),
		Updated:      htmlutil.Text(item.Find(selListingUpdated)),
	}
	if len(anchors) > 0 {
		m.URL = anchors[0].Href
	}
	return m, true
}

// parseListing reads every model of the listing page, in page order.
func parseListing(doc *goquery.Document, base *url.URL) []catalog.Model {
	var models []catalog.Model
	doc.Find(selListingItem).Each(func(_ int, item *goquery.Selection) {
		m, ok := parseListingItem(item, base)
		if !ok {
			return
		}
		models = append(models, m)
	})
	return dedupeModels(models)
}

// dedupeModels keeps the first model of every name, order is preserved.
func dedupeModels(models []catalog.Model) []catalog.Model {
	seen := map[string]struct{}{}
	out := []catalog.Model{}
	for _, m := range models {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
