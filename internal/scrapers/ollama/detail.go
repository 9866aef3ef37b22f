package ollama

import (
	"modelcatalog/internal/catalog"
	"modelcatalog/pkg/htmlutil"
	"modelcatalog/pkg/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// versionName qualifies a row's name with the model when the row only
// shows the tag, e.g. "3b-instruct-q8_0" -> "llama3.2:3b-instruct-q8_0".
func versionName(model, text, href string) string {
	name := strings.TrimSpace(text)
	if !strings.Contains(name, ":") {
		if linked := libraryName(href); strings.Contains(linked, ":") {
			return linked
		}
		if name != "" && model != "" {
			return model + ":" + name
		}
	}
	return name
}

func parseMobileRows(doc *goquery.Document, model string) []catalog.Version {
	var versions []catalog.Version
	doc.Find(selMobileRow).Each(func(_ int, row *goquery.Selection) {
		name := versionName(
			model,
			htmlutil.Text(row.Find(selMobileName)),
			row.AttrOr("href", ""),
		)
		if name == "" {
			return
		}
		line := parseSummaryLine(htmlutil.Text(row.Find(selMobileSummary)))
		versions = append(versions, catalog.Version{
			Name:    name,
			Size:    line.Size,
			Context: line.Context,
			Input:   line.Input,
			Updated: line.Updated,
		})
	})
	return versions
}

func parseDesktopRows(doc *goquery.Document, model string) []catalog.Version {
	var versions []catalog.Version
	doc.Find(selDesktopRow).Each(func(_ int, row *goquery.Selection) {
		link := row.Find(selDesktopName).First()
		// the column header row has no link
		if link.Length() == 0 {
			return
		}
		name := versionName(model, htmlutil.Text(link), link.AttrOr("href", ""))
		if name == "" {
			return
		}

		meta := row.Find(selDesktopMeta).First()
		v := catalog.Version{
			Name:   name,
			Digest: htmlutil.Text(meta.Find(selDesktopDigest)),
		}
		for _, token := range splitDecorated(htmlutil.Text(meta)) {
			if catalog.IsAge(token) {
				v.Updated = token
				break
			}
		}

		cells := row.Find(selDesktopCell)
		v.Size = htmlutil.Text(cells.Eq(0))
		v.Context = htmlutil.Text(cells.Eq(1))
		v.Input = htmlutil.Text(cells.Eq(2))

		versions = append(versions, v)
	})
	return versions
}

// parseDetail reads the tags page of `model`, both layouts are extracted
// and merged.
func parseDetail(doc *goquery.Document, model string) Detail {
	d := Detail{
		Title:        htmlutil.Text(doc.Find(selDetailTitle)),
		Summary:      htmlutil.Text(doc.Find(selDetailSummary)),
		Capabilities: textutil.Dedupe(htmlutil.Texts(doc.Find(selDetailCapability))),
		Mobile:       parseMobileRows(doc, model),
		Desktop:      parseDesktopRows(doc, model),
	}
	d.Versions = MergeVersions(d.Desktop, d.Mobile)
	return d
}
