package ollama

import "modelcatalog/internal/catalog"

// Detail is everything read off a model's tags page.
type Detail struct {
	Title        string
	Summary      string
	Capabilities []string
	// Desktop and Mobile are the rows of each layout as extracted, Versions
	// is their merge.
	Desktop  []catalog.Version
	Mobile   []catalog.Version
	Versions []catalog.Version
}
