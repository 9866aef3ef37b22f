package db

type Model struct {
	Name        string
	Position    int64
	Title       string
	Description string
	Url         string
	PullCount   string
	TagCount    string
	Updated     string
}

type ModelLabel struct {
	ModelName string
	Kind      LabelKind
	Position  int64
	Value     string
}

type ModelVersion struct {
	ModelName string
	Position  int64
	Name      string
	Digest    string
	Size      string
	Context   string
	Input     string
	Updated   string
}
