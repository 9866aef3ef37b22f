package db

import _ "embed"

//go:embed schema.sql
var Schema string

type LabelKind int64

const (
	LABEL_CAPABILITY LabelKind = iota
	LABEL_SIZE
)
