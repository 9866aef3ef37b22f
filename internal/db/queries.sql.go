package db

import (
	"context"
)

const createLabel = `
INSERT INTO model_label (model_name, kind, position, value)
VALUES (?, ?, ?, ?)
`

type CreateLabelParams struct {
	ModelName string
	Kind      LabelKind
	Position  int64
	Value     string
}

func (q *Queries) CreateLabel(ctx context.Context, arg CreateLabelParams) error {
	_, err := q.db.ExecContext(ctx, createLabel,
		arg.ModelName,
		int64(arg.Kind),
		arg.Position,
		arg.Value,
	)
	return err
}

const createModel = `
INSERT INTO model (name, position, title, description, url, pull_count, tag_count, updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateModelParams struct {
	Name        string
	Position    int64
	Title       string
	Description string
	Url         string
	PullCount   string
	TagCount    string
	Updated     string
}

func (q *Queries) CreateModel(ctx context.Context, arg CreateModelParams) error {
	_, err := q.db.ExecContext(ctx, createModel,
		arg.Name,
		arg.Position,
		arg.Title,
		arg.Description,
		arg.Url,
		arg.PullCount,
		arg.TagCount,
		arg.Updated,
	)
	return err
}

const createVersion = `
INSERT INTO model_version (model_name, position, name, digest, size, context, input, updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateVersionParams struct {
	ModelName string
	Position  int64
	Name      string
	Digest    string
	Size      string
	Context   string
	Input     string
	Updated   string
}

func (q *Queries) CreateVersion(ctx context.Context, arg CreateVersionParams) error {
	_, err := q.db.ExecContext(ctx, createVersion,
		arg.ModelName,
		arg.Position,
		arg.Name,
		arg.Digest,
		arg.Size,
		arg.Context,
		arg.Input,
		arg.Updated,
	)
	return err
}

const deleteAllModels = `
DELETE FROM model
`

func (q *Queries) DeleteAllModels(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllModels)
	return err
}

const getAllLabels = `
SELECT model_name, kind, position, value FROM model_label
ORDER BY model_name, kind, position
`

func (q *Queries) GetAllLabels(ctx context.Context) ([]ModelLabel, error) {
	rows, err := q.db.QueryContext(ctx, getAllLabels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModelLabel
	for rows.Next() {
		var i ModelLabel
		var kind int64
		if err := rows.Scan(
			&i.ModelName,
			&kind,
			&i.Position,
			&i.Value,
		); err != nil {
			return nil, err
		}
		i.Kind = LabelKind(kind)
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAllModels = `
SELECT name, position, title, description, url, pull_count, tag_count, updated FROM model
ORDER BY position
`

func (q *Queries) GetAllModels(ctx context.Context) ([]Model, error) {
	rows, err := q.db.QueryContext(ctx, getAllModels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Model
	for rows.Next() {
		var i Model
		if err := rows.Scan(
			&i.Name,
			&i.Position,
			&i.Title,
			&i.Description,
			&i.Url,
			&i.PullCount,
			&i.TagCount,
			&i.Updated,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAllVersions = `
SELECT model_name, position, name, digest, size, context, input, updated FROM model_version
ORDER BY model_name, position
`

func (q *Queries) GetAllVersions(ctx context.Context) ([]ModelVersion, error) {
	rows, err := q.db.QueryContext(ctx, getAllVersions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModelVersion
	for rows.Next() {
		var i ModelVersion
		if err := rows.Scan(
			&i.ModelName,
			&i.Position,
			&i.Name,
			&i.Digest,
			&i.Size,
			&i.Context,
			&i.Input,
			&i.Updated,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUpdatedAt = `
SELECT updated_at FROM catalog_meta WHERE id = 1
`

func (q *Queries) GetUpdatedAt(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUpdatedAt)
	var updated_at int64
	err := row.Scan(&updated_at)
	return updated_at, err
}

const setUpdatedAt = `
INSERT INTO catalog_meta (id, updated_at) VALUES (1, ?)
ON CONFLICT (id) DO UPDATE SET updated_at = excluded.updated_at
`

func (q *Queries) SetUpdatedAt(ctx context.Context, updatedAt int64) error {
	_, err := q.db.ExecContext(ctx, setUpdatedAt, updatedAt)
	return err
}
