package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/db"
	"modelcatalog/pkg/migrations"
	"time"
)

const (
	report_db_query = "db.query"
)

// DBStore keeps the snapshot in sqlite, every Save replaces all rows in a
// single transaction.
type DBStore struct {
	sqlDB  *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

func OpenDBStore(path string, tel telemetry.API) (DBStore, error) {
	sqlDB, err := migrations.OpenAndMigrateDB(db.Schema, path)
	if err != nil {
		return DBStore{}, err
	}
	return NewDBStore(sqlDB, tel), nil
}

func NewDBStore(sqlDB *sql.DB, tel telemetry.API) DBStore {
	return DBStore{
		sqlDB:  sqlDB,
		qry:    db.New(sqlDB),
		makeTx: db.NewMakeTx(sqlDB),
		tel:    telemetry.NewScopedAPI("snapshot", tel),
	}
}

func (s DBStore) Close() error {
	return s.sqlDB.Close()
}

func (s DBStore) saveModel(ctx context.Context, tx *db.Queries, position int, m catalog.Model) error {
	param := db.CreateModelParams{
		Name:        m.Name,
		Position:    int64(position),
		Title:       m.Title,
		Description: m.Description,
		Url:         m.URL,
		PullCount:   m.PullCount,
		TagCount:    m.TagCount,
		Updated:     m.Updated,
	}
	err := tx.CreateModel(ctx, param)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateModel", m.Name)
		return err
	}

	labels := func(kind db.LabelKind, values []string) error {
		for i, value := range values {
			param := db.CreateLabelParams{
				ModelName: m.Name,
				Kind:      kind,
				Position:  int64(i),
				Value:     value,
			}
			err := tx.CreateLabel(ctx, param)
			if err != nil {
				s.tel.ReportBroken(report_db_query, err, "CreateLabel", param)
				return err
			}
		}
		return nil
	}
	err = labels(db.LABEL_CAPABILITY, m.Capabilities)
	if err != nil {
		return err
	}
	err = labels(db.LABEL_SIZE, m.Sizes)
	if err != nil {
		return err
	}

	for i, v := range m.Versions {
		param := db.CreateVersionParams{
			ModelName: m.Name,
			Position:  int64(i),
			Name:      v.Name,
			Digest:    v.Digest,
			Size:      v.Size,
			Context:   v.Context,
			Input:     v.Input,
			Updated:   v.Updated,
		}
		err := tx.CreateVersion(ctx, param)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "CreateVersion", param)
			return err
		}
	}
	return nil
}

func (s DBStore) Save(ctx context.Context, doc Document) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	err = tx.DeleteAllModels(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteAllModels")
		return err
	}
	for i, m := range doc.Models {
		err = s.saveModel(ctx, tx, i, m)
		if err != nil {
			return err
		}
	}
	err = tx.SetUpdatedAt(ctx, doc.UpdatedAt.UnixMilli())
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "SetUpdatedAt")
		return err
	}

	return commit()
}

func (s DBStore) Load(ctx context.Context) (Document, error) {
	updatedAt, err := s.qry.GetUpdatedAt(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNoSnapshot
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetUpdatedAt")
		return Document{}, err
	}

	dbModels, err := s.qry.GetAllModels(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetAllModels")
		return Document{}, err
	}
	dbLabels, err := s.qry.GetAllLabels(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetAllLabels")
		return Document{}, err
	}
	dbVersions, err := s.qry.GetAllVersions(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetAllVersions")
		return Document{}, err
	}

	models := make([]catalog.Model, len(dbModels))
	index := make(map[string]int, len(dbModels))
	for i, row := range dbModels {
		index[row.Name] = i
		models[i] = catalog.Model{
			Name:        row.Name,
			Title:       row.Title,
			Description: row.Description,
			URL:         row.Url,
			PullCount:   row.PullCount,
			TagCount:    row.TagCount,
			Updated:     row.Updated,
		}
	}
	// labels and versions come back ordered by position within a model
	for _, row := range dbLabels {
		i, ok := index[row.ModelName]
		if !ok {
			continue
		}
		switch row.Kind {
		case db.LABEL_CAPABILITY:
			models[i].Capabilities = append(models[i].Capabilities, row.Value)
		case db.LABEL_SIZE:
			models[i].Sizes = append(models[i].Sizes, row.Value)
		}
	}
	for _, row := range dbVersions {
		i, ok := index[row.ModelName]
		if !ok {
			continue
		}
		models[i].Versions = append(models[i].Versions, catalog.Version{
			Name:    row.Name,
			Digest:  row.Digest,
			Size:    row.Size,
			Context: row.Context,
			Input:   row.Input,
			Updated: row.Updated,
		})
	}

	return Document{
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
		Models:    models,
	}, nil
}
