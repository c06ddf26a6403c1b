package db

import (
	"context"
	"time"

	"github.com/stakelens/stakesync/internal/db/model"
	"github.com/stakelens/stakesync/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetSnapshot(ctx context.Context, address string) (result *model.SnapshotDocument, err error) {
	//nolint:errcheck
	d.run("GetSnapshot", func() error {
		result, err = d.db.GetSnapshot(ctx, address)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertSnapshot(ctx context.Context, doc *model.SnapshotDocument) error {
	return d.run("UpsertSnapshot", func() error {
		return d.db.UpsertSnapshot(ctx, doc)
	})
}

func (d *DbWithMetrics) DeleteSnapshot(ctx context.Context, address string) error {
	return d.run("DeleteSnapshot", func() error {
		return d.db.DeleteSnapshot(ctx, address)
	})
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	start := time.Now()
	err := f()
	metrics.RecordDbLatency(method, time.Since(start), err)
	return err
}
