package reporting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/pkg/models"
)

const signedURLTTL = 15 * 60 // seconds

// ObjectStore is where exported documents are kept.
type ObjectStore interface {
	Enabled() bool
	ReportKey(kind, filename string) string
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	SignedURL(ctx context.Context, key string, expiresInSeconds int) (string, error)
	Delete(ctx context.Context, key string) error
}

type ExportRecorder interface {
	RecordExport(ctx context.Context, e *models.ReportExport) error
}

type Published struct {
	ExportID  uuid.UUID `json:"export_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
}

// Publisher uploads rendered exports and records them.
type Publisher struct {
	objects ObjectStore
	records ExportRecorder
	log     *zap.Logger
}

func NewPublisher(objects ObjectStore, records ExportRecorder, log *zap.Logger) *Publisher {
	return &Publisher{objects: objects, records: records, log: log}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.objects != nil && p.objects.Enabled()
}

// Publish uploads e, records it and returns a short-lived link. If the record
// cannot be written the uploaded object is removed again.
func (p *Publisher) Publish(ctx context.Context, actor uuid.UUID, e Export) (Published, error) {
	key := p.objects.ReportKey(e.Kind, e.Filename)
	if err := p.objects.Upload(ctx, key, e.Body, e.ContentType); err != nil {
		return Published{}, fmt.Errorf("upload export: %w", err)
	}

	rec := &models.ReportExport{Kind: e.Kind, Format: e.Format, ObjectKey: key, CreatedBy: actor}
	if err := p.records.RecordExport(ctx, rec); err != nil {
		if derr := p.objects.Delete(context.WithoutCancel(ctx), key); derr != nil {
			p.log.Error("orphaned export upload", zap.String("key", key), zap.Error(derr))
		}
		return Published{}, err
	}

	url, err := p.objects.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return Published{}, fmt.Errorf("sign export url: %w", err)
	}
	p.log.Info("report exported", zap.String("kind", e.Kind), zap.String("format", e.Format), zap.String("key", key))
	return Published{ExportID: rec.ID, ObjectKey: key, URL: url, Filename: e.Filename}, nil
}
