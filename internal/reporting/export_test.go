package reporting_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/reporting"
	"github.com/lexpro/backoffice/pkg/models"
)

func TestRankingDocument(t *testing.T) {
	rows := reporting.RankLawyers(newFixture().cases)
	doc := reporting.RankingDocument(rows, day("2024-01-01"), time.Time{})

	assert.Equal(t, "ranking", doc.Kind)
	assert.Equal(t, "Desde 2024-01-01", doc.Subtitle)
	require.Len(t, doc.Tables, 1)
	tbl := doc.Tables[0]
	assert.Equal(t, []string{"#", "Profesional", "Casos", "Contratado", "Comisiones", "Com. Pagadas", "Cobrado Neto"}, tbl.Headers)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, 1, tbl.Rows[0][0])
	assert.Equal(t, "Ana", tbl.Rows[0][1])
	assert.Equal(t, "TOTALES", tbl.Foot[1])
}

func TestFinancesDocument_OmitsEmptyPaidTable(t *testing.T) {
	f := newFixture()
	f.cases[0].CaseLawyers[0].CommissionPaid = false

	doc := reporting.FinancesDocument(reporting.Summarize(f.cases), reporting.BuildLedger(f.cases, reporting.LedgerFilter{}))
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "Comisiones Pendientes", doc.Tables[1].Title)
	assert.Len(t, doc.Tables[1].Rows, 3)
}

func TestRenderXLSX(t *testing.T) {
	rows := reporting.RankLawyers(newFixture().cases)
	exp, err := reporting.Render(reporting.RankingDocument(rows, time.Time{}, time.Time{}), reporting.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, reporting.FormatXLSX, exp.Format)
	assert.Contains(t, exp.Filename, "ranking-")
	assert.Contains(t, exp.ContentType, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(exp.Body))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ranking de Profesionales", title)

	// Title, subtitle, blank spacer, header row, then Ana.
	name, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
	contracted, err := f.GetCellValue(sheet, "D5")
	require.NoError(t, err)
	assert.Equal(t, "10000", contracted)
}

func TestRenderPDF(t *testing.T) {
	f := newFixture()
	row, lines, ok := reporting.LawyerCases(f.cases, f.ana.ID)
	require.True(t, ok)

	exp, err := reporting.Render(reporting.LawyerDocument(row, lines, time.Time{}, time.Time{}), reporting.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", exp.ContentType)
	assert.True(t, bytes.HasPrefix(exp.Body, []byte("%PDF")))
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := reporting.Render(reporting.Document{Kind: "ranking"}, "docx")
	assert.Error(t, err)
}

/* =============================== Publisher ============================== */

type memObjects struct {
	uploaded map[string][]byte
	deleted  []string
}

func (m *memObjects) Enabled() bool { return true }
func (m *memObjects) ReportKey(kind, filename string) string {
	return "reports/" + kind + "/" + filename
}
func (m *memObjects) Upload(_ context.Context, key string, body []byte, _ string) error {
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[key] = body
	return nil
}
func (m *memObjects) SignedURL(_ context.Context, key string, _ int) (string, error) {
	return "https://files.test/" + key + "?token=t", nil
}
func (m *memObjects) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.uploaded, key)
	return nil
}

type recorderFunc func(ctx context.Context, e *models.ReportExport) error

func (f recorderFunc) RecordExport(ctx context.Context, e *models.ReportExport) error { return f(ctx, e) }

func TestPublisher(t *testing.T) {
	exp := reporting.Export{Kind: "finances", Format: reporting.FormatPDF, Filename: "finances.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}
	actor := uuid.New()

	t.Run("uploads records and signs", func(t *testing.T) {
		objs := &memObjects{}
		id := uuid.New()
		var got *models.ReportExport
		pub := reporting.NewPublisher(objs, recorderFunc(func(_ context.Context, e *models.ReportExport) error {
			e.ID = id
			got = e
			return nil
		}), zap.NewNop())

		out, err := pub.Publish(context.Background(), actor, exp)
		require.NoError(t, err)
		assert.Equal(t, id, out.ExportID)
		assert.Equal(t, "reports/finances/finances.pdf", out.ObjectKey)
		assert.Contains(t, out.URL, "token=")
		require.NotNil(t, got)
		assert.Equal(t, actor, got.CreatedBy)
		assert.Contains(t, objs.uploaded, out.ObjectKey)
	})

	t.Run("record failure removes the upload", func(t *testing.T) {
		objs := &memObjects{}
		boom := errors.New("insert failed")
		pub := reporting.NewPublisher(objs, recorderFunc(func(context.Context, *models.ReportExport) error { return boom }), zap.NewNop())

		_, err := pub.Publish(context.Background(), actor, exp)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"reports/finances/finances.pdf"}, objs.deleted)
		assert.Empty(t, objs.uploaded)
	})

	t.Run("nil publisher is disabled", func(t *testing.T) {
		var pub *reporting.Publisher
		assert.False(t, pub.Enabled())
	})
}
