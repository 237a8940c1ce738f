package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/internal/store"
	"github.com/lexpro/backoffice/pkg/database"
	"github.com/lexpro/backoffice/pkg/models"
)

/* ============================================================================
   Helpers
   ============================================================================ */

// openTestDB loads TEST_DATABASE_URL, opens a real Postgres connection,
// runs migrations, and registers a cleanup that truncates test tables after run.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is empty")
	}
	db, err := database.Open(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sql := `
TRUNCATE TABLE
	case_histories,
	report_exports,
	case_lawyers,
	cases,
	lawyers,
	legal_services,
	clients
RESTART IDENTITY CASCADE`
		if err := db.Exec(sql).Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})

	return db
}

// withTx wraps a function in a DB transaction and commits it at the end.
// If the function panics, the transaction is rolled back and the panic is rethrown.
func withTx(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	fn(tx)
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit tx: %v", err)
	}
}

// injectAuth makes MustUserID / MustRole happy without a real JWT.
func injectAuth(userID uuid.UUID, role string) fiber.Handler {
	id := userID.String()
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		c.Locals("role", role)
		return c.Next()
	}
}

type storeLister struct{ p *store.Postgres }

func (l storeLister) Cases(ctx context.Context) ([]models.Case, error) { return l.p.ListCases(ctx) }

func newHandler(tx *gorm.DB) *Handler {
	p := store.New(tx, 5*time.Second, zap.NewNop())
	svc := NewService(p, cache.New(nil, 0, zap.NewNop()), zap.NewNop())
	return NewHandler(svc, storeLister{p})
}

// newTestApp registers routes in a safe order for tests.
// Static paths (like /next-number) are added BEFORE parameterized ones (/:id).
func newTestApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(zap.NewNop())})
	app.Use(injectAuth(uuid.New(), "authenticated"))

	app.Get("/api/cases/next-number", h.NextNumber)
	app.Get("/api/cases", h.List)
	app.Post("/api/cases", h.Create)
	app.Get("/api/cases/:id", h.Get)
	app.Put("/api/cases/:id", h.Update)
	app.Delete("/api/cases/:id", h.Delete)
	app.Post("/api/cases/:id/lawyers", h.AddLawyer)
	app.Put("/api/allocations/:id", h.UpdateAllocation)
	app.Delete("/api/allocations/:id", h.RemoveAllocation)
	return app
}

type seed struct {
	ClientID  uuid.UUID
	ServiceID uuid.UUID
	Ana       uuid.UUID
	Beto      uuid.UUID
	Retired   uuid.UUID
}

// seedCatalog inserts one client, one service (8000, 15%) and three lawyers.
func seedCatalog(t *testing.T, tx *gorm.DB) seed {
	t.Helper()
	cl := models.Client{Name: "Acme SA"}
	svc := models.LegalService{
		Name:                 "Divorcio",
		BasePrice:            decimal.NewFromInt(8000),
		CommissionType:       models.CommissionPercentage,
		CommissionPercentage: decimal.NewFromInt(15),
		IsActive:             true,
	}
	ana := models.Lawyer{Name: "Ana Ruiz", Status: models.LawyerActive}
	beto := models.Lawyer{Name: "Beto Paz", Status: models.LawyerActive}
	retired := models.Lawyer{Name: "Old Timer", Status: models.LawyerInactive}
	for _, v := range []any{&cl, &svc, &ana, &beto, &retired} {
		if err := tx.Create(v).Error; err != nil {
			t.Fatal(err)
		}
	}
	return seed{ClientID: cl.ID, ServiceID: svc.ID, Ana: ana.ID, Beto: beto.ID, Retired: retired.ID}
}

func postJSON(app *fiber.App, method, url, body string) (*httptestResp, error) {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out := &httptestResp{Status: resp.StatusCode}
	_ = json.NewDecoder(resp.Body).Decode(&out.Body)
	return out, nil
}

type httptestResp struct {
	Status int
	Body   map[string]any
}

type createdBody struct {
	Case   models.Case `json:"case"`
	Report Report      `json:"report"`
}

func createCase(t *testing.T, app *fiber.App, body string) createdBody {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/cases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		var e map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("create: status %d body %v", resp.StatusCode, e)
	}
	var out createdBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

/* ============================================================================
   Tests
   ============================================================================ */

// Two lawyers, 20% and fixed 500 on a 10000 case.
func Test_Create_TwoLawyers_ComputesSnapshots(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))

		out := createCase(t, app, fmt.Sprintf(`{
			"client_id": %q, "service_id": %q, "total_amount": 10000,
			"lawyers": [
				{"lawyer_id": %q, "commission_type": "percentage", "commission_percentage": 20},
				{"lawyer_id": %q, "commission_type": "fixed", "commission_amount": 500}
			]}`, s.ClientID, s.ServiceID, s.Ana, s.Beto))

		want := fmt.Sprintf("%d-0001", time.Now().Year())
		if out.Case.CaseNumber != want {
			t.Fatalf("case number %q, want %q", out.Case.CaseNumber, want)
		}
		if !out.Case.CommissionAmount.Equal(decimal.NewFromInt(2500)) {
			t.Fatalf("commission_amount %s, want 2500", out.Case.CommissionAmount)
		}
		if len(out.Case.CaseLawyers) != 2 {
			t.Fatalf("want 2 allocations, got %d", len(out.Case.CaseLawyers))
		}
		amounts := map[uuid.UUID]decimal.Decimal{}
		for _, cl := range out.Case.CaseLawyers {
			amounts[cl.LawyerID] = cl.CommissionAmount
		}
		if !amounts[s.Ana].Equal(decimal.NewFromInt(2000)) || !amounts[s.Beto].Equal(decimal.NewFromInt(500)) {
			t.Fatalf("unexpected amounts %v", amounts)
		}
		if len(out.Report.Steps) != 3 {
			t.Fatalf("want 3 steps (case + 2 allocations), got %+v", out.Report.Steps)
		}
	})
}

// Omitted total and rule fall back to the service's defaults.
func Test_Create_DefaultsFromService_AndSequentialNumbers(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))

		body := fmt.Sprintf(`{"client": {"name": "Nueva SA"}, "service_id": %q, "lawyers": [{"lawyer_id": %q}]}`, s.ServiceID, s.Ana)
		first := createCase(t, app, body)
		second := createCase(t, app, body)

		if !first.Case.TotalAmount.Equal(decimal.NewFromInt(8000)) {
			t.Fatalf("total %s, want base price 8000", first.Case.TotalAmount)
		}
		if !first.Case.CommissionAmount.Equal(decimal.NewFromInt(1200)) {
			t.Fatalf("commission %s, want 1200", first.Case.CommissionAmount)
		}
		if !strings.HasSuffix(second.Case.CaseNumber, "-0002") {
			t.Fatalf("second number %q", second.Case.CaseNumber)
		}
		if first.Report.Steps[0].Name != "client" {
			t.Fatalf("first step should create the client, got %+v", first.Report.Steps)
		}
	})
}

func Test_Create_RejectsInactiveLawyer(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))

		resp, err := postJSON(app, "POST", "/api/cases", fmt.Sprintf(
			`{"client_id": %q, "service_id": %q, "lawyers": [{"lawyer_id": %q}]}`, s.ClientID, s.ServiceID, s.Retired))
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != fiber.StatusBadRequest {
			t.Fatalf("status %d", resp.Status)
		}
		errs, _ := resp.Body["errors"].(map[string]any)
		if _, ok := errs["lawyers[0].lawyer_id"]; !ok {
			t.Fatalf("missing field error, got %v", resp.Body)
		}

		var n int64
		tx.Model(&models.Case{}).Count(&n)
		if n != 0 {
			t.Fatalf("no case should be written, got %d", n)
		}
	})
}

func Test_Create_RequiresLawyers(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))

		resp, err := postJSON(app, "POST", "/api/cases", fmt.Sprintf(`{"client_id": %q, "service_id": %q, "lawyers": []}`, s.ClientID, s.ServiceID))
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != fiber.StatusBadRequest {
			t.Fatalf("status %d", resp.Status)
		}
	})
}

// A legacy case shows up in the list exactly like a one-row allocation.
func Test_List_LegacyCaseUsesFallbackLawyer(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		legacy := models.Case{
			CaseNumber:       "2023-0009",
			ClientID:         &s.ClientID,
			LawyerID:         &s.Beto,
			TotalAmount:      decimal.NewFromInt(4000),
			CommissionAmount: decimal.NewFromInt(600),
			StartDate:        time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := tx.Create(&legacy).Error; err != nil {
			t.Fatal(err)
		}
		app := newTestApp(newHandler(tx))

		resp, err := app.Test(httptest.NewRequest("GET", "/api/cases?search=beto", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		var page PageCases
		_ = json.NewDecoder(resp.Body).Decode(&page)
		if page.Total != 1 {
			t.Fatalf("want 1 match, got %d", page.Total)
		}
		lv := page.Items[0].Lawyers
		if lv.Unassigned || len(lv.Names) != 1 || lv.Names[0] != "Beto Paz" || !lv.TotalCommission.Equal(decimal.NewFromInt(600)) {
			t.Fatalf("unexpected lawyer view %+v", lv)
		}
	})
}

// Editing the total recomputes unpaid percentage snapshots; fixed ones stay.
func Test_Update_TotalRecomputesPercentages(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))
		created := createCase(t, app, fmt.Sprintf(`{
			"client_id": %q, "service_id": %q, "total_amount": 10000,
			"lawyers": [
				{"lawyer_id": %q, "commission_type": "percentage", "commission_percentage": 20},
				{"lawyer_id": %q, "commission_type": "fixed", "commission_amount": 500}
			]}`, s.ClientID, s.ServiceID, s.Ana, s.Beto))

		resp, err := postJSON(app, "PUT", "/api/cases/"+created.Case.ID.String(), `{"total_amount": 15000}`)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != fiber.StatusOK {
			t.Fatalf("status %d body %v", resp.Status, resp.Body)
		}

		var rows []models.CaseLawyer
		tx.Where("case_id = ?", created.Case.ID).Find(&rows)
		for _, r := range rows {
			switch r.LawyerID {
			case s.Ana:
				if !r.CommissionAmount.Equal(decimal.NewFromInt(3000)) {
					t.Fatalf("percentage row %s, want 3000", r.CommissionAmount)
				}
			case s.Beto:
				if !r.CommissionAmount.Equal(decimal.NewFromInt(500)) {
					t.Fatalf("fixed row %s, want 500", r.CommissionAmount)
				}
			}
		}
	})
}

func Test_RemoveAllocation_LastLawyerRejected(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		s := seedCatalog(t, tx)
		app := newTestApp(newHandler(tx))
		created := createCase(t, app, fmt.Sprintf(
			`{"client_id": %q, "service_id": %q, "lawyers": [{"lawyer_id": %q}]}`, s.ClientID, s.ServiceID, s.Ana))

		id := created.Case.CaseLawyers[0].ID
		resp, err := app.Test(httptest.NewRequest("DELETE", "/api/allocations/"+id.String(), nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})
}

func Test_Get_UnknownCase_404(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		app := newTestApp(newHandler(tx))
		resp, err := app.Test(httptest.NewRequest("GET", "/api/cases/"+uuid.NewString(), nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})
}

func Test_NextNumber_IgnoresGaps(t *testing.T) {
	db := openTestDB(t)
	withTx(t, db, func(tx *gorm.DB) {
		year := time.Now().Year()
		for _, n := range []string{"0001", "0003"} {
			cs := models.Case{CaseNumber: fmt.Sprintf("%d-%s", year, n), StartDate: time.Now()}
			if err := tx.Create(&cs).Error; err != nil {
				t.Fatal(err)
			}
		}
		app := newTestApp(newHandler(tx))
		resp, err := app.Test(httptest.NewRequest("GET", "/api/cases/next-number", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body["case_number"] != fmt.Sprintf("%d-0004", year) {
			t.Fatalf("got %q", body["case_number"])
		}
	})
}
