package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/table-booking/internal/dto"
	"github.com/Eursukkul/table-booking/internal/handler"
	"github.com/Eursukkul/table-booking/internal/ledger"
	"github.com/Eursukkul/table-booking/internal/models"
	"github.com/Eursukkul/table-booking/internal/repository"
	"github.com/Eursukkul/table-booking/internal/service"
	"github.com/Eursukkul/table-booking/pkg/database"
)

func useTempStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LEDGER_CAPACITY", "")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

// closedServerURL returns an address nothing listens on.
func closedServerURL(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	return url
}

func newTestServer(t *testing.T, svc service.LedgerService) *httptest.Server {
	t.Helper()
	e := newEcho()
	handler.NewLedgerHandler(svc).RegisterRoutes(e)
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestImportExportShow(t *testing.T) {
	useTempStore(t)
	in := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`[
		{"name":"Ana Lee","phone":"5551234567","guestCount":4,"checkInTime":"2026-03-14T19:30:00Z","status":"Checked In"},
		{"name":"Bo Park","phone":"5550000000","guestCount":2,"checkInTime":"2026-03-14T19:45:00Z","status":"Checked Out"}
	]`), 0o644))

	out := runCmd(t, "import", "--in", in, "--server", closedServerURL(t))
	assert.Contains(t, out, "Imported 2 reservations, 11 seats available")

	out = runCmd(t, "export")
	var exported []models.Reservation
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "Ana Lee", exported[0].Name)
	assert.NotEmpty(t, exported[0].ID)
	assert.Equal(t, models.StatusCheckedOut, exported[1].Status)

	out = runCmd(t, "show")
	assert.Contains(t, out, "Seats available: 11 of 15")
	assert.Contains(t, out, "Bo Park")
}

func TestImport_RejectsInvalidFile(t *testing.T) {
	useTempStore(t)
	in := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"name":"Ana123","phone":"5551234567","guestCount":4,"status":"Checked In"}]`), 0o644))

	root := NewRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"import", "--in", in, "--server", closedServerURL(t)})
	err := root.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestImport_GoesThroughRunningServer(t *testing.T) {
	path := useTempStore(t)
	db, err := database.NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewKVRepository(db)
	svc, err := service.NewLedgerService(context.Background(), repo, 15)
	require.NoError(t, err)
	ts := newTestServer(t, svc)

	in := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`[
		{"name":"Imported Party","phone":"5551234567","guestCount":6,"status":"Checked In"}
	]`), 0o644))

	out := runCmd(t, "import", "--in", in, "--server", ts.URL)
	assert.Contains(t, out, "Imported 1 reservations, 9 seats available")

	_, _, err = svc.Add(context.Background(), ledger.Input{Name: "Walk In", Phone: "5550000000", GuestCount: "2"})
	require.NoError(t, err)

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Imported Party", stored[0].Name)
	assert.Equal(t, "Walk In", stored[1].Name)
	assert.Equal(t, 7, svc.Snapshot(context.Background()).SeatsLeft)
}

func TestImport_ServerRejectsInvalidFile(t *testing.T) {
	useTempStore(t)
	svc, err := service.NewLedgerService(context.Background(), &memoryRepo{}, 15)
	require.NoError(t, err)
	ts := newTestServer(t, svc)

	in := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"name":"Big Party","phone":"5551234567","guestCount":16,"status":"Checked In"}]`), 0o644))

	root := NewRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"import", "--in", in, "--server", ts.URL})
	err = root.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Empty(t, svc.Snapshot(context.Background()).Reservations)
}

type memoryRepo struct {
	reservations []models.Reservation
}

func (m *memoryRepo) Load(ctx context.Context) ([]models.Reservation, error) {
	return m.reservations, nil
}

func (m *memoryRepo) Save(ctx context.Context, reservations []models.Reservation) error {
	m.reservations = append([]models.Reservation(nil), reservations...)
	return nil
}

// TestHTTPFlow drives the full stack over HTTP against a real sqlite store.
func TestHTTPFlow(t *testing.T) {
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewKVRepository(db)
	svc, err := service.NewLedgerService(context.Background(), repo, 15)
	require.NoError(t, err)

	e := newEcho()
	handler.NewLedgerHandler(svc).RegisterRoutes(e)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	seatsLeft := func(rec *httptest.ResponseRecorder) int {
		var resp dto.MutationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Ledger.SeatsLeft
	}

	rec := do(http.MethodPost, "/api/v1/reservations", `{"name":"Ana Lee","phone":"5551234567","guestCount":"4"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 11, seatsLeft(rec))

	rec = do(http.MethodPost, "/api/v1/reservations", `{"name":"Big Party","phone":"5559876543","guestCount":"20"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rule":"guest_count_seats"`)

	rec = do(http.MethodGet, "/api/v1/reservations/0/edit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"guestCount":"4"`)

	rec = do(http.MethodPut, "/api/v1/reservations/0", `{"name":"Ana Lee","phone":"5551234567","guestCount":6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 9, seatsLeft(rec))

	rec = do(http.MethodPost, "/api/v1/reservations/0/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, seatsLeft(rec))

	rec = do(http.MethodPost, "/api/v1/reservations/0/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(http.MethodDelete, "/api/v1/reservations/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, seatsLeft(rec))

	rec = do(http.MethodDelete, "/api/v1/reservations/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, []models.Reservation{
		{Name: "Ana Lee", Phone: "5551234567", GuestCount: 4, Status: models.StatusCheckedIn},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "GUESTS")
	assert.Contains(t, lines[1], "Ana Lee")
	assert.Contains(t, lines[1], "Checked In")
}
