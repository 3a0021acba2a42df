// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/store"
	"github.com/danielhkuo/westminster/testutil"
)

// testEnv wires all handlers to one in-memory database and one clock.
type testEnv struct {
	t          *testing.T
	db         *sql.DB
	cfg        cliparse.Config
	store      *store.Store
	roster     *RosterHandler
	bills      *BillHandler
	amendments *AmendmentHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := testutil.GetTestConfig()

	e := &testEnv{
		t:          t,
		db:         db,
		cfg:        cfg,
		store:      store.New(db, cfg.DatabaseType),
		roster:     NewRosterHandler(db, cfg),
		bills:      NewBillHandler(db, cfg),
		amendments: NewAmendmentHandler(db, cfg),
	}
	testutil.SeedRoster(t, e.store)
	e.setMonth(0)
	return e
}

// setMonth moves every handler to the nth simulated month after 05/1997.
func (e *testEnv) setMonth(n int) {
	now := func() time.Time { return testutil.SimMonth(n) }
	e.roster.now = now
	e.bills.now = now
	e.amendments.now = now
}

// setNow pins every handler's wall clock to t.
func (e *testEnv) setNow(t time.Time) {
	now := func() time.Time { return t }
	e.roster.now = now
	e.bills.now = now
	e.amendments.now = now
}

// call runs handler on a request built from method, path and body.
// pathValues are name/value pairs for r.PathValue.
func (e *testEnv) call(handler http.HandlerFunc, method, path string, body interface{}, headers map[string]string, pathValues ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := testutil.MakeRequest(method, path, body, headers)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func (e *testEnv) as(name string) map[string]string {
	return testutil.CharacterHeaders(e.cfg, name)
}

func (e *testEnv) moderator() map[string]string {
	return testutil.ModeratorHeaders(e.cfg)
}

// introduce creates a bill or motion and returns its ID.
func (e *testEnv) introduce(author, kind, title string, articles []string, government bool) string {
	e.t.Helper()
	w := e.call(e.bills.CreateBill, "POST", "/bills", models.CreateBillRequest{
		Title:      title,
		Kind:       kind,
		Articles:   articles,
		Government: government,
	}, e.as(author))
	if w.Code != http.StatusCreated {
		e.t.Fatalf("Failed to introduce %q: %d %s", title, w.Code, w.Body.String())
	}
	var resp models.CreateBillResponse
	testutil.AssertJSON(e.t, w, &resp)
	return resp.BillID
}

// getBill fetches the public view of a bill.
func (e *testEnv) getBill(id string) models.BillResponse {
	e.t.Helper()
	w := e.call(e.bills.GetBill, "GET", "/bills/"+id, nil, nil, "id", id)
	if w.Code != http.StatusOK {
		e.t.Fatalf("Failed to get bill: %d %s", w.Code, w.Body.String())
	}
	var resp models.BillResponse
	testutil.AssertJSON(e.t, w, &resp)
	return resp
}

// vote casts a ballot on the bill's final division.
func (e *testEnv) vote(id, actor string, choice models.Choice) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.call(e.bills.CastVote, "POST", "/bills/"+id+"/votes",
		models.CastVoteRequest{Choice: string(choice)}, e.as(actor), "id", id)
}
