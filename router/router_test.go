// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/store"
	"github.com/danielhkuo/westminster/testutil"
)

// newServer builds the router over a seeded in-memory database, wrapped
// the same way main serves it.
func newServer(t *testing.T) (http.Handler, cliparse.Config) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := testutil.GetTestConfig()
	testutil.SeedRoster(t, store.New(db, cfg.DatabaseType))
	return middleware.WithRecovery(middleware.CORS(NewRouter(db, cfg))), cfg
}

func serve(h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
	return w
}

func TestPlainEndpoints(t *testing.T) {
	srv, _ := newServer(t)

	testCases := []struct {
		path string
		want string
	}{
		{"/health", "OK"},
		{"/", "westminster API v1"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := serve(srv, "GET", tc.path, nil, nil)
			testutil.AssertStatus(t, w, http.StatusOK)
			if w.Body.String() != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, w.Body.String())
			}
		})
	}
}

func TestModeratorRoutesNeedKey(t *testing.T) {
	srv, cfg := newServer(t)

	paths := []string{
		"/roster/import",
		"/bills/b1/npc-votes",
		"/bills/b1/rebellions",
		"/bills/b1/deadline",
		"/bills/b1/close",
		"/bills/b1/speaker-decision",
		"/bills/b1/assent",
		"/bills/b1/amendments/a1/npc-votes",
		"/bills/b1/amendments/a1/speaker-decision",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			testutil.AssertStatus(t, serve(srv, "POST", path, nil, nil), http.StatusUnauthorized)
			// A character token is not a moderator key
			testutil.AssertStatus(t, serve(srv, "POST", path, nil, testutil.CharacterHeaders(cfg, "Blair")), http.StatusUnauthorized)
			testutil.AssertStatus(t, serve(srv, "POST", path, nil, map[string]string{"X-Moderator-Key": "forged"}), http.StatusForbidden)
		})
	}
}

func TestCharacterRoutesNeedToken(t *testing.T) {
	srv, _ := newServer(t)

	paths := []string{
		"/bills",
		"/bills/b1/refuse-reading",
		"/bills/b1/votes",
		"/characters/Benn/absence",
		"/bills/b1/amendments",
		"/bills/b1/amendments/a1/support",
		"/bills/b1/amendments/a1/accept",
		"/bills/b1/amendments/a1/refuse",
		"/bills/b1/amendments/a1/votes",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			testutil.AssertStatus(t, serve(srv, "POST", path, nil, nil), http.StatusUnauthorized)
			forged := map[string]string{"X-Character": "Benn", "X-Character-Token": "forged"}
			testutil.AssertStatus(t, serve(srv, "POST", path, nil, forged), http.StatusForbidden)
		})
	}
}

func TestPathValues(t *testing.T) {
	srv, cfg := newServer(t)

	w := serve(srv, "POST", "/bills", models.CreateBillRequest{Title: "Minimum Wage Motion", Kind: "motion"},
		testutil.CharacterHeaders(cfg, "Blair"))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreateBillResponse
	testutil.AssertJSON(t, w, &created)
	id := created.BillID

	t.Run("bill id", func(t *testing.T) {
		w := serve(srv, "GET", "/bills/"+id, nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.BillResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Bill.ID != id {
			t.Errorf("Expected bill %s, got %s", id, resp.Bill.ID)
		}

		testutil.AssertStatus(t, serve(srv, "GET", "/bills/unknown", nil, nil), http.StatusNotFound)
	})

	t.Run("amendment id", func(t *testing.T) {
		w := serve(srv, "POST", "/bills/"+id+"/amendments/unknown/accept", nil, testutil.CharacterHeaders(cfg, "Blair"))
		testutil.AssertStatus(t, w, http.StatusNotFound)
		if !strings.Contains(w.Body.String(), "Amendment not found") {
			t.Errorf("Expected the amendment lookup to fail, got %s", w.Body.String())
		}
	})

	t.Run("character name", func(t *testing.T) {
		w := serve(srv, "POST", "/characters/Blair/absence", models.AbsenceRequest{Absent: true},
			testutil.CharacterHeaders(cfg, "Benn"))
		testutil.AssertStatus(t, w, http.StatusForbidden)

		w = serve(srv, "POST", "/characters/Benn/absence", models.AbsenceRequest{Absent: true},
			testutil.CharacterHeaders(cfg, "Benn"))
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("ballot on the bill", func(t *testing.T) {
		w := serve(srv, "POST", "/bills/"+id+"/votes", models.CastVoteRequest{Choice: "aye"},
			testutil.CharacterHeaders(cfg, "Hague"))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.BillResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Tally == nil || resp.Tally.Aye != 150 {
			t.Errorf("Expected Hague's 150 on the tally, got %+v", resp.Tally)
		}
	})
}

func TestMethodRouting(t *testing.T) {
	srv, _ := newServer(t)

	testCases := []struct {
		method string
		path   string
		want   int
	}{
		{"POST", "/health", http.StatusMethodNotAllowed},
		{"PUT", "/bills", http.StatusMethodNotAllowed},
		{"PUT", "/bills/b1/assent", http.StatusMethodNotAllowed},
		{"DELETE", "/bills/b1", http.StatusMethodNotAllowed},
		{"OPTIONS", "/bills/b1/votes", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			testutil.AssertStatus(t, serve(srv, tc.method, tc.path, nil, nil), tc.want)
		})
	}
}
