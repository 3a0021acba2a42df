// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/testutil"
)

var schoolsArticles = []string{
	"Every child gets a school place.",
	"Class sizes are capped at 30.",
}

// reportStageBill introduces a government bill and moves the clock to
// 08/1997, when it sits at Report Stage.
func reportStageBill(t *testing.T, e *testEnv) string {
	t.Helper()
	id := e.introduce("Blair", "bill", "Schools Bill", schoolsArticles, true)
	e.setMonth(3)
	if resp := e.getBill(id); resp.Bill.Stage != models.StageReportStage {
		t.Fatalf("Expected report stage, got %s", resp.Bill.Stage)
	}
	return id
}

func (e *testEnv) propose(id, actor string, req models.ProposeAmendmentRequest) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.call(e.amendments.Propose, "POST", "/bills/"+id+"/amendments", req, e.as(actor), "id", id)
}

// tabled proposes an amendment and returns its ID.
func (e *testEnv) tabled(id, actor string, req models.ProposeAmendmentRequest) string {
	e.t.Helper()
	w := e.propose(id, actor, req)
	if w.Code != http.StatusCreated {
		e.t.Fatalf("Failed to propose amendment: %d %s", w.Code, w.Body.String())
	}
	var resp models.AmendmentResponse
	testutil.AssertJSON(e.t, w, &resp)
	if resp.Status != models.AmendmentProposed {
		e.t.Fatalf("Expected proposed, got %s", resp.Status)
	}
	return resp.AmendmentID
}

// act calls one of the per-amendment endpoints as actor.
func (e *testEnv) act(handler http.HandlerFunc, id, aid, actor string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	headers := e.moderator()
	if actor != "" {
		headers = e.as(actor)
	}
	return e.call(handler, "POST", "/bills/"+id+"/amendments/"+aid, body, headers, "id", id, "aid", aid)
}

func TestProposeAmendment(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)

	tests := []struct {
		name           string
		billID         string
		headers        map[string]string
		req            models.ProposeAmendmentRequest
		expectedStatus int
	}{
		{
			name:           "missing headers",
			billID:         id,
			req:            models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown type",
			billID:         id,
			headers:        e.as("Hague"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "rewrite", Text: "x"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "replace without text",
			billID:         id,
			headers:        e.as("Hague"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "replace"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "article out of range",
			billID:         id,
			headers:        e.as("Hague"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 3, Type: "delete"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown bill",
			billID:         "missing",
			headers:        e.as("Hague"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "insert at the top",
			billID:         id,
			headers:        e.as("Hague"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 0, Type: "insert", Text: "Short title."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "delete by a backbencher",
			billID:         id,
			headers:        e.as("Clarke"),
			req:            models.ProposeAmendmentRequest{ArticleNumber: 2, Type: "delete"},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.call(e.amendments.Propose, "POST", "/bills/"+tt.billID+"/amendments",
				tt.req, tt.headers, "id", tt.billID)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	resp := e.getBill(id)
	if len(resp.Bill.Amendments) != 2 {
		t.Fatalf("Expected 2 amendments, got %d", len(resp.Bill.Amendments))
	}
	if resp.Bill.Amendments[0].Proposer != "Hague" || resp.Bill.Amendments[1].Proposer != "Clarke" {
		t.Errorf("Amendments out of order: %+v", resp.Bill.Amendments)
	}

	// 10/1997: Report Debate, amendments are closed
	e.setMonth(5)
	w := e.propose(id, "Hague", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestProposeAmendment_BeforeReportStage(t *testing.T) {
	e := newTestEnv(t)
	id := e.introduce("Blair", "bill", "Schools Bill", schoolsArticles, true)

	w := e.propose(id, "Hague", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestAcceptAmendment(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)
	aid := e.tabled(id, "Hague", models.ProposeAmendmentRequest{
		ArticleNumber: 2, Type: "replace", Text: "Class sizes are capped at 25.",
	})

	testutil.AssertStatus(t, e.act(e.amendments.Accept, id, aid, "Hague", nil), http.StatusConflict)
	testutil.AssertStatus(t, e.act(e.amendments.Accept, id, "missing", "Blair", nil), http.StatusNotFound)

	w := e.act(e.amendments.Accept, id, aid, "Blair", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	resp := e.getBill(id)
	if resp.Bill.Articles[1] != "Class sizes are capped at 25." {
		t.Errorf("Amendment not applied: %v", resp.Bill.Articles)
	}
	if resp.Bill.Amendments[0].Status != models.AmendmentAccepted {
		t.Errorf("Expected accepted, got %s", resp.Bill.Amendments[0].Status)
	}

	testutil.AssertStatus(t, e.act(e.amendments.Accept, id, aid, "Blair", nil), http.StatusConflict)
}

func TestRefuseAmendment_WithoutCrossPartySupport(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)
	aid := e.tabled(id, "Clarke", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})

	// Only leaders can support
	testutil.AssertStatus(t, e.act(e.amendments.Support, id, aid, "Clarke", nil), http.StatusConflict)

	for i := 0; i < 2; i++ {
		w := e.act(e.amendments.Support, id, aid, "Hague", nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w := e.act(e.amendments.Refuse, id, aid, "Blair", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AmendmentResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != models.AmendmentRefused {
		t.Errorf("One party's backing is not enough, got %s", resp.Status)
	}

	bill := e.getBill(id)
	if len(bill.Bill.Amendments[0].Supporters) != 1 {
		t.Errorf("Repeated support should count once, got %v", bill.Bill.Amendments[0].Supporters)
	}
	if len(bill.Bill.Articles) != 2 || bill.Paused {
		t.Errorf("A refused amendment changes nothing: %+v", bill.Bill.Articles)
	}
}

func TestAmendmentDivision(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)
	aid := e.tabled(id, "Hague", models.ProposeAmendmentRequest{
		ArticleNumber: 2, Type: "insert", Text: "School staff are paid fairly.",
	})

	for _, leader := range []string{"Hague", "Blair"} {
		testutil.AssertStatus(t, e.act(e.amendments.Support, id, aid, leader, nil), http.StatusOK)
	}

	vote := func(actor string, choice models.Choice) *httptest.ResponseRecorder {
		return e.act(e.amendments.CastVote, id, aid, actor, models.CastVoteRequest{Choice: string(choice)})
	}

	testutil.AssertStatus(t, vote("Benn", models.ChoiceAye), http.StatusConflict)

	w := e.act(e.amendments.Refuse, id, aid, "Blair", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var refused models.AmendmentResponse
	testutil.AssertJSON(t, w, &refused)
	if refused.Status != models.AmendmentInDivision {
		t.Fatalf("Two leaders should force a division, got %s", refused.Status)
	}

	if resp := e.getBill(id); !resp.Paused {
		t.Error("Bill should be paused while the amendment is in division")
	}

	testutil.AssertStatus(t, vote("Benn", models.ChoiceAye), http.StatusOK)
	w = vote("Hague", models.ChoiceAye)
	testutil.AssertStatus(t, w, http.StatusOK)

	var tally models.Tally
	testutil.AssertJSON(t, w, &tally)
	if tally.Aye != 260 {
		t.Errorf("Expected 260 aye, got %+v", tally)
	}

	testutil.AssertStatus(t, vote("Nobody", models.ChoiceAye), http.StatusForbidden)
	testutil.AssertStatus(t, e.act(e.amendments.CastVote, id, "missing", "Benn",
		models.CastVoteRequest{Choice: "aye"}), http.StatusNotFound)

	// The Speaker's ruling is procedural
	testutil.AssertStatus(t, e.act(e.amendments.SpeakerDecision, id, aid, "Blair",
		models.AmendmentDecisionRequest{Accept: true}), http.StatusUnauthorized)

	w = e.act(e.amendments.SpeakerDecision, id, aid, "", models.AmendmentDecisionRequest{Accept: true})
	testutil.AssertStatus(t, w, http.StatusOK)

	resp := e.getBill(id)
	want := []string{schoolsArticles[0], schoolsArticles[1], "School staff are paid fairly."}
	if len(resp.Bill.Articles) != len(want) {
		t.Fatalf("Expected %v, got %v", want, resp.Bill.Articles)
	}
	for i := range want {
		if resp.Bill.Articles[i] != want[i] {
			t.Errorf("Article %d: expected %q, got %q", i+1, want[i], resp.Bill.Articles[i])
		}
	}
	if resp.Paused {
		t.Error("Ruling should lift the pause")
	}
	a := resp.Bill.Amendments[0]
	if a.Division == nil || a.Division.Status != models.DivisionResolvedBySpeaker {
		t.Errorf("Expected the amendment division resolved by the Speaker, got %+v", a.Division)
	}

	testutil.AssertStatus(t, e.act(e.amendments.SpeakerDecision, id, aid, "",
		models.AmendmentDecisionRequest{Accept: false}), http.StatusConflict)
}

func TestAmendmentDivision_PausesFinalDivision(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)
	aid := e.tabled(id, "Hague", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})
	for _, leader := range []string{"Hague", "Blair"} {
		testutil.AssertStatus(t, e.act(e.amendments.Support, id, aid, leader, nil), http.StatusOK)
	}
	testutil.AssertStatus(t, e.act(e.amendments.Refuse, id, aid, "Blair", nil), http.StatusOK)

	// 01/1998: the amendment division expired in 09/1997 but awaits a ruling
	e.setMonth(8)
	resp := e.getBill(id)
	if resp.Bill.Stage != models.StageFinalDivision {
		t.Fatalf("Expected the final division, got %s", resp.Bill.Stage)
	}
	if a := resp.Bill.Amendments[0]; a.Status != models.AmendmentInDivision || a.Division.Status != models.DivisionClosed {
		t.Fatalf("Expected a closed amendment division still awaiting a ruling, got %s / %s", a.Status, a.Division.Status)
	}
	if !resp.Paused {
		t.Fatal("Final division should be paused")
	}

	testutil.AssertStatus(t, e.vote(id, "Blair", models.ChoiceAye), http.StatusConflict)
	w := e.call(e.bills.CloseDivision, "POST", "/bills/"+id+"/close", nil, e.moderator(), "id", id)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Paused divisions don't lapse either
	e.setMonth(12)
	if resp := e.getBill(id); resp.Bill.Division.Status != models.DivisionOpen {
		t.Fatalf("Paused division should stay open past its deadline, got %s", resp.Bill.Division.Status)
	}

	w = e.act(e.amendments.SpeakerDecision, id, aid, "", models.AmendmentDecisionRequest{Accept: false})
	testutil.AssertStatus(t, w, http.StatusOK)
	var ruled models.AmendmentResponse
	testutil.AssertJSON(t, w, &ruled)
	if ruled.Status != models.AmendmentRefused {
		t.Errorf("Expected refused, got %s", ruled.Status)
	}

	// Lifting the pause lets the overdue division close
	resp = e.getBill(id)
	if resp.Bill.Division.Status != models.DivisionClosed {
		t.Errorf("Expected the overdue division to close, got %s", resp.Bill.Division.Status)
	}
	if resp.Bill.Status != models.BillInProgress || resp.Outcome == nil || *resp.Outcome != models.OutcomeTied {
		t.Errorf("No votes means a pending tie, got %s", resp.Bill.Status)
	}
}

func TestAmendmentDivision_ClosesOnFullTurnout(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)
	aid := e.tabled(id, "Hague", models.ProposeAmendmentRequest{ArticleNumber: 2, Type: "replace", Text: "Class sizes are capped at 25."})
	other := e.tabled(id, "Clarke", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})

	npc := func(aid string, body models.NpcVotesRequest) *httptest.ResponseRecorder {
		return e.act(e.amendments.SetNpcVotes, id, aid, "", body)
	}
	snpNo := models.NpcVotesRequest{Votes: map[string]string{"SNP": "no"}}

	testutil.AssertStatus(t, e.act(e.amendments.SetNpcVotes, id, aid, "Hague", snpNo), http.StatusUnauthorized)
	testutil.AssertStatus(t, npc(aid, snpNo), http.StatusConflict)
	testutil.AssertStatus(t, npc("missing", snpNo), http.StatusNotFound)

	for _, leader := range []string{"Hague", "Blair"} {
		testutil.AssertStatus(t, e.act(e.amendments.Support, id, aid, leader, nil), http.StatusOK)
	}
	testutil.AssertStatus(t, e.act(e.amendments.Refuse, id, aid, "Blair", nil), http.StatusOK)

	for _, actor := range []string{"Blair", "Cook", "Benn"} {
		testutil.AssertStatus(t, e.act(e.amendments.CastVote, id, aid, actor, models.CastVoteRequest{Choice: "no"}), http.StatusOK)
	}
	for _, actor := range []string{"Hague", "Clarke"} {
		testutil.AssertStatus(t, e.act(e.amendments.CastVote, id, aid, actor, models.CastVoteRequest{Choice: "aye"}), http.StatusOK)
	}

	resp := e.getBill(id)
	if resp.Bill.Amendments[0].Division.Status != models.DivisionOpen {
		t.Fatal("Amendment division should wait for the SNP")
	}

	testutil.AssertStatus(t, npc(aid, models.NpcVotesRequest{Votes: map[string]string{"SNP": "maybe"}}), http.StatusBadRequest)
	testutil.AssertStatus(t, npc(other, snpNo), http.StatusConflict)

	w := npc(aid, models.NpcVotesRequest{Votes: map[string]string{"SNP": "aye"}, Rebels: map[string]int{"SNP": 4}})
	testutil.AssertStatus(t, w, http.StatusOK)
	var closed models.BillResponse
	testutil.AssertJSON(t, w, &closed)

	var a models.Amendment
	for _, am := range closed.Bill.Amendments {
		if am.ID == aid {
			a = am
		}
	}
	if a.Division == nil || a.Division.Status != models.DivisionClosed {
		t.Fatalf("Full turnout should close the amendment division, got %+v", a.Division)
	}
	if a.Status != models.AmendmentInDivision || !closed.Paused {
		t.Errorf("Closed amendment division still awaits the Speaker, got %s (paused=%v)", a.Status, closed.Paused)
	}
	if a.Division.RebelsByParty["SNP"] != 4 {
		t.Errorf("Rebels should be recorded before the close, got %v", a.Division.RebelsByParty)
	}

	testutil.AssertStatus(t, e.act(e.amendments.CastVote, id, aid, "Benn", models.CastVoteRequest{Choice: "aye"}), http.StatusConflict)
	testutil.AssertStatus(t, npc(aid, snpNo), http.StatusConflict)

	w = e.act(e.amendments.SpeakerDecision, id, aid, "", models.AmendmentDecisionRequest{Accept: true})
	testutil.AssertStatus(t, w, http.StatusOK)
	if resp := e.getBill(id); resp.Bill.Articles[1] != "Class sizes are capped at 25." {
		t.Errorf("Expected article 2 replaced, got %v", resp.Bill.Articles)
	}
}

func TestAcceptAmendments_RenumberPersisted(t *testing.T) {
	e := newTestEnv(t)
	id := reportStageBill(t, e)

	top := e.tabled(id, "Hague", models.ProposeAmendmentRequest{ArticleNumber: 0, Type: "insert", Text: "This Act applies to England."})
	second := e.tabled(id, "Clarke", models.ProposeAmendmentRequest{ArticleNumber: 2, Type: "replace", Text: "Class sizes are capped at 25."})
	first := e.tabled(id, "Clarke", models.ProposeAmendmentRequest{ArticleNumber: 1, Type: "delete"})

	for _, aid := range []string{top, second, first} {
		testutil.AssertStatus(t, e.act(e.amendments.Accept, id, aid, "Blair", nil), http.StatusOK)
	}

	resp := e.getBill(id)
	want := []string{"This Act applies to England.", "Class sizes are capped at 25."}
	if len(resp.Bill.Articles) != len(want) {
		t.Fatalf("Expected %v, got %v", want, resp.Bill.Articles)
	}
	for i := range want {
		if resp.Bill.Articles[i] != want[i] {
			t.Errorf("Article %d: expected %q, got %q", i+1, want[i], resp.Bill.Articles[i])
		}
	}
}
