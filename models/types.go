package models

import (
	"fmt"
	"time"
)

// Character roles
const (
	RoleLeader           = "leader"
	RoleOfficeHolder     = "office-holder"
	RoleBackbencher      = "backbencher"
	RoleNewBackbencher   = "new-backbencher"
	RoleLeaderOfTheHouse = "leader-of-the-house"
)

// Choice is a ballot position in a division.
type Choice string

const (
	ChoiceAye     Choice = "aye"
	ChoiceNo      Choice = "no"
	ChoiceAbstain Choice = "abstain"
)

// ParseChoice rejects anything that is not aye, no or abstain.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceAye, ChoiceNo, ChoiceAbstain:
		return c, nil
	}
	return "", fmt.Errorf("unknown choice %q", s)
}

// DivisionStatus is the lifecycle state of a division.
type DivisionStatus string

const (
	DivisionOpen              DivisionStatus = "open"
	DivisionClosed            DivisionStatus = "closed"
	DivisionResolvedBySpeaker DivisionStatus = "resolved-by-speaker"
)

// Outcome is the result of resolving a division.
type Outcome string

const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
	OutcomeTied   Outcome = "tied"
)

// SubjectKind names what a division is held on.
type SubjectKind string

const (
	SubjectBill      SubjectKind = "bill"
	SubjectMotion    SubjectKind = "motion"
	SubjectAmendment SubjectKind = "amendment"
)

// ParseSubjectKind accepts bill or motion; amendments are never created directly.
func ParseSubjectKind(s string) (SubjectKind, error) {
	switch k := SubjectKind(s); k {
	case SubjectBill, SubjectMotion:
		return k, nil
	case "":
		return SubjectBill, nil
	}
	return "", fmt.Errorf("unknown legislation kind %q", s)
}

// Stage is one procedural phase of a bill, in order.
type Stage string

const (
	StageFirstReading  Stage = "first-reading"
	StageSecondReading Stage = "second-reading"
	StageReportStage   Stage = "report-stage"
	StageReportDebate  Stage = "report-debate"
	StageFinalDivision Stage = "final-division"
)

// Stages lists every stage in procedural order.
var Stages = []Stage{
	StageFirstReading,
	StageSecondReading,
	StageReportStage,
	StageReportDebate,
	StageFinalDivision,
}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage rejects unknown stage names.
func ParseStage(s string) (Stage, error) {
	if st := Stage(s); st.Index() >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// BillStatus is the overall state of a bill or motion.
type BillStatus string

const (
	BillInProgress     BillStatus = "in-progress"
	BillAwaitingAssent BillStatus = "awaiting-assent"
	BillPassed         BillStatus = "passed"
	BillFailed         BillStatus = "failed"
)

// Settled reports whether the bill no longer auto-advances.
func (s BillStatus) Settled() bool {
	return s == BillAwaitingAssent || s == BillPassed || s == BillFailed
}

// AmendmentStatus is the state of a proposed amendment.
type AmendmentStatus string

const (
	AmendmentProposed   AmendmentStatus = "proposed"
	AmendmentAccepted   AmendmentStatus = "accepted"
	AmendmentRefused    AmendmentStatus = "refused"
	AmendmentInDivision AmendmentStatus = "in-division"
)

// Pending reports whether the amendment can still change the bill.
func (s AmendmentStatus) Pending() bool {
	return s == AmendmentProposed || s == AmendmentInDivision
}

// AmendmentType says how an amendment changes the referenced article.
type AmendmentType string

const (
	AmendReplace AmendmentType = "replace"
	AmendInsert  AmendmentType = "insert"
	AmendDelete  AmendmentType = "delete"
)

// ParseAmendmentType rejects unknown amendment types.
func ParseAmendmentType(s string) (AmendmentType, error) {
	switch t := AmendmentType(s); t {
	case AmendReplace, AmendInsert, AmendDelete:
		return t, nil
	}
	return "", fmt.Errorf("unknown amendment type %q", s)
}

// Domain types

type Party struct {
	Name        string `json:"name" yaml:"name"`
	Seats       int    `json:"seats" yaml:"seats"`
	Playable    bool   `json:"playable" yaml:"playable"`
	AutoAbstain bool   `json:"auto_abstain,omitempty" yaml:"auto_abstain"`
}

type Character struct {
	Name        string    `json:"name" yaml:"name"`
	Party       string    `json:"party" yaml:"party"`
	Role        string    `json:"role" yaml:"role"`
	Active      bool      `json:"active" yaml:"active"`
	Absent      bool      `json:"absent" yaml:"absent"`
	DelegatedTo *string   `json:"delegated_to" yaml:"delegated_to"`
	JoinedAt    time.Time `json:"joined_at" yaml:"joined_at"`
}

// SimDate is a month/year on the simulated calendar.
type SimDate struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type Ballot struct {
	Party  string    `json:"party"`
	Choice Choice    `json:"choice"`
	Weight int       `json:"weight"`
	At     time.Time `json:"at"`
}

type Division struct {
	ID             string            `json:"id"`
	Subject        SubjectKind       `json:"subject"`
	SubjectID      string            `json:"subject_id"`
	Status         DivisionStatus    `json:"status"`
	Votes          map[string]Ballot `json:"votes"`
	RebelsByParty  map[string]int    `json:"rebels_by_party"`
	NpcVotes       map[string]Choice `json:"npc_votes"`
	OpenedAt       time.Time         `json:"opened_at"`
	ClosesAt       *time.Time        `json:"closes_at,omitempty"`
	ClosesAtSim    *SimDate          `json:"closes_at_sim,omitempty"`
	SpeakerOutcome Outcome           `json:"speaker_outcome,omitempty"`
	Version        int64             `json:"version"`
}

type Amendment struct {
	ID            string          `json:"id"`
	ArticleNumber int             `json:"article_number"`
	Type          AmendmentType   `json:"type"`
	Text          string          `json:"text,omitempty"`
	Proposer      string          `json:"proposer"`
	Status        AmendmentStatus `json:"status"`
	Supporters    []string        `json:"supporters"`
	Division      *Division       `json:"division,omitempty"`
}

type Bill struct {
	ID               string      `json:"id"`
	Slug             string      `json:"slug"`
	Kind             SubjectKind `json:"kind"`
	Title            string      `json:"title"`
	Author           string      `json:"author"`
	Party            string      `json:"party"`
	Articles         []string    `json:"articles"`
	Stage            Stage       `json:"stage"`
	StageStartedSim  SimDate     `json:"stage_started_sim"`
	StageDeadlineSim SimDate     `json:"stage_deadline_sim"`
	Status           BillStatus  `json:"status"`
	Division         *Division   `json:"division,omitempty"`
	Amendments       []Amendment `json:"amendments"`
	Version          int64       `json:"version"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Tally holds weighted totals of a division.
type Tally struct {
	Aye     int `json:"aye"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
}

// Request types

// StateDocument is the roster section of the shared simulation document.
type StateDocument struct {
	Parliament struct {
		Parties []Party `json:"parties" yaml:"parties"`
	} `json:"parliament" yaml:"parliament"`
	Players []Character `json:"players" yaml:"players"`
}

type AbsenceRequest struct {
	Absent      bool    `json:"absent"`
	DelegatedTo *string `json:"delegated_to"`
}

// CreateBillRequest is the body of POST /bills. ClosesAt is only valid
// for motions, whose division opens at once.
type CreateBillRequest struct {
	Title      string     `json:"title"`
	Kind       string     `json:"kind"`
	Articles   []string   `json:"articles"`
	Government bool       `json:"government"`
	ClosesAt   *time.Time `json:"closes_at,omitempty"`
}

type DeadlineRequest struct {
	ClosesAt time.Time `json:"closes_at"`
}

type CastVoteRequest struct {
	Choice string `json:"choice"`
}

// NpcVotesRequest sets NPC party positions. Rebels, when present, are
// applied first in the same change so an early close counts them.
type NpcVotesRequest struct {
	Votes  map[string]string `json:"votes"`
	Rebels map[string]int    `json:"rebels,omitempty"`
}

type RebellionsRequest struct {
	Rebels map[string]int `json:"rebels"`
}

type SpeakerDecisionRequest struct {
	Outcome string `json:"outcome"`
}

type AmendmentDecisionRequest struct {
	Accept bool `json:"accept"`
}

type ProposeAmendmentRequest struct {
	ArticleNumber int    `json:"article_number"`
	Type          string `json:"type"`
	Text          string `json:"text"`
}

// Response types

type ImportRosterResponse struct {
	Parties    int `json:"parties"`
	Characters int `json:"characters"`
}

type WeightsResponse struct {
	Weights map[string]int `json:"weights"`
	SimDate SimDate        `json:"sim_date"`
}

type BillResponse struct {
	Bill    Bill     `json:"bill"`
	Tally   *Tally   `json:"tally,omitempty"`
	Outcome *Outcome `json:"outcome,omitempty"`
	Paused  bool     `json:"paused"`
	SimDate SimDate  `json:"sim_date"`
}

type CreateBillResponse struct {
	BillID string `json:"bill_id"`
	Slug   string `json:"slug"`
	Stage  Stage  `json:"stage"`
}

type AdvanceResponse struct {
	Steps  int        `json:"steps"`
	Stage  Stage      `json:"stage"`
	Status BillStatus `json:"status"`
}

type AmendmentResponse struct {
	AmendmentID string          `json:"amendment_id"`
	Status      AmendmentStatus `json:"status"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
