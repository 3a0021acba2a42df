// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Party, Character: the seat table and roster
  - Division, Ballot, Tally: a weighted vote and its totals
  - Bill, Amendment: legislation and Report Stage changes to it
  - SimDate: a month on the simulated calendar

Enums are string types with Parse helpers that reject unknown values:
Choice, Stage, SubjectKind, AmendmentType. Stages are ordered; see Stages.

# Request Types

  - StateDocument: roster import (parliament.parties, players)
  - AbsenceRequest: absent, delegated_to
  - CreateBillRequest: title, kind, articles, government
  - CastVoteRequest: choice
  - NpcVotesRequest, RebellionsRequest: per-party maps
  - SpeakerDecisionRequest, AmendmentDecisionRequest: Speaker rulings
  - ProposeAmendmentRequest: article_number, type, text

# Response Types

  - BillResponse: bill, tally, outcome, paused, sim_date
  - WeightsResponse, ImportRosterResponse, CreateBillResponse,
    AdvanceResponse, AmendmentResponse
  - ErrorResponse: error, message
*/
package models
