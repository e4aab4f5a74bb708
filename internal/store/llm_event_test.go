package store

import (
	"context"
	"testing"
)

func TestEventLog_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "lesson", UserID: "u1", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, ResponseBody: `{"title":"x"}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "chat", InputTokens: 20, OutputTokens: 30, LatencyMs: 300, Success: true},
		{Provider: "huggingface", Model: "org/model", Purpose: "lesson", LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// Newest first.
	if got[0].Model != "org/model" || got[0].Success {
		t.Errorf("first event = %+v", got[0])
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Errorf("expected descending sequence, got %d then %d", got[0].Sequence, got[1].Sequence)
	}

	lessonOnly, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "lesson", Limit: 1})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(lessonOnly) != 1 || lessonOnly[0].Purpose != "lesson" {
		t.Fatalf("purpose filter = %+v", lessonOnly)
	}

	failed, err := repo.QueryLLMEvents(ctx, QueryOpts{Failed: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "rate limited" {
		t.Fatalf("failed filter = %+v", failed)
	}

	mine, err := repo.QueryLLMEvents(ctx, QueryOpts{UserID: "u1"})
	if err != nil {
		t.Fatalf("query by user: %v", err)
	}
	if len(mine) != 1 || mine[0].Purpose != "lesson" {
		t.Fatalf("user filter = %+v", mine)
	}

	first := got[2]
	e, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != `{"title":"x"}` || e.UserID != "u1" {
		t.Fatalf("get returned %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestEventLog_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "lesson", InputTokens: 100, OutputTokens: 200, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "lesson", InputTokens: 50, OutputTokens: 100, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "chat", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	lesson := byPurpose[1]
	if lesson.Purpose != "lesson" || lesson.Calls != 2 || lesson.InputTokens != 150 || lesson.OutputTokens != 300 || lesson.AvgLatencyMs != 200 {
		t.Errorf("lesson usage = %+v", lesson)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.5-flash" || byModel[0].Calls != 2 {
		t.Errorf("model usage = %+v", byModel)
	}
}
