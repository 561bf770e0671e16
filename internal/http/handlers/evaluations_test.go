package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/support-qa/backend/internal/models"
	"github.com/support-qa/backend/internal/service"
)

func filterContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/evaluations?"+rawQuery, nil)
	return c
}

func testRoster() []models.User {
	tl := "tl-1"
	return []models.User{
		{ID: "tl-1", Name: "Maria", Role: models.RoleTeamLeader},
		{ID: "ag-1", Name: "Nikos", Role: models.RoleAgent, TeamLeaderID: &tl},
		{ID: "ag-2", Name: "Eleni", Role: models.RoleAgent, TeamLeaderID: &tl},
	}
}

func TestResolveEvaluationFilterTeamExpansion(t *testing.T) {
	h := newTestHandler(nil)
	f, emptyTeam, err := h.resolveEvaluationFilter(filterContext("tl=tl-1"), testRoster())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emptyTeam {
		t.Fatal("team with agents reported as empty")
	}
	if len(f.AgentIDs) != 2 {
		t.Fatalf("expected 2 agent ids, got %v", f.AgentIDs)
	}
}

func TestResolveEvaluationFilterEmptyTeam(t *testing.T) {
	h := newTestHandler(nil)
	roster := []models.User{{ID: "tl-9", Name: "Solo", Role: models.RoleTeamLeader}}
	_, emptyTeam, err := h.resolveEvaluationFilter(filterContext("tl=tl-9"), roster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emptyTeam {
		t.Fatal("expected empty team short circuit")
	}
}

func TestResolveEvaluationFilterHierarchyMismatch(t *testing.T) {
	h := newTestHandler(nil)
	_, _, err := h.resolveEvaluationFilter(filterContext("agent=ag-1&tl=tl-other"), testRoster())
	if !errors.Is(err, service.ErrHierarchyMismatch) {
		t.Fatalf("expected hierarchy mismatch, got %v", err)
	}
}

func TestResolveEvaluationFilterDates(t *testing.T) {
	h := newTestHandler(nil)
	f, _, err := h.resolveEvaluationFilter(filterContext("startDate=2024-01-10&endDate=not-a-date"), testRoster())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Start == nil {
		t.Fatal("expected start boundary")
	}
	if got := f.Start.UTC().Format("2006-01-02T15:04:05Z"); got != "2024-01-09T21:00:00Z" {
		t.Fatalf("unexpected start %s", got)
	}
	if f.End != nil {
		t.Fatal("unparsable end date should be dropped")
	}
}

func TestTargetName(t *testing.T) {
	roster := testRoster()
	if got := targetName("ag-1", "", roster); got != "Nikos" {
		t.Fatalf("agent name: got %q", got)
	}
	if got := targetName("", "tl-1", roster); got != "Team: Maria" {
		t.Fatalf("team name: got %q", got)
	}
	if got := targetName("ghost", "", roster); got != "Agent ghost" {
		t.Fatalf("fallback name: got %q", got)
	}
}
