package export

import (
	"testing"
	"time"

	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/models"
)

func fp(v float64) *float64 { return &v }

func sp(v string) *string { return &v }

func TestFilename(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	f := db.EvaluationFilter{Start: &start, End: &end, TicketID: "T-42", ScoreRange: "high"}

	got := Filename(f, "Maria P")
	want := "qa_evaluations_2024-01-01_to_2024-01-31_agent_Maria_P_ticket_T-42_score_high.xlsx"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}

	if got := Filename(db.EvaluationFilter{}, ""); got != "qa_evaluations.xlsx" {
		t.Fatalf("bare filename = %q", got)
	}
}

func TestWorkbookAverageRow(t *testing.T) {
	evals := []models.EvaluationWithAgent{
		{Evaluation: models.Evaluation{TicketID: "T-1", ManualScore: fp(4), KPICategory: []string{"Empathy & Tone"}, CreatedAt: time.Now()}, AgentName: sp("Niko")},
		{Evaluation: models.Evaluation{TicketID: "T-2", ManualScore: nil, CreatedAt: time.Now()}, AgentName: sp("Niko")},
		{Evaluation: models.Evaluation{TicketID: "T-3", ManualScore: fp(2), CreatedAt: time.Now()}},
	}
	f, err := Workbook(evals)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}

	if got, _ := f.GetCellValue(sheetName, "A1"); got != "Ticket ID" {
		t.Fatalf("unexpected header cell %q", got)
	}
	if got, _ := f.GetCellValue(sheetName, "B4"); got != "N/A" {
		t.Fatalf("expected N/A agent for missing roster entry, got %q", got)
	}
	if got, _ := f.GetCellValue(sheetName, "A6"); got != "Average Manual Score:" {
		t.Fatalf("unexpected label cell %q", got)
	}
	// mean of 4 and 2; the absent score is excluded
	if got, _ := f.GetCellValue(sheetName, "C6"); got != "3" {
		t.Fatalf("unexpected average cell %q", got)
	}
}

func TestWorkbookNoScores(t *testing.T) {
	f, err := Workbook(nil)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if got, _ := f.GetCellValue(sheetName, "C3"); got != "N/A" {
		t.Fatalf("expected N/A average, got %q", got)
	}
}
