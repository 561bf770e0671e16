package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/models"
)

const sheetName = "Evaluations"

var header = []string{
	"Ticket ID",
	"Agent",
	"Manual Score",
	"QA KPI Category that needed Adjustments",
	"Notes",
	"Date",
}

// Filename derives the download name from the applied filters so exported
// files stay distinguishable: qa_evaluations_2024-01-01_to_2024-01-31_agent_X.
func Filename(f db.EvaluationFilter, agentName string) string {
	parts := []string{"qa_evaluations"}
	if f.Start != nil && f.End != nil {
		parts = append(parts, fmt.Sprintf("%s_to_%s", f.Start.Format("2006-01-02"), f.End.Format("2006-01-02")))
	}
	if agentName != "" {
		parts = append(parts, "agent_"+strings.ReplaceAll(agentName, " ", "_"))
	}
	if f.TicketID != "" {
		parts = append(parts, "ticket_"+f.TicketID)
	}
	if f.ScoreRange != "" {
		parts = append(parts, "score_"+f.ScoreRange)
	}
	return strings.Join(parts, "_") + ".xlsx"
}

// Workbook renders the filtered evaluations as a spreadsheet with a trailing
// average-manual-score row. Absent scores export as empty cells and are
// excluded from the average.
func Workbook(evals []models.EvaluationWithAgent) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, err
		}
	}

	var total float64
	var scored int
	for i, e := range evals {
		row := i + 2
		name := "N/A"
		if e.AgentName != nil {
			name = *e.AgentName
		}
		values := []any{e.TicketID, name, nil, strings.Join(e.KPICategory, ", "), "", e.CreatedAt.Format("02/01/2006")}
		if e.ManualScore != nil {
			values[2] = *e.ManualScore
			total += *e.ManualScore
			scored++
		}
		if e.Notes != nil {
			values[4] = *e.Notes
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	labelRow := len(evals) + 3
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", labelRow), "Average Manual Score:"); err != nil {
		return nil, err
	}
	if scored > 0 {
		if err := f.SetCellValue(sheetName, fmt.Sprintf("C%d", labelRow), total/float64(scored)); err != nil {
			return nil, err
		}
	} else {
		if err := f.SetCellValue(sheetName, fmt.Sprintf("C%d", labelRow), "N/A"); err != nil {
			return nil, err
		}
	}
	return f, nil
}
