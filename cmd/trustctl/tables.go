package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
)

const timeLayout = "2006-01-02 15:04"

func renderVerifications(w io.Writer, page *pagination.Page[*entity.Verification]) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Subject", "Status", "Plan", "Level", "Docs", "Submitted", "Deadline"})
	for _, v := range page.Items {
		deadline := ""
		if v.ReviewDeadline != nil {
			deadline = v.ReviewDeadline.Format(timeLayout)
		}
		tw.AppendRow(table.Row{v.SubjectID, v.Status, v.Plan, v.Level, len(v.Documents), v.SubmittedAt.Format(timeLayout), deadline})
	}
	tw.AppendFooter(table.Row{pageFooter(page.Page, page.TotalPages, page.Total)})
	tw.Render()
}

func renderReports(w io.Writer, result *listing.ReportPage) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Status", "Reason", "Subject", "Priority", "Escalation", "Created"})
	for _, r := range result.Items {
		tw.AppendRow(table.Row{
			r.ID,
			r.Status,
			r.Reason,
			fmt.Sprintf("%s/%s", r.SubjectType, r.SubjectID),
			r.Priority,
			r.EscalationLevel,
			r.CreatedAt.Format(timeLayout),
		})
	}
	tw.AppendFooter(table.Row{pageFooter(result.Page.Page, result.TotalPages, result.Total)})
	tw.Render()

	stats := result.Statistics
	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.AppendHeader(table.Row{"Total", "Pending", "Investigating", "Resolved", "Rejected"})
	st.AppendRow(table.Row{stats.TotalReports, stats.PendingReports, stats.InvestigatingReports, stats.ResolvedReports, stats.RejectedReports})
	st.Render()
}

func pageFooter(page, totalPages, total int) string {
	return fmt.Sprintf("page %d/%d, total %d", page, totalPages, total)
}
