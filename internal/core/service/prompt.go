package service

import (
	"fmt"
	"strings"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

const notAvailable = "N/A"

// BuildReportPrompt composes the report request for tasks, in the order
// given. Every field is listed; empty optional ones read "N/A".
func BuildReportPrompt(tasks []*domain.Task, currency string) string {
	var b strings.Builder

	b.WriteString("You are an assistant that writes accurate and objective reports from the data provided. ")
	b.WriteString("Use **only** the information below to write the report. Do not add information or details that are not present in the data.\n\n")
	b.WriteString("### Task Report\n\n")

	for i, t := range tasks {
		fmt.Fprintf(&b, "**Task %d:**\n", i+1)
		field(&b, "Task Name", t.Name)
		field(&b, "Cost", fmt.Sprintf("%s%.2f", currency, t.Cost))
		field(&b, "Due Date", domain.FormatDate(t.DueDate))
		field(&b, "Description", t.Description)
		field(&b, "Status", t.Status.Label())
		field(&b, "Priority", t.Priority.Label())
		field(&b, "Assigned To", t.AssignedTo)
		field(&b, "Created By", t.CreatedBy)
		completion := ""
		if t.CompletionDate != nil {
			completion = domain.FormatDate(*t.CompletionDate)
		}
		field(&b, "Completion Date", completion)
		field(&b, "Notes", t.Notes)
		field(&b, "Category", t.Category)
		b.WriteString("\n")
	}

	b.WriteString("Based on the information above, write a detailed report. Keep the report objective ")
	b.WriteString("and do not add opinions or information that is not present in the data provided. ")
	b.WriteString("Structure the report with clear headings for each task and include an overview at the beginning.")
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = notAvailable
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, value)
}
