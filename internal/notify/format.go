package notify

import (
	"fmt"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// LaneLabel returns the display name of a lane.
func LaneLabel(status string) string {
	switch status {
	case models.StatusBacklog:
		return "Backlog"
	case models.StatusTodo:
		return "To do"
	case models.StatusChangesRequired:
		return "Changes required"
	case models.StatusRejected:
		return "Rejected"
	default:
		return status
	}
}

// VariantLabel returns the display name of a board variant.
func VariantLabel(variant string) string {
	switch variant {
	case models.VariantTopic:
		return "Topic"
	case models.VariantPost:
		return "Post"
	default:
		return variant
	}
}

// laneSeverity picks the attachment severity for a lane transition.
func laneSeverity(newStatus string) string {
	switch newStatus {
	case models.StatusTodo:
		return "success"
	case models.StatusChangesRequired:
		return "warning"
	case models.StatusRejected:
		return "error"
	default:
		return "info"
	}
}

// FormatItemCreated builds the event for a newly created item.
func FormatItemCreated(item models.Item) FormattedEvent {
	evt := FormattedEvent{
		Title:    fmt.Sprintf("%s created: %s", VariantLabel(item.Variant), item.Title),
		Severity: "info",
		Fields: []Field{
			{Name: "Lane", Value: LaneLabel(item.Status), Short: true},
			{Name: "ID", Value: item.ID, Short: true},
		},
	}
	evt.Color = severityColor(evt.Severity)
	return evt
}

// FormatItemMoved builds the event for a lane transition.
func FormatItemMoved(item models.Item, oldStatus string) FormattedEvent {
	evt := FormattedEvent{
		Title:    fmt.Sprintf("%s moved to %s: %s", VariantLabel(item.Variant), LaneLabel(item.Status), item.Title),
		Body:     fmt.Sprintf("was in %s", LaneLabel(oldStatus)),
		Severity: laneSeverity(item.Status),
		Fields: []Field{
			{Name: "ID", Value: item.ID, Short: true},
		},
	}
	evt.Color = severityColor(evt.Severity)
	return evt
}

// FormatCommentAdded builds the event for a new comment.
func FormatCommentAdded(item models.Item, comment models.Comment) FormattedEvent {
	evt := FormattedEvent{
		Title:    fmt.Sprintf("New comment on %s", item.Title),
		Body:     comment.Text,
		Severity: "info",
		Fields: []Field{
			{Name: "By", Value: comment.UserName, Short: true},
			{Name: "Lane", Value: LaneLabel(item.Status), Short: true},
		},
	}
	evt.Color = severityColor(evt.Severity)
	return evt
}

// FormatDuePost builds the event for a post whose scheduled date has
// arrived without leaving the pipeline.
func FormatDuePost(item models.Item) FormattedEvent {
	evt := FormattedEvent{
		Title:    fmt.Sprintf("Post due: %s", item.Title),
		Severity: "warning",
		Fields: []Field{
			{Name: "Lane", Value: LaneLabel(item.Status), Short: true},
		},
	}
	if item.ScheduledDate != nil {
		evt.Fields = append(evt.Fields, Field{
			Name:  "Scheduled",
			Value: item.ScheduledDate.Format("2006-01-02 15:04"),
			Short: true,
		})
	}
	evt.Color = severityColor(evt.Severity)
	return evt
}
