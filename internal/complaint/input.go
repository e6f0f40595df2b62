package complaint

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
)

// CreateInput is what a submitter provides for a new complaint.
type CreateInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Priority    models.Priority `json:"priority"`
	Department  string          `json:"department"`
	Tags        []string        `json:"tags"`
}

// UpdateInput carries only the fields to change. Status, AssignedTo, Resolution and
// EstimatedResolutionTime are admin-only. An empty AssignedTo clears the assignee.
type UpdateInput struct {
	Title                   *string          `json:"title"`
	Description             *string          `json:"description"`
	Category                *models.Category `json:"category"`
	Priority                *models.Priority `json:"priority"`
	Department              *string          `json:"department"`
	Tags                    *[]string        `json:"tags"`
	Status                  *models.Status   `json:"status"`
	AssignedTo              *string          `json:"assignedTo"`
	Resolution              *string          `json:"resolution"`
	EstimatedResolutionTime *time.Time       `json:"estimatedResolutionTime"`
}

func (in UpdateInput) touchesAdminFields() bool {
	return in.Status != nil || in.AssignedTo != nil || in.Resolution != nil || in.EstimatedResolutionTime != nil
}

// StatusInput drives the lifecycle.
type StatusInput struct {
	Status     models.Status `json:"status"`
	Resolution *string       `json:"resolution"`
}

func checkLength(fe *apperr.FieldErrors, field, label, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && min > 0:
		fe.Add(field, label+" is required")
	case n < min:
		fe.Add(field, label+" must be at least "+strconv.Itoa(min)+" characters long")
	case n > max:
		fe.Add(field, label+" cannot exceed "+strconv.Itoa(max)+" characters")
	}
}

func checkDepartment(fe *apperr.FieldErrors, department string) {
	if department == "" {
		fe.Add("department", "Department is required")
		return
	}
	if !config.IsDepartment(department) {
		fe.Add("department", "Invalid department. Must be one of: "+strings.Join(config.Departments, ", "))
	}
}

func checkPriority(fe *apperr.FieldErrors, p models.Priority) {
	if p == "" {
		fe.Add("priority", "Priority is required")
		return
	}
	if !p.Valid() {
		fe.Add("priority", "Invalid priority. Must be one of: Low, Medium, High, Critical")
	}
}

func checkCategory(fe *apperr.FieldErrors, c models.Category) {
	if !c.Valid() {
		fe.Add("category", "Invalid category. Must be one of: Technical, Billing, Service, General, Other")
	}
}

func checkResolution(fe *apperr.FieldErrors, resolution *string) {
	if resolution == nil {
		return
	}
	checkLength(fe, "resolution", "Resolution", strings.TrimSpace(*resolution), config.ResolutionMinLen, config.ResolutionMaxLen)
}

// normalizeTags trims, drops blanks and removes duplicates while keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// validateCreate reports every failed field at once and returns the cleaned input.
func validateCreate(in CreateInput) (CreateInput, error) {
	var fe apperr.FieldErrors

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Department = strings.TrimSpace(in.Department)
	if in.Category == "" {
		in.Category = models.CategoryGeneral
	}

	checkLength(&fe, "title", "Title", in.Title, config.TitleMinLen, config.TitleMaxLen)
	checkLength(&fe, "description", "Description", in.Description, config.DescriptionMinLen, config.DescriptionMaxLen)
	checkCategory(&fe, in.Category)
	checkPriority(&fe, in.Priority)
	checkDepartment(&fe, in.Department)

	in.Tags = normalizeTags(in.Tags)
	return in, fe.Err()
}

// validateFilter rejects listing filters outside their closed value sets.
func validateFilter(f models.ComplaintFilter) error {
	var fe apperr.FieldErrors
	if f.Status != "" && !f.Status.Valid() {
		fe.Add("status", "Invalid status. Must be one of: Pending, In Progress, Resolved, Closed, Rejected")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		fe.Add("priority", "Invalid priority. Must be one of: Low, Medium, High, Critical")
	}
	if f.Category != "" && !f.Category.Valid() {
		fe.Add("category", "Invalid category. Must be one of: Technical, Billing, Service, General, Other")
	}
	return fe.Err()
}
