// Package complaint implements the complaint lifecycle: filing, editing, status changes,
// comments, the admin views and the per-complaint history.
package complaint

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"complaintdesk/backend/internal/access"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/escalation"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/timeline"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type Recorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// Notifier is told about complaints that are filed as Critical.
type Notifier interface {
	NotifyCritical(ctx context.Context, c *models.Complaint)
}

// Sweeper runs the escalation rule; *escalation.Policy satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context, actor *models.User, source string) (escalation.Result, error)
}

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	recorder Recorder
	sweeper  Sweeper
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService creates a new complaint service. notifier may be nil.
func NewService(s storage.Storage, recorder Recorder, sweeper Sweeper, notifier Notifier, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Storage:  s,
		recorder: recorder,
		sweeper:  sweeper,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source used for resolution timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) record(ctx context.Context, actor *models.User, action models.Action, c *models.Complaint, details string, metadata map[string]any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		Details:      details,
		ResourceType: models.ResourceComplaint,
		ResourceID:   c.ID,
		Metadata:     metadata,
	})
}

// load fetches the complaint; a missing row wins over any permission failure.
func (s *Service) load(ctx context.Context, id string) (*models.Complaint, error) {
	return s.Storage.GetComplaintByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Complaint, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	in, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	c := &models.Complaint{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Priority:      in.Priority,
		Status:        models.StatusPending,
		Department:    in.Department,
		SubmittedByID: actor.ID,
		Tags:          in.Tags,
		Attachments:   []models.Attachment{},
	}
	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}
	c.SubmittedBy = actor

	s.record(ctx, actor, models.ActionCreateComplaint, c, "Created complaint: "+c.Title, nil)

	if c.Priority == models.PriorityCritical && s.notifier != nil {
		s.notifier.NotifyCritical(ctx, c)
	}
	return c, nil
}

// Get returns the complaint with its comments. Only the submitter and admins may read it.
func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(actor, c.SubmittedByID); err != nil {
		return nil, err
	}
	comments, err := s.Storage.ListComments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Comments = comments
	return c, nil
}

// List shows admins everything, after escalating stale complaints, and everyone else their own.
func (s *Service) List(ctx context.Context, actor *models.User, filter models.ComplaintFilter) ([]models.Complaint, models.Pagination, error) {
	if actor == nil {
		return nil, models.Pagination{}, apperr.Unauthorized("Authentication required")
	}
	if err := validateFilter(filter); err != nil {
		return nil, models.Pagination{}, err
	}
	if access.CanSeeAll(actor) {
		if _, err := s.sweeper.Sweep(ctx, actor, escalation.SourceList); err != nil {
			s.logger.WithError(err).Warn("escalation sweep before list failed")
		}
	} else {
		filter.SubmittedBy = actor.ID
	}

	filter.Page, filter.Limit = config.NormalizePage(filter.Page, filter.Limit)
	complaints, total, err := s.Storage.ListComplaints(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return complaints, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Update edits a complaint. Owners may edit the descriptive fields; admins may edit anything.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, in UpdateInput) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(actor, c.SubmittedByID); err != nil {
		return nil, err
	}
	if in.touchesAdminFields() && !actor.IsAdmin() {
		return nil, apperr.Forbidden("Only admins can change status, assignment or resolution")
	}

	fields, assignee, err := s.updateFields(ctx, actor, c, in)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("No fields to update")
	}
	if err := s.Storage.UpdateComplaint(ctx, c.ID, fields); err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionUpdateComplaint, updated, "Updated complaint: "+updated.Title, map[string]any{"fields": fieldNames(fields)})
	if assignee != nil {
		s.record(ctx, actor, models.ActionAssignComplaint, updated,
			fmt.Sprintf("Assigned complaint %q to %s", updated.Title, assignee.Name),
			map[string]any{"assigneeId": assignee.ID, "assigneeName": assignee.Name})
	}
	return updated, nil
}

// updateFields validates the input and turns it into a column map. It returns the new
// assignee when the assignment changes to a user.
func (s *Service) updateFields(ctx context.Context, actor *models.User, c *models.Complaint, in UpdateInput) (map[string]any, *models.User, error) {
	var fe apperr.FieldErrors
	fields := map[string]any{}

	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		checkLength(&fe, "title", "Title", v, config.TitleMinLen, config.TitleMaxLen)
		fields["title"] = v
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		checkLength(&fe, "description", "Description", v, config.DescriptionMinLen, config.DescriptionMaxLen)
		fields["description"] = v
	}
	if in.Category != nil {
		checkCategory(&fe, *in.Category)
		fields["category"] = *in.Category
	}
	if in.Priority != nil {
		checkPriority(&fe, *in.Priority)
		fields["priority"] = *in.Priority
	}
	if in.Department != nil {
		v := strings.TrimSpace(*in.Department)
		checkDepartment(&fe, v)
		fields["department"] = v
	}
	if in.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](normalizeTags(*in.Tags))
	}
	if in.EstimatedResolutionTime != nil {
		fields["estimated_resolution_time"] = in.EstimatedResolutionTime.UTC()
	}
	checkResolution(&fe, in.Resolution)
	if in.Status != nil {
		if !in.Status.Valid() {
			fe.Add("status", "Invalid status")
		} else {
			for k, v := range s.statusFields(actor, *in.Status, in.Resolution) {
				fields[k] = v
			}
		}
	} else if in.Resolution != nil {
		if c.Status != models.StatusResolved {
			fe.Add("resolution", "Resolution can only be set on resolved complaints")
		} else {
			fields["resolution"] = strings.TrimSpace(*in.Resolution)
		}
	}

	var assignee *models.User
	if in.AssignedTo != nil {
		id := strings.TrimSpace(*in.AssignedTo)
		switch {
		case id == "":
			fields["assigned_to"] = nil
		case c.IsAssignee(id):
		default:
			u, err := s.Storage.GetUserByID(ctx, id)
			if err != nil {
				if apperr.CodeOf(err) != apperr.CodeNotFound {
					return nil, nil, err
				}
				fe.Add("assignedTo", "Assigned user not found")
			} else {
				fields["assigned_to"] = u.ID
				assignee = u
			}
		}
	}

	if err := fe.Err(); err != nil {
		return nil, nil, err
	}
	return fields, assignee, nil
}

// statusFields returns the columns a status change writes. Only Resolved stamps the resolver.
func (s *Service) statusFields(actor *models.User, status models.Status, resolution *string) map[string]any {
	fields := map[string]any{"status": status}
	if status != models.StatusResolved {
		return fields
	}
	text := config.DefaultResolution
	if resolution != nil && strings.TrimSpace(*resolution) != "" {
		text = strings.TrimSpace(*resolution)
	}
	fields["resolved_at"] = s.now().UTC()
	fields["resolved_by"] = actor.ID
	fields["resolution"] = text
	return fields
}

// UpdateStatus moves a complaint through its lifecycle. Admins and the assignee may call it.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id string, in StatusInput) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireStatusUpdater(actor, c); err != nil {
		return nil, err
	}

	var fe apperr.FieldErrors
	switch {
	case in.Status == "":
		fe.Add("status", "Status is required")
	case !in.Status.Valid():
		fe.Add("status", "Invalid status. Must be one of: Pending, In Progress, Resolved, Closed, Rejected")
	}
	checkResolution(&fe, in.Resolution)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if err := s.Storage.UpdateComplaint(ctx, c.ID, s.statusFields(actor, in.Status, in.Resolution)); err != nil {
		return nil, err
	}
	updated, err := s.load(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.ActionUpdateComplaint, updated,
		"Updated complaint status to: "+string(in.Status),
		map[string]any{"previousStatus": string(c.Status), "status": string(in.Status)})
	return updated, nil
}

// Delete removes a complaint for good. Its comments go with it; its audit trail stays.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.Storage.DeleteComplaint(ctx, c.ID); err != nil {
		return err
	}
	s.record(ctx, actor, models.ActionDeleteComplaint, c, "Deleted complaint: "+c.Title, map[string]any{"title": c.Title})
	return nil
}

// AddComment appends a comment and returns the complaint with all its comments.
func (s *Service) AddComment(ctx context.Context, actor *models.User, id, text string) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(actor, c.SubmittedByID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	var fe apperr.FieldErrors
	checkLength(&fe, "comment", "Comment", text, config.CommentMinLen, config.CommentMaxLen)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if err := s.Storage.CreateComment(ctx, &models.Comment{ComplaintID: c.ID, UserID: actor.ID, Text: text}); err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionUpdateComplaint, c, "Added comment to complaint: "+c.Title, nil)

	comments, err := s.Storage.ListComments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Comments = comments
	return c, nil
}

// Urgent lists the newest open Critical complaints.
func (s *Service) Urgent(ctx context.Context, actor *models.User) ([]models.Complaint, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Storage.ListUrgentComplaints(ctx, config.UrgentLimit)
}

func (s *Service) Stats(ctx context.Context, actor *models.User) (*models.ComplaintStats, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Storage.GetComplaintStats(ctx)
}

// AutoEscalate runs the escalation sweep on demand.
func (s *Service) AutoEscalate(ctx context.Context, actor *models.User) (escalation.Result, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return escalation.Result{}, err
	}
	return s.sweeper.Sweep(ctx, actor, escalation.SourceEndpoint)
}

// History returns the complaint's timeline: creation, logged actions and comments in time order.
func (s *Service) History(ctx context.Context, actor *models.User, id string) ([]models.TimelineEvent, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnerOrAdmin(actor, c.SubmittedByID); err != nil {
		return nil, err
	}

	logs, err := s.Storage.ListLogsForResource(ctx, models.ResourceComplaint, c.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.Storage.ListComments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return timeline.Assemble(c, logs, comments), nil
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
