package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/events"
	"github.com/spec-kit/school-portal/internal/policy"
	"github.com/spec-kit/school-portal/internal/repository"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// DirectoryService handles school contacts and group messages. Route
// middleware already gates roles; the service re-checks the policy
// table per (resource, action) so that a miswired route cannot widen
// access.
type DirectoryService struct {
	contacts   repository.ContactRepository
	messages   repository.GroupMessageRepository
	dispatcher events.Dispatcher
}

// NewDirectoryService builds the service.
func NewDirectoryService(contacts repository.ContactRepository, messages repository.GroupMessageRepository, dispatcher events.Dispatcher) *DirectoryService {
	return &DirectoryService{contacts: contacts, messages: messages, dispatcher: dispatcher}
}

// ListContacts returns the directory for any role permitted to read it.
func (s *DirectoryService) ListContacts(ctx context.Context, actor *auth.Identity) ([]domain.Contact, error) {
	if !policy.Permits(actor.Role, policy.ResourceContacts, policy.ActionRead) {
		return nil, apperrors.NewForbidden("Insufficient permissions")
	}
	return s.contacts.List(ctx)
}

// CreateContact adds a directory entry.
func (s *DirectoryService) CreateContact(ctx context.Context, actor *auth.Identity, contact *domain.Contact) error {
	if !policy.Permits(actor.Role, policy.ResourceContacts, policy.ActionCreate) {
		return apperrors.NewForbidden("Insufficient permissions")
	}
	if strings.TrimSpace(contact.Name) == "" {
		return apperrors.NewValidationError("contact name required", nil)
	}
	if contact.Kind == "" {
		contact.Kind = domain.ContactKindStaff
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return err
	}
	s.publishContactChanged(ctx, actor, contact.ID, "created")
	return nil
}

// UpdateContact replaces a directory entry's fields.
func (s *DirectoryService) UpdateContact(ctx context.Context, actor *auth.Identity, contact *domain.Contact) error {
	if !policy.Permits(actor.Role, policy.ResourceContacts, policy.ActionUpdate) {
		return apperrors.NewForbidden("Insufficient permissions")
	}
	if err := s.contacts.Update(ctx, contact); err != nil {
		return err
	}
	s.publishContactChanged(ctx, actor, contact.ID, "updated")
	return nil
}

// DeleteContact removes a directory entry.
func (s *DirectoryService) DeleteContact(ctx context.Context, actor *auth.Identity, id string) error {
	if !policy.Permits(actor.Role, policy.ResourceContacts, policy.ActionDelete) {
		return apperrors.NewForbidden("Insufficient permissions")
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return err
	}
	s.publishContactChanged(ctx, actor, id, "deleted")
	return nil
}

// ListMessages returns recent posts for a group.
func (s *DirectoryService) ListMessages(ctx context.Context, actor *auth.Identity, groupName string, limit int) ([]domain.GroupMessage, error) {
	if !policy.Permits(actor.Role, policy.ResourceMessages, policy.ActionRead) {
		return nil, apperrors.NewForbidden("Insufficient permissions")
	}
	return s.messages.ListByGroup(ctx, groupName, limit)
}

// PostMessage appends a post to a group on behalf of the actor.
func (s *DirectoryService) PostMessage(ctx context.Context, actor *auth.Identity, groupName, body string) (*domain.GroupMessage, error) {
	if !policy.Permits(actor.Role, policy.ResourceMessages, policy.ActionCreate) {
		return nil, apperrors.NewForbidden("Insufficient permissions")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}

	message := &domain.GroupMessage{
		GroupName:  groupName,
		AuthorID:   actor.SubjectID,
		AuthorRole: actor.Role,
		Body:       body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMessagePosted,
			Actor:     events.Actor{SubjectID: actor.SubjectID, Role: actor.Role},
			Timestamp: time.Now(),
			Payload: events.MessagePostedPayload{
				MessageID:   message.ID,
				GroupName:   groupName,
				BodyPreview: preview(body, 80),
			},
		})
	}
	return message, nil
}

func (s *DirectoryService) publishContactChanged(ctx context.Context, actor *auth.Identity, contactID, change string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventContactChanged,
		Actor:     events.Actor{SubjectID: actor.SubjectID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload:   events.ContactChangedPayload{ContactID: contactID, Change: change},
	})
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max]
}
