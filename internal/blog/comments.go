// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/events"
	"quillpress/internal/models"
	"quillpress/internal/validate"
)

// ListComments returns the threaded comments of a visible post.
func (s *Service) ListComments(ctx context.Context, actor *Actor, postID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

// CreateComment adds a comment by the actor. A reply's parent must belong
// to the same post.
func (s *Service) CreateComment(ctx context.Context, actor *Actor, postID uuid.UUID, in CreateCommentInput) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *in.ParentID)
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Field("parent_id", "parent comment not found")
		}
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperr.Field("parent_id", "parent comment belongs to another post")
		}
	}

	c, err := s.comments.Create(ctx, &models.Comment{
		PostID:   postID,
		AuthorID: actor.UserID,
		ParentID: in.ParentID,
		Content:  in.Content,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.CommentCreated, ID: c.ID})
	return c, nil
}

// DeleteComment removes a comment and its replies. Only the comment's
// author or an editor may delete it.
func (s *Service) DeleteComment(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canEdit(c.AuthorID) {
		return apperr.Forbidden("only the author or an editor may delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.CommentDeleted, ID: id})
	return nil
}

// visiblePost returns the post if the actor may see it. Drafts of other
// authors read as missing.
func (s *Service) visiblePost(ctx context.Context, actor *Actor, postID uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.Published && !actor.canEdit(p.AuthorID) {
		return nil, apperr.NotFound("post not found")
	}
	return p, nil
}
