// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"strings"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
	"quillpress/internal/validate"
)

// Authenticate checks a username-or-email and password pair. Every
// failure reads the same to the caller.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var (
		u   *models.User
		err error
	)
	login := strings.TrimSpace(in.Login)
	if strings.Contains(login, "@") {
		u, err = s.users.FindByEmail(ctx, login)
	} else {
		u, err = s.users.FindByUsername(ctx, login)
	}
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !s.users.CheckPassword(u, in.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("account is disabled")
	}
	return u, nil
}

// CurrentUser returns the actor's account.
func (s *Service) CurrentUser(ctx context.Context, actor *Actor) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	return u, err
}
