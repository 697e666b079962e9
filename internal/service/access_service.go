package service

import (
	"context"
	"fmt"
	"strings"

	"itinvent-bot/internal/entity"
	"itinvent-bot/internal/repository/specification"
	"itinvent-bot/internal/repository/unitofwork"
	"itinvent-bot/pkg/access"
)

// IAccessService loads the allow-list for the access cache and manages its table.
type IAccessService interface {
	access.Source
	Grant(ctx context.Context, kind, subject, note string) error
	Revoke(ctx context.Context, kind, subject string) (bool, error)
	Entries(ctx context.Context) ([]*entity.AccessEntry, error)
}

type accessService struct {
	uowFactory unitofwork.RepositoryFactory
	static     access.List
}

// NewAccessService merges the configured users and groups with the access_entries table.
func NewAccessService(uowFactory unitofwork.RepositoryFactory, users, groups []string) IAccessService {
	return &accessService{
		uowFactory: uowFactory,
		static:     access.List{Users: users, Groups: groups},
	}
}

func (s *accessService) LoadAccessList(ctx context.Context) (access.List, error) {
	list := access.List{
		Users:  append([]string(nil), s.static.Users...),
		Groups: append([]string(nil), s.static.Groups...),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.AccessEntryRepository().FindAll(ctx, specification.ActiveOnly{})
	if err != nil {
		return access.List{}, fmt.Errorf("load access entries: %w", err)
	}
	for _, e := range entries {
		switch e.Kind {
		case entity.AccessKindUser:
			list.Users = append(list.Users, e.Subject)
		case entity.AccessKindGroup:
			list.Groups = append(list.Groups, e.Subject)
		}
	}
	return list, nil
}

func normalizeKind(kind string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case entity.AccessKindUser, entity.AccessKindGroup:
		return k, nil
	default:
		return "", fmt.Errorf("unknown access kind %q, expected user or group", kind)
	}
}

func (s *accessService) Grant(ctx context.Context, kind, subject, note string) error {
	k, err := normalizeKind(kind)
	if err != nil {
		return err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fmt.Errorf("empty access subject")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AccessEntryRepository().Upsert(ctx, &entity.AccessEntry{Kind: k, Subject: subject, Note: note, Active: true})
}

func (s *accessService) Revoke(ctx context.Context, kind, subject string) (bool, error) {
	k, err := normalizeKind(kind)
	if err != nil {
		return false, err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AccessEntryRepository().Deactivate(ctx, k, strings.TrimSpace(subject))
}

func (s *accessService) Entries(ctx context.Context) ([]*entity.AccessEntry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AccessEntryRepository().FindAll(ctx,
		specification.OrderBy{Field: "kind"},
		specification.OrderBy{Field: "subject"},
	)
}
