// Package databasetest provides an in-memory database.Querier for unit tests.
package databasetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"commit-lens/internal/database"
)

// Store mimics the Postgres schema, including its unique keys and the
// repositories → installations foreign key.
type Store struct {
	mu            sync.Mutex
	users         map[string]database.User
	installations map[int64]database.Installation
	repositories  map[int64]database.Repository
	events        []database.PullRequestEvent

	// UpsertErrors makes UpsertRepository fail for the given repository ids.
	UpsertErrors map[int64]error
	// Writes counts every mutating call.
	Writes int
}

var _ database.Querier = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[string]database.User),
		installations: make(map[int64]database.Installation),
		repositories:  make(map[int64]database.Repository),
		UpsertErrors:  make(map[int64]error),
	}
}

// AddUser inserts a user row, as the login system would.
func (s *Store) AddUser(id string) database.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := database.User{ID: id, Name: id, Email: id + "@example.com", CreatedAt: now, UpdatedAt: now}
	s.users[id] = u
	return u
}

// Repositories returns all repository rows ordered by id.
func (s *Store) Repositories() []database.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]database.Repository, 0, len(s.repositories))
	for _, r := range s.repositories {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Events returns all event rows in insertion order.
func (s *Store) Events() []database.PullRequestEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.PullRequestEvent(nil), s.events...)
}

func (s *Store) GetUser(_ context.Context, id string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetInstallation(_ context.Context, installationID int64) (database.Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.installations[installationID]
	if !ok {
		return database.Installation{}, pgx.ErrNoRows
	}
	return inst, nil
}

func (s *Store) EnsureInstallation(_ context.Context, arg database.EnsureInstallationParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	if _, ok := s.installations[arg.InstallationID]; ok {
		return nil
	}
	s.installations[arg.InstallationID] = database.Installation{
		InstallationID:   arg.InstallationID,
		AccountLogin:     arg.AccountLogin,
		AccountAvatarUrl: arg.AccountAvatarUrl,
		CreatedAt:        time.Now(),
	}
	return nil
}

func (s *Store) ClaimInstallation(_ context.Context, arg database.ClaimInstallationParams) (database.Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	if _, ok := s.users[arg.UserID.String]; arg.UserID.Valid && !ok {
		return database.Installation{}, fmt.Errorf("insert or update on table \"installations\" violates foreign key constraint")
	}
	existing, ok := s.installations[arg.InstallationID]
	if ok && existing.UserID.Valid && existing.UserID.String != arg.UserID.String {
		return database.Installation{}, pgx.ErrNoRows
	}
	inst := database.Installation{
		InstallationID:   arg.InstallationID,
		UserID:           arg.UserID,
		AccountLogin:     arg.AccountLogin,
		AccountAvatarUrl: arg.AccountAvatarUrl,
		CreatedAt:        time.Now(),
	}
	if ok {
		inst.CreatedAt = existing.CreatedAt
	}
	s.installations[arg.InstallationID] = inst
	return inst, nil
}

func (s *Store) ListInstallationsForUser(_ context.Context, userID pgtype.Text) ([]database.Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Installation
	for _, inst := range s.installations {
		if inst.UserID.Valid && inst.UserID.String == userID.String {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallationID < out[j].InstallationID })
	return out, nil
}

func (s *Store) ListInstallationIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id := range s.installations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) DeleteInstallation(_ context.Context, arg database.DeleteInstallationParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	inst, ok := s.installations[arg.InstallationID]
	if !ok || !inst.UserID.Valid || inst.UserID.String != arg.UserID.String {
		return 0, nil
	}
	delete(s.installations, arg.InstallationID)
	for id, r := range s.repositories {
		if r.InstallationID == arg.InstallationID {
			delete(s.repositories, id)
		}
	}
	return 1, nil
}

func (s *Store) GetRepository(_ context.Context, id int64) (database.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repositories[id]
	if !ok {
		return database.Repository{}, pgx.ErrNoRows
	}
	return r, nil
}

func (s *Store) UpsertRepository(_ context.Context, arg database.UpsertRepositoryParams) (database.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.UpsertErrors[arg.ID]; err != nil {
		return database.Repository{}, err
	}
	if _, ok := s.installations[arg.InstallationID]; !ok {
		return database.Repository{}, fmt.Errorf("insert or update on table \"repositories\" violates foreign key constraint")
	}
	s.Writes++
	now := time.Now()
	r := database.Repository{
		ID:             arg.ID,
		InstallationID: arg.InstallationID,
		Name:           arg.Name,
		FullName:       arg.FullName,
		Owner:          arg.Owner,
		Description:    arg.Description,
		IsPrivate:      arg.IsPrivate,
		DefaultBranch:  arg.DefaultBranch,
		HtmlUrl:        arg.HtmlUrl,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if existing, ok := s.repositories[arg.ID]; ok {
		r.CreatedAt = existing.CreatedAt
	}
	s.repositories[arg.ID] = r
	return r, nil
}

func (s *Store) ListRepositoriesForUser(_ context.Context, userID pgtype.Text) ([]database.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Repository
	for _, r := range s.repositories {
		if inst, ok := s.installations[r.InstallationID]; ok && inst.UserID.Valid && inst.UserID.String == userID.String {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Store) CreatePullRequestEvent(_ context.Context, arg database.CreatePullRequestEventParams) (database.PullRequestEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == arg.ID {
			return database.PullRequestEvent{}, fmt.Errorf("duplicate key value violates unique constraint \"pull_request_events_pkey\"")
		}
	}
	s.Writes++
	e := database.PullRequestEvent(arg)
	s.events = append(s.events, e)
	return e, nil
}

func (s *Store) ListPullRequestEventsForUser(_ context.Context, arg database.ListPullRequestEventsForUserParams) ([]database.ListPullRequestEventsForUserRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.ListPullRequestEventsForUserRow
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		r, ok := s.repositories[e.RepositoryID]
		if !ok {
			continue
		}
		inst, ok := s.installations[r.InstallationID]
		if !ok || !inst.UserID.Valid || inst.UserID.String != arg.UserID.String {
			continue
		}
		out = append(out, database.ListPullRequestEventsForUserRow{
			ID:                  e.ID,
			RepositoryID:        e.RepositoryID,
			PrNumber:            e.PrNumber,
			Action:              e.Action,
			Title:               e.Title,
			Body:                e.Body,
			Author:              e.Author,
			AuthorAvatarUrl:     e.AuthorAvatarUrl,
			BaseBranch:          e.BaseBranch,
			HeadBranch:          e.HeadBranch,
			HeadSha:             e.HeadSha,
			State:               e.State,
			Merged:              e.Merged,
			HtmlUrl:             e.HtmlUrl,
			CreatedAt:           e.CreatedAt,
			UpdatedAt:           e.UpdatedAt,
			ReceivedAt:          e.ReceivedAt,
			RepositoryName:      r.Name,
			RepositoryFullName:  r.FullName,
			RepositoryOwner:     r.Owner,
			RepositoryIsPrivate: r.IsPrivate,
			RepositoryHtmlUrl:   r.HtmlUrl,
		})
		if int32(len(out)) >= arg.Limit {
			break
		}
	}
	return out, nil
}
