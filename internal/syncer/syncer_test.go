// internal/syncer/syncer_test.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commit-lens/internal/database"
	"commit-lens/internal/database/databasetest"
	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/github"
	"commit-lens/internal/model"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) ClaimInstallation(ctx context.Context, arg database.ClaimInstallationParams) (database.Installation, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Installation), args.Error(1)
}
func (m *MockQuerier) CreatePullRequestEvent(ctx context.Context, arg database.CreatePullRequestEventParams) (database.PullRequestEvent, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.PullRequestEvent), args.Error(1)
}
func (m *MockQuerier) DeleteInstallation(ctx context.Context, arg database.DeleteInstallationParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) EnsureInstallation(ctx context.Context, arg database.EnsureInstallationParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}
func (m *MockQuerier) GetInstallation(ctx context.Context, installationID int64) (database.Installation, error) {
	args := m.Called(ctx, installationID)
	return args.Get(0).(database.Installation), args.Error(1)
}
func (m *MockQuerier) GetRepository(ctx context.Context, id int64) (database.Repository, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Repository), args.Error(1)
}
func (m *MockQuerier) GetUser(ctx context.Context, id string) (database.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.User), args.Error(1)
}
func (m *MockQuerier) ListInstallationIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockQuerier) ListInstallationsForUser(ctx context.Context, userID pgtype.Text) ([]database.Installation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]database.Installation), args.Error(1)
}
func (m *MockQuerier) ListPullRequestEventsForUser(ctx context.Context, arg database.ListPullRequestEventsForUserParams) ([]database.ListPullRequestEventsForUserRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]database.ListPullRequestEventsForUserRow), args.Error(1)
}
func (m *MockQuerier) ListRepositoriesForUser(ctx context.Context, userID pgtype.Text) ([]database.Repository, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]database.Repository), args.Error(1)
}
func (m *MockQuerier) UpsertRepository(ctx context.Context, arg database.UpsertRepositoryParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}

// fakeSource serves fixed repository pages per installation.
type fakeSource struct {
	pages      map[int64][][]model.Repository
	failAfter  map[int64]error
	details    map[int64]*model.InstallationDetails
	detailsErr error
}

func (f *fakeSource) WalkInstallationRepositories(_ context.Context, installationID int64, fn func([]model.Repository) error) error {
	for _, page := range f.pages[installationID] {
		if err := fn(page); err != nil {
			return err
		}
	}
	return f.failAfter[installationID]
}

func (f *fakeSource) GetInstallationDetails(_ context.Context, installationID int64) (*model.InstallationDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	d, ok := f.details[installationID]
	if !ok {
		return nil, &custom_errors.UpstreamFetchError{Op: "get installation", StatusCode: 404, Err: errors.New("Not Found")}
	}
	return d, nil
}

type staticMinter string

func (m staticMinter) Mint() (string, error) { return string(m), nil }

// mixedPageClient returns a GitHub client whose installation 9 lists one page
// holding a repository without full_name between two valid ones.
func mixedPageClient(t *testing.T) *github.Client {
	const valid = `{"id": %d, "name": "r%d", "full_name": "acme/r%d", "owner": {"login": "acme"}, "private": false, "html_url": "https://github.com/acme/r%d", "default_branch": "main"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/installations/9/access_tokens":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintln(w, `{"token": "ghs_sync", "expires_at": "2030-01-01T00:00:00Z"}`)
		case "/installation/repositories":
			fmt.Fprintf(w, `{"total_count": 3, "repositories": [`+valid+`, {"id": 7, "name": "x"}, `+valid+`]}`, 1, 1, 1, 1, 2, 2, 2, 2)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := github.NewClient(staticMinter("app.jwt"), github.Options{BaseURL: server.URL + "/", Timeout: 5 * time.Second}, testLogger())
	require.NoError(t, err)
	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func ghRepo(id int64, fullName string) model.Repository {
	desc := "description of " + fullName
	return model.Repository{
		GithubRepoID:  id,
		Name:          fullName[len("acme/"):],
		FullName:      fullName,
		Owner:         "acme",
		Description:   &desc,
		DefaultBranch: "main",
		HTMLURL:       "https://github.com/" + fullName,
	}
}

func TestSyncer_SyncInstallation(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts every repository across pages", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		source := &fakeSource{pages: map[int64][][]model.Repository{
			1: {
				{ghRepo(10, "acme/a"), ghRepo(11, "acme/b")},
				{ghRepo(12, "acme/c")},
			},
		}}
		s := NewSyncer(store, source, testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, rows, 3)
		stored := store.Repositories()
		require.Len(t, stored, 3)
		assert.Equal(t, "acme/a", stored[0].FullName)
		assert.Equal(t, int64(1), stored[0].InstallationID)
		assert.Equal(t, pgtype.Text{String: "main", Valid: true}, stored[0].DefaultBranch)
		assert.Equal(t, pgtype.Text{String: "description of acme/a", Valid: true}, stored[0].Description)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		source := &fakeSource{pages: map[int64][][]model.Repository{
			1: {{ghRepo(10, "acme/a"), ghRepo(11, "acme/b")}},
		}}
		s := NewSyncer(store, source, testLogger(), 0)

		_, err := s.SyncInstallation(ctx, 1)
		require.NoError(t, err)
		first := store.Repositories()

		_, err = s.SyncInstallation(ctx, 1)
		require.NoError(t, err)
		second := store.Repositories()

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
			assert.Equal(t, first[i].FullName, second[i].FullName)
			assert.Equal(t, first[i].CreatedAt, second[i].CreatedAt)
		}
	})

	t.Run("keeps committed rows when some upserts fail", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		dbErr := errors.New("connection reset")
		store.UpsertErrors[11] = dbErr
		source := &fakeSource{pages: map[int64][][]model.Repository{
			1: {{ghRepo(10, "acme/a"), ghRepo(11, "acme/b"), ghRepo(12, "acme/c")}},
		}}
		s := NewSyncer(store, source, testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Len(t, rows, 2)
		assert.Len(t, store.Repositories(), 2)
	})

	t.Run("keeps earlier pages when a later page fails upstream", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		upstreamErr := &custom_errors.UpstreamFetchError{Op: "list installation repositories", StatusCode: 502, Err: errors.New("bad gateway")}
		source := &fakeSource{
			pages:     map[int64][][]model.Repository{1: {{ghRepo(10, "acme/a")}}},
			failAfter: map[int64]error{1: upstreamErr},
		}
		s := NewSyncer(store, source, testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 1)

		var fetchErr *custom_errors.UpstreamFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Len(t, rows, 1)
		assert.Len(t, store.Repositories(), 1)
	})

	t.Run("commits the valid entries of a page with an invalid entry", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 9, AccountLogin: "acme"}))
		s := NewSyncer(store, mixedPageClient(t), testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 9)

		var schemaErr *custom_errors.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "full_name", schemaErr.Field)
		assert.Len(t, rows, 2)

		stored := store.Repositories()
		require.Len(t, stored, 2)
		ids := []int64{stored[0].ID, stored[1].ID}
		assert.ElementsMatch(t, []int64{1, 2}, ids)
	})

	t.Run("creates an unclaimed installation when none is known", func(t *testing.T) {
		store := databasetest.New()
		source := &fakeSource{
			pages:   map[int64][][]model.Repository{7: {{ghRepo(10, "acme/a")}}},
			details: map[int64]*model.InstallationDetails{7: {ID: 7, AccountLogin: "acme", AccountAvatarURL: "https://avatars/acme"}},
		}
		s := NewSyncer(store, source, testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 7)

		require.NoError(t, err)
		assert.Len(t, rows, 1)
		inst, err := store.GetInstallation(ctx, 7)
		require.NoError(t, err)
		assert.False(t, inst.UserID.Valid)
		assert.Equal(t, "acme", inst.AccountLogin)
	})

	t.Run("moves a repository to the installation that now sees it", func(t *testing.T) {
		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 2, AccountLogin: "acme-2"}))
		source := &fakeSource{pages: map[int64][][]model.Repository{
			1: {{ghRepo(10, "acme/a")}},
			2: {{ghRepo(10, "acme/a")}},
		}}
		s := NewSyncer(store, source, testLogger(), 0)

		_, err := s.SyncInstallation(ctx, 1)
		require.NoError(t, err)
		_, err = s.SyncInstallation(ctx, 2)
		require.NoError(t, err)

		stored := store.Repositories()
		require.Len(t, stored, 1)
		assert.Equal(t, int64(2), stored[0].InstallationID)
	})

	t.Run("writes nothing when installation details cannot be fetched", func(t *testing.T) {
		store := databasetest.New()
		source := &fakeSource{
			pages:      map[int64][][]model.Repository{7: {{ghRepo(10, "acme/a")}}},
			detailsErr: &custom_errors.UpstreamTimeoutError{Op: "get installation", Err: context.DeadlineExceeded},
		}
		s := NewSyncer(store, source, testLogger(), 0)

		rows, err := s.SyncInstallation(ctx, 7)

		var timeoutErr *custom_errors.UpstreamTimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Empty(t, rows)
		assert.Zero(t, store.Writes)
	})
}

func TestSyncer_EnsureInstallation(t *testing.T) {
	ctx := context.Background()

	t.Run("does not touch an existing installation", func(t *testing.T) {
		mockQ := new(MockQuerier)
		s := &Syncer{db: mockQ, ghClient: &fakeSource{}, logger: testLogger()}

		mockQ.On("GetInstallation", ctx, int64(3)).Return(database.Installation{InstallationID: 3}, nil).Once()

		err := s.ensureInstallation(ctx, 3)

		assert.NoError(t, err)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "EnsureInstallation")
	})

	t.Run("inserts details fetched from GitHub", func(t *testing.T) {
		mockQ := new(MockQuerier)
		source := &fakeSource{details: map[int64]*model.InstallationDetails{3: {ID: 3, AccountLogin: "acme", AccountAvatarURL: "https://avatars/acme"}}}
		s := &Syncer{db: mockQ, ghClient: source, logger: testLogger()}

		mockQ.On("GetInstallation", ctx, int64(3)).Return(database.Installation{}, pgx.ErrNoRows).Once()
		mockQ.On("EnsureInstallation", ctx, database.EnsureInstallationParams{
			InstallationID:   3,
			AccountLogin:     "acme",
			AccountAvatarUrl: pgtype.Text{String: "https://avatars/acme", Valid: true},
		}).Return(nil).Once()

		err := s.ensureInstallation(ctx, 3)

		assert.NoError(t, err)
		mockQ.AssertExpectations(t)
	})

	t.Run("returns an error if database lookup fails unexpectedly", func(t *testing.T) {
		mockQ := new(MockQuerier)
		s := &Syncer{db: mockQ, ghClient: &fakeSource{}, logger: testLogger()}
		dbError := errors.New("unexpected database error")

		mockQ.On("GetInstallation", ctx, int64(3)).Return(database.Installation{}, dbError).Once()

		err := s.ensureInstallation(ctx, 3)

		assert.ErrorIs(t, err, dbError)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "EnsureInstallation")
	})
}

func TestSyncer_Start(t *testing.T) {
	t.Run("reconciles every known installation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := databasetest.New()
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 1, AccountLogin: "acme"}))
		require.NoError(t, store.EnsureInstallation(ctx, database.EnsureInstallationParams{InstallationID: 2, AccountLogin: "acme-2"}))

		source := &fakeSource{pages: map[int64][][]model.Repository{
			1: {{ghRepo(10, "acme/a")}},
			2: {{ghRepo(20, "acme/b")}},
		}}
		s := NewSyncer(store, source, testLogger(), time.Hour)

		done := make(chan struct{})
		go func() {
			s.Start(ctx)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return len(store.Repositories()) == 2
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		<-done
	})

	t.Run("returns immediately when disabled", func(t *testing.T) {
		mockQ := new(MockQuerier)
		s := NewSyncer(mockQ, &fakeSource{}, testLogger(), 0)

		s.Start(context.Background())

		mockQ.AssertNotCalled(t, "ListInstallationIDs", mock.Anything)
	})
}

func TestToPgText(t *testing.T) {
	empty := ""
	value := "x"
	assert.False(t, toPgText(nil).Valid)
	assert.False(t, toPgText(&empty).Valid)
	assert.Equal(t, pgtype.Text{String: "x", Valid: true}, toPgText(&value))
}
