package webhook

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "commit-lens/internal/errors"
)

const openedPayload = `{"action":"opened","pull_request":{"number":42,"title":"Fix bug","user":{"login":"alice"},"base":{"ref":"main"},"head":{"ref":"fix","sha":"abc123"},"state":"open","merged":false,"html_url":"https://x/42","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"},"repository":{"id":999,"name":"repo","full_name":"alice/repo","owner":{"login":"alice"},"private":false,"html_url":"https://x","default_branch":"main"}}`

func TestAuthenticator_Verify(t *testing.T) {
	auth := NewAuthenticator("It's a Secret to Everybody")
	body := []byte("Hello, World!")

	t.Run("accepts GitHub's documented test vector", func(t *testing.T) {
		sig := "sha256=757107ea0eb2509fc211221cce984b8a37570b6d7586c22c46f4379c8b043e17"
		assert.True(t, auth.Verify(body, sig))
		assert.Equal(t, sig, auth.Sign(body))
	})

	t.Run("rejects any single-bit change to the body", func(t *testing.T) {
		sig := auth.Sign(body)
		for i := range body {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), body...)
				mutated[i] ^= 1 << bit
				assert.False(t, auth.Verify(mutated, sig), "byte %d bit %d", i, bit)
			}
		}
	})

	t.Run("rejects any single-bit change to the signature", func(t *testing.T) {
		digest, err := hex.DecodeString(auth.Sign(body)[len("sha256="):])
		require.NoError(t, err)
		for i := range digest {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), digest...)
				mutated[i] ^= 1 << bit
				assert.False(t, auth.Verify(body, "sha256="+hex.EncodeToString(mutated)))
			}
		}
	})

	t.Run("rejects a body that is equivalent JSON but not the same bytes", func(t *testing.T) {
		sig := auth.Sign([]byte(`{"a":1}`))
		assert.False(t, auth.Verify([]byte(`{ "a": 1 }`), sig))
	})

	t.Run("returns false for malformed headers", func(t *testing.T) {
		digest := auth.Sign(body)[len("sha256="):]
		assert.False(t, auth.Verify(body, digest))
		assert.False(t, auth.Verify(body, "sha1="+digest))
		assert.False(t, auth.Verify(body, ""))
		assert.False(t, auth.Verify(body, "sha256=zz"))
	})

	t.Run("a different secret does not verify", func(t *testing.T) {
		other := NewAuthenticator("another secret")
		assert.False(t, other.Verify(body, auth.Sign(body)))
	})
}

func TestParseEvent_PullRequest(t *testing.T) {
	t.Run("decodes and validates an opened pull request", func(t *testing.T) {
		ev, err := ParseEvent(EventPullRequest, []byte(openedPayload))
		require.NoError(t, err)

		pr, ok := ev.(*PullRequest)
		require.True(t, ok)
		assert.Equal(t, "opened", pr.Action)
		_, hasInstallation := pr.InstallationID()
		assert.False(t, hasInstallation)

		snap, err := pr.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, 42, snap.Number)
		assert.Equal(t, "opened", snap.Action)
		assert.Equal(t, "Fix bug", snap.Title)
		assert.Nil(t, snap.Body)
		assert.Equal(t, "alice", snap.Author)
		assert.Nil(t, snap.AuthorAvatarURL)
		assert.Equal(t, "main", snap.BaseBranch)
		assert.Equal(t, "fix", snap.HeadBranch)
		assert.Equal(t, "abc123", snap.HeadSHA)
		assert.Equal(t, "open", snap.State)
		assert.False(t, snap.Merged)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), snap.CreatedAt.UTC())
		assert.Equal(t, int64(999), snap.Repository.GithubRepoID)
		assert.Equal(t, "alice/repo", snap.Repository.FullName)
	})

	t.Run("exposes the installation id when present", func(t *testing.T) {
		ev, err := ParseEvent(EventPullRequest, []byte(`{"action":"closed","installation":{"id":77}}`))
		require.NoError(t, err)

		id, ok := ev.(*PullRequest).InstallationID()
		assert.True(t, ok)
		assert.Equal(t, int64(77), id)
	})

	t.Run("reports the first missing field", func(t *testing.T) {
		ev, err := ParseEvent(EventPullRequest, []byte(`{"action":"opened","pull_request":{"number":1},"repository":{"id":1}}`))
		require.NoError(t, err)

		_, err = ev.(*PullRequest).Snapshot()

		var valErr *custom_errors.PayloadValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "pull_request.title", valErr.Field)
	})

	t.Run("rejects a number outside the stored range", func(t *testing.T) {
		for _, number := range []string{"0", "-3", "2147483648"} {
			payload := strings.Replace(openedPayload, `"number":42`, `"number":`+number, 1)
			ev, err := ParseEvent(EventPullRequest, []byte(payload))
			require.NoError(t, err)

			_, err = ev.(*PullRequest).Snapshot()

			var valErr *custom_errors.PayloadValidationError
			require.ErrorAs(t, err, &valErr, number)
			assert.Equal(t, "pull_request.number", valErr.Field)
		}
	})

	t.Run("requires the repository section", func(t *testing.T) {
		ev, err := ParseEvent(EventPullRequest, []byte(`{"action":"opened","pull_request":{"number":1}}`))
		require.NoError(t, err)

		_, err = ev.(*PullRequest).Snapshot()

		var valErr *custom_errors.PayloadValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "repository", valErr.Field)
	})

	t.Run("fails closed on a wrong field type", func(t *testing.T) {
		_, err := ParseEvent(EventPullRequest, []byte(`{"action":"opened","pull_request":{"number":"42"}}`))

		var valErr *custom_errors.PayloadValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := ParseEvent(EventPullRequest, []byte(`{"action":`))

		var valErr *custom_errors.PayloadValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("requires an action", func(t *testing.T) {
		_, err := ParseEvent(EventPullRequest, []byte(`{}`))

		var valErr *custom_errors.PayloadValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "action", valErr.Field)
	})
}

func TestParseEvent_Installation(t *testing.T) {
	t.Run("installation event", func(t *testing.T) {
		ev, err := ParseEvent(EventInstallation, []byte(`{"action":"created","installation":{"id":5,"account":{"login":"acme"}}}`))
		require.NoError(t, err)

		change, ok := ev.(*InstallationChange)
		require.True(t, ok)
		assert.Equal(t, EventInstallation, change.EventType())
		assert.Equal(t, "created", change.Action)
		assert.Equal(t, int64(5), change.InstallationID)
	})

	t.Run("installation_repositories event", func(t *testing.T) {
		ev, err := ParseEvent(EventInstallationRepos, []byte(`{"action":"added","installation":{"id":6}}`))
		require.NoError(t, err)

		change := ev.(*InstallationChange)
		assert.Equal(t, EventInstallationRepos, change.Type)
		assert.Equal(t, "added", change.Action)
	})

	t.Run("missing installation data", func(t *testing.T) {
		_, err := ParseEvent(EventInstallation, []byte(`{"action":"created"}`))

		var valErr *custom_errors.PayloadValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "installation", valErr.Field)
	})
}

func TestParseEvent_Unhandled(t *testing.T) {
	ev, err := ParseEvent("ping", []byte(`not even json`))

	require.NoError(t, err)
	assert.Equal(t, &Unhandled{Type: "ping"}, ev)
}
