package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/go-github/v62/github"

	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/model"
)

// GitHub event type names, as sent in X-GitHub-Event.
const (
	EventPullRequest       = "pull_request"
	EventInstallation      = "installation"
	EventInstallationRepos = "installation_repositories"
)

// Event is one of *PullRequest, *InstallationChange or *Unhandled.
type Event interface {
	EventType() string
}

// PullRequest is a decoded pull_request delivery. Only the action has been
// checked; call Snapshot to validate the rest of the payload.
type PullRequest struct {
	Action  string
	payload *github.PullRequestEvent
}

func (*PullRequest) EventType() string { return EventPullRequest }

// InstallationID returns the installation the delivery was sent for, if the payload names one.
func (p *PullRequest) InstallationID() (int64, bool) {
	if p.payload.Installation == nil || p.payload.Installation.ID == nil {
		return 0, false
	}
	return p.payload.Installation.GetID(), true
}

// InstallationChange is an installation or installation_repositories delivery.
type InstallationChange struct {
	Type           string
	Action         string
	InstallationID int64
}

func (c *InstallationChange) EventType() string { return c.Type }

// Unhandled is any delivery this service does not act on.
type Unhandled struct {
	Type string
}

func (u *Unhandled) EventType() string { return u.Type }

// PullRequestSnapshot is the validated state of a pull request at delivery time.
type PullRequestSnapshot struct {
	Repository      model.Repository
	Number          int
	Action          string
	Title           string
	Body            *string
	Author          string
	AuthorAvatarURL *string
	BaseBranch      string
	HeadBranch      string
	HeadSHA         string
	State           string
	Merged          bool
	HTMLURL         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ParseEvent decodes body according to eventType. Malformed payloads for the
// event types this service handles yield a PayloadValidationError.
func ParseEvent(eventType string, body []byte) (Event, error) {
	switch eventType {
	case EventPullRequest:
		var payload github.PullRequestEvent
		if err := decode(body, &payload); err != nil {
			return nil, err
		}
		if payload.GetAction() == "" {
			return nil, &custom_errors.PayloadValidationError{Field: "action", Reason: "is required"}
		}
		return &PullRequest{Action: payload.GetAction(), payload: &payload}, nil

	case EventInstallation, EventInstallationRepos:
		var payload struct {
			Action       string               `json:"action"`
			Installation *github.Installation `json:"installation"`
		}
		if err := decode(body, &payload); err != nil {
			return nil, err
		}
		if payload.Installation == nil || payload.Installation.ID == nil {
			return nil, &custom_errors.PayloadValidationError{Field: "installation", Reason: "missing installation data"}
		}
		return &InstallationChange{
			Type:           eventType,
			Action:         payload.Action,
			InstallationID: payload.Installation.GetID(),
		}, nil

	default:
		return &Unhandled{Type: eventType}, nil
	}
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &custom_errors.PayloadValidationError{Field: typeErr.Field, Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}
		}
		return &custom_errors.PayloadValidationError{Reason: err.Error()}
	}
	return nil
}

// Snapshot validates the pull request and repository sections of the payload.
func (p *PullRequest) Snapshot() (*PullRequestSnapshot, error) {
	if p.payload.PullRequest == nil {
		return nil, &custom_errors.PayloadValidationError{Field: "pull_request", Reason: "is required"}
	}
	if p.payload.Repo == nil {
		return nil, &custom_errors.PayloadValidationError{Field: "repository", Reason: "is required"}
	}
	pr := p.payload.PullRequest
	repo := p.payload.Repo

	required := []struct {
		field   string
		present bool
	}{
		{"pull_request.number", pr.Number != nil},
		{"pull_request.title", pr.Title != nil},
		{"pull_request.user.login", pr.User != nil && pr.User.Login != nil},
		{"pull_request.base.ref", pr.Base != nil && pr.Base.Ref != nil},
		{"pull_request.head.ref", pr.Head != nil && pr.Head.Ref != nil},
		{"pull_request.head.sha", pr.Head != nil && pr.Head.SHA != nil},
		{"pull_request.state", pr.State != nil},
		{"pull_request.merged", pr.Merged != nil},
		{"pull_request.html_url", pr.HTMLURL != nil},
		{"pull_request.created_at", pr.CreatedAt != nil},
		{"pull_request.updated_at", pr.UpdatedAt != nil},
		{"repository.id", repo.ID != nil},
		{"repository.name", repo.Name != nil},
		{"repository.full_name", repo.FullName != nil},
		{"repository.owner.login", repo.Owner != nil && repo.Owner.Login != nil},
		{"repository.private", repo.Private != nil},
		{"repository.html_url", repo.HTMLURL != nil},
	}
	for _, r := range required {
		if !r.present {
			return nil, &custom_errors.PayloadValidationError{Field: r.field, Reason: "is required"}
		}
	}
	if n := pr.GetNumber(); n <= 0 || n > math.MaxInt32 {
		return nil, &custom_errors.PayloadValidationError{Field: "pull_request.number", Reason: fmt.Sprintf("out of range: %d", n)}
	}
	if state := pr.GetState(); state != "open" && state != "closed" {
		return nil, &custom_errors.PayloadValidationError{Field: "pull_request.state", Reason: fmt.Sprintf("unexpected value %q", state)}
	}

	return &PullRequestSnapshot{
		Repository: model.Repository{
			GithubRepoID:  repo.GetID(),
			Name:          repo.GetName(),
			FullName:      repo.GetFullName(),
			Owner:         repo.GetOwner().GetLogin(),
			Description:   repo.Description,
			Private:       repo.GetPrivate(),
			DefaultBranch: repo.GetDefaultBranch(),
			HTMLURL:       repo.GetHTMLURL(),
		},
		Number:          pr.GetNumber(),
		Action:          p.Action,
		Title:           pr.GetTitle(),
		Body:            pr.Body,
		Author:          pr.GetUser().GetLogin(),
		AuthorAvatarURL: pr.User.AvatarURL,
		BaseBranch:      pr.GetBase().GetRef(),
		HeadBranch:      pr.GetHead().GetRef(),
		HeadSHA:         pr.GetHead().GetSHA(),
		State:           pr.GetState(),
		Merged:          pr.GetMerged(),
		HTMLURL:         pr.GetHTMLURL(),
		CreatedAt:       pr.GetCreatedAt().Time,
		UpdatedAt:       pr.GetUpdatedAt().Time,
	}, nil
}
