// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/model"
)

const userAgent = "commit-lens-app"

// AssertionMinter mints app assertions (GitHub App JWTs).
type AssertionMinter interface {
	Mint() (string, error)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the REST API root, with a trailing slash.
	BaseURL string
	// Timeout bounds every upstream request.
	Timeout time.Duration
	// CacheTokens keeps installation tokens until shortly before they expire.
	CacheTokens bool
}

// Client talks to the GitHub REST API on behalf of the GitHub App and its installations.
type Client struct {
	issuer  AssertionMinter
	base    *http.Client
	baseURL *url.URL
	timeout time.Duration
	tokens  *tokenCache
	logger  *slog.Logger
}

// NewClient creates a Client that authenticates with assertions from issuer.
func NewClient(issuer AssertionMinter, opts Options, logger *slog.Logger) (*Client, error) {
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
	}
	c := &Client{
		issuer:  issuer,
		base:    &http.Client{Timeout: opts.Timeout},
		baseURL: baseURL,
		timeout: opts.Timeout,
		logger:  logger,
	}
	if opts.CacheTokens {
		c.tokens = newTokenCache(time.Now)
	}
	return c, nil
}

// withBearer returns a go-github client that sends token as a bearer credential.
func (c *Client) withBearer(ctx context.Context, token string) *github.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	tc.Timeout = c.timeout

	gh := github.NewClient(tc)
	gh.BaseURL = c.baseURL
	gh.UserAgent = userAgent
	return gh
}

func (c *Client) asApp(ctx context.Context) (*github.Client, error) {
	assertion, err := c.issuer.Mint()
	if err != nil {
		return nil, err
	}
	return c.withBearer(ctx, assertion), nil
}

// GetInstallationToken exchanges a fresh app assertion for an installation access token.
func (c *Client) GetInstallationToken(ctx context.Context, installationID int64) (*model.InstallationToken, error) {
	if tok, ok := c.tokens.get(installationID); ok {
		c.logger.Debug("Using cached installation token", "installation_id", installationID)
		return tok, nil
	}

	gh, err := c.asApp(ctx)
	if err != nil {
		return nil, err
	}

	tok, _, err := gh.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, classifyTokenError(installationID, err)
	}
	if tok.Token == nil || tok.GetToken() == "" {
		return nil, &custom_errors.SchemaValidationError{Entity: "installation token", Field: "token"}
	}
	if tok.ExpiresAt == nil {
		return nil, &custom_errors.SchemaValidationError{Entity: "installation token", Field: "expires_at"}
	}

	out := &model.InstallationToken{Token: tok.GetToken(), ExpiresAt: tok.GetExpiresAt().Time}
	c.tokens.put(installationID, out)
	c.logger.Debug("Obtained installation token", "installation_id", installationID, "expires_at", out.ExpiresAt)
	return out, nil
}

// WalkInstallationRepositories pages through the repositories visible to an
// installation, handing the valid entries of each page to fn. Pages already
// handed to fn stay handed over if a later page fails. Entries that fail
// validation are skipped and their errors joined into the returned error once
// every page has been walked.
func (c *Client) WalkInstallationRepositories(ctx context.Context, installationID int64, fn func([]model.Repository) error) error {
	tok, err := c.GetInstallationToken(ctx, installationID)
	if err != nil {
		return err
	}
	gh := c.withBearer(ctx, tok.Token)

	var invalid []error
	opts := &github.ListOptions{PerPage: 100}
	for {
		c.logger.Debug("Fetching installation repositories page", "installation_id", installationID, "page", opts.Page)

		list, resp, err := gh.Apps.ListRepos(ctx, opts)
		if err != nil {
			return errors.Join(append(invalid, classifyFetchError("list installation repositories", err))...)
		}

		page := make([]model.Repository, 0, len(list.Repositories))
		for _, r := range list.Repositories {
			repo, err := toInternalRepository(r)
			if err != nil {
				c.logger.Warn("Skipping invalid repository entry", "installation_id", installationID, "error", err)
				invalid = append(invalid, err)
				continue
			}
			page = append(page, *repo)
		}
		if err := fn(page); err != nil {
			return errors.Join(append(invalid, err)...)
		}

		if resp.NextPage == 0 {
			return errors.Join(invalid...)
		}
		opts.Page = resp.NextPage
	}
}

// ListInstallationRepositories returns every repository visible to an
// installation. On error it still returns the entries collected so far.
func (c *Client) ListInstallationRepositories(ctx context.Context, installationID int64) ([]model.Repository, error) {
	var all []model.Repository
	err := c.WalkInstallationRepositories(ctx, installationID, func(page []model.Repository) error {
		all = append(all, page...)
		return nil
	})
	return all, err
}

// GetInstallationDetails fetches the account an installation belongs to.
// It authenticates as the app, not as the installation.
func (c *Client) GetInstallationDetails(ctx context.Context, installationID int64) (*model.InstallationDetails, error) {
	gh, err := c.asApp(ctx)
	if err != nil {
		return nil, err
	}

	inst, _, err := gh.Apps.GetInstallation(ctx, installationID)
	if err != nil {
		return nil, classifyFetchError("get installation", err)
	}

	switch {
	case inst.ID == nil:
		return nil, &custom_errors.SchemaValidationError{Entity: "installation", Field: "id"}
	case inst.Account == nil || inst.Account.Login == nil:
		return nil, &custom_errors.SchemaValidationError{Entity: "installation", Field: "account.login"}
	case inst.Account.AvatarURL == nil:
		return nil, &custom_errors.SchemaValidationError{Entity: "installation", Field: "account.avatar_url"}
	}

	return &model.InstallationDetails{
		ID:               inst.GetID(),
		AccountLogin:     inst.GetAccount().GetLogin(),
		AccountAvatarURL: inst.GetAccount().GetAvatarURL(),
	}, nil
}

// toInternalRepository validates a github.Repository and translates it to our internal model.Repository.
func toInternalRepository(r *github.Repository) (*model.Repository, error) {
	invalid := func(field string) error {
		return &custom_errors.SchemaValidationError{Entity: "repository", Field: field}
	}
	switch {
	case r == nil:
		return nil, &custom_errors.SchemaValidationError{Entity: "repository", Err: fmt.Errorf("null entry")}
	case r.ID == nil:
		return nil, invalid("id")
	case r.Name == nil:
		return nil, invalid("name")
	case r.FullName == nil:
		return nil, invalid("full_name")
	case r.Owner == nil || r.Owner.Login == nil:
		return nil, invalid("owner.login")
	case r.Private == nil:
		return nil, invalid("private")
	case r.HTMLURL == nil:
		return nil, invalid("html_url")
	case r.DefaultBranch == nil:
		return nil, invalid("default_branch")
	}

	return &model.Repository{
		GithubRepoID:  r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Owner:         r.GetOwner().GetLogin(),
		Description:   r.Description,
		Private:       r.GetPrivate(),
		DefaultBranch: r.GetDefaultBranch(),
		HTMLURL:       r.GetHTMLURL(),
	}, nil
}
