// internal/model/models.go
package model

import "time"

// AppCredential identifies this service to GitHub as a GitHub App.
type AppCredential struct {
	AppID         int64
	PrivateKeyPEM string
}

// InstallationToken is a scoped, time-limited credential for one installation.
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// InstallationDetails is the installation metadata returned by GitHub.
type InstallationDetails struct {
	ID               int64
	AccountLogin     string
	AccountAvatarURL string
}

// Repository is a repository as reported by GitHub for an installation.
type Repository struct {
	GithubRepoID  int64
	Name          string
	FullName      string
	Owner         string
	Description   *string
	Private       bool
	DefaultBranch string
	HTMLURL       string
}
