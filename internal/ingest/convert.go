package ingest

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"commit-lens/internal/database"
	"commit-lens/internal/webhook"
)

func toEventParams(id string, receivedAt time.Time, s *webhook.PullRequestSnapshot) database.CreatePullRequestEventParams {
	return database.CreatePullRequestEventParams{
		ID:              id,
		RepositoryID:    s.Repository.GithubRepoID,
		PrNumber:        int32(s.Number),
		Action:          s.Action,
		Title:           s.Title,
		Body:            optionalText(s.Body),
		Author:          s.Author,
		AuthorAvatarUrl: optionalText(s.AuthorAvatarURL),
		BaseBranch:      s.BaseBranch,
		HeadBranch:      s.HeadBranch,
		HeadSha:         s.HeadSHA,
		State:           s.State,
		Merged:          s.Merged,
		HtmlUrl:         s.HTMLURL,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		ReceivedAt:      receivedAt,
	}
}

// optionalText maps nil to NULL and keeps empty strings.
func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
