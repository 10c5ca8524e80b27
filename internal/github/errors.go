package github

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/go-github/v62/github"

	custom_errors "commit-lens/internal/errors"
)

// classifyFetchError maps a go-github error onto the upstream error taxonomy.
func classifyFetchError(op string, err error) error {
	if isTimeout(err) {
		return &custom_errors.UpstreamTimeoutError{Op: op, Err: err}
	}
	if isDecodeError(err) {
		return &custom_errors.SchemaValidationError{Entity: op + " response", Err: err}
	}
	return &custom_errors.UpstreamFetchError{Op: op, StatusCode: statusOf(err), Err: err}
}

func classifyTokenError(installationID int64, err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		body := errResp.Message
		if body == "" {
			body = errResp.Error()
		}
		return &custom_errors.UpstreamTokenError{
			InstallationID: installationID,
			StatusCode:     statusOf(err),
			Body:           body,
		}
	}
	return classifyFetchError("create installation token", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDecodeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	return errors.As(err, &typeErr) || errors.As(err, &syntaxErr)
}

func statusOf(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	return http.StatusBadGateway
}
