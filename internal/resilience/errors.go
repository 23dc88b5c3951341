// Package resilience provides the enrichment error taxonomy and the
// retry/backoff machinery used at collaborator boundaries.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// IssueKind classifies every failure mode the pipeline can surface. Kinds
// never abort an item: they degrade it (missing field, needs_review) and
// show up as human-readable issues on the record.
type IssueKind string

const (
	IssueExtractionAmbiguous     IssueKind = "extraction_ambiguous"
	IssueMissingMandatoryField   IssueKind = "missing_mandatory_field"
	IssueSourceConflict          IssueKind = "source_conflict"
	IssueMarketUnverified        IssueKind = "market_unverified"
	IssueCollaboratorUnavailable IssueKind = "collaborator_unavailable"
	IssueMalformedResponse       IssueKind = "malformed_response"
)

// Issue is a typed pipeline error carrying its taxonomy kind.
type Issue struct {
	Kind IssueKind
	Msg  string
	Err  error
}

func (i *Issue) Error() string {
	if i.Err != nil {
		return fmt.Sprintf("%s: %s: %v", i.Kind, i.Msg, i.Err)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Msg)
}

func (i *Issue) Unwrap() error {
	return i.Err
}

// NewIssue builds an Issue for a kind with a human-readable message.
func NewIssue(kind IssueKind, msg string) *Issue {
	return &Issue{Kind: kind, Msg: msg}
}

// WrapIssue attaches a kind to an underlying error.
func WrapIssue(kind IssueKind, msg string, err error) *Issue {
	return &Issue{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the issue kind from an error chain, or "" if none.
func KindOf(err error) IssueKind {
	var i *Issue
	if errors.As(err, &i) {
		return i.Kind
	}
	return ""
}

// TransientError marks an error as safe to retry (rate limits, 5xx,
// network timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP
// status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether the error chain contains a TransientError or
// matches common network-level transient patterns. Malformed collaborator
// responses are explicitly not transient: retrying a schema violation
// cannot help.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if KindOf(err) == IssueMalformedResponse {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
