package resilience

import (
	"errors"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIssue_ErrorAndUnwrap(t *testing.T) {
	base := eris.New("schema field missing")
	issue := WrapIssue(IssueMalformedResponse, "research payload", base)

	assert.Contains(t, issue.Error(), "malformed_response")
	assert.Contains(t, issue.Error(), "research payload")
	assert.True(t, errors.Is(issue, base))
}

func TestKindOf(t *testing.T) {
	err := eris.Wrap(NewIssue(IssueSourceConflict, "yield disagrees"), "resolving item")
	assert.Equal(t, IssueSourceConflict, KindOf(err))

	assert.Equal(t, IssueKind(""), KindOf(eris.New("plain")))
	assert.Equal(t, IssueKind(""), KindOf(nil))
}

func TestIsTransient_TransientError(t *testing.T) {
	err := NewTransientError(eris.New("rate limited"), 429)
	assert.True(t, IsTransient(err))
	assert.True(t, IsTransient(eris.Wrap(err, "calling research service")))
}

func TestIsTransient_MalformedResponseNeverRetries(t *testing.T) {
	// A malformed payload stays malformed on retry.
	err := WrapIssue(IssueMalformedResponse, "bad json", NewTransientError(eris.New("x"), 500))
	assert.False(t, IsTransient(err))
}

func TestIsTransient_NetworkErrors(t *testing.T) {
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(syscall.ECONNREFUSED))
	assert.True(t, IsTransient(eris.New("read tcp: i/o timeout")))
	assert.False(t, IsTransient(eris.New("invalid policy file")))
	assert.False(t, IsTransient(nil))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
