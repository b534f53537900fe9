package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityExists     = errors.New("an account with this email already exists")
	ErrIdentityNotFound   = errors.New("no account found for this email")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrClientNotFound     = errors.New("client not found")
	ErrClientExists       = errors.New("client record already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrBusy               = errors.New("another operation is in progress")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidNavigation  = errors.New("navigation target not available")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEditorClosed       = errors.New("no client is open in the editor")
	ErrProvisionFailed    = errors.New("client record provisioning failed")
	ErrFederationDisabled = errors.New("federated sign-in is not configured")
	ErrDuplicateRequest   = errors.New("this request was already submitted")
)

// AuthError is returned when the auth service rejects an operation. Message
// is the service's own wording and is shown to the user as is.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps a provider failure for op.
func NewAuthError(op string, err error) *AuthError {
	return &AuthError{Op: op, Message: err.Error(), Err: err}
}

// FetchError is returned when a client document or list cannot be retrieved.
type FetchError struct {
	ClientID string
	Err      error
}

func (e *FetchError) Error() string {
	if e.ClientID == "" {
		return fmt.Sprintf("fetch clients: %v", e.Err)
	}
	return fmt.Sprintf("fetch client %s: %v", e.ClientID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PathError reports an editor address that does not resolve.
type PathError struct {
	Section string
	Path    string
	Reason  string
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("path %s: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("path %s.%s: %s", e.Section, e.Path, e.Reason)
}

// IndexError reports a list index outside [0, Len).
type IndexError struct {
	List  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (length %d)", e.Index, e.List, e.Len)
}

// UploadError aborts a single file-backed field update.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Path, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// CommitError means the store rejected a save; the working copy is intact.
type CommitError struct {
	ClientID string
	Err      error
}

func (e *CommitError) Error() string { return fmt.Sprintf("commit client %s: %v", e.ClientID, e.Err) }
func (e *CommitError) Unwrap() error { return e.Err }
