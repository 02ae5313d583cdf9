// Package apierrors implements the closed error taxonomy the authentication
// core uses for every failure it can produce, plus the mapping from a kind
// to an HTTP status code.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind is a closed set of failure categories. Every failure the pipeline can
// produce is one of these; callers can branch on Kind without string
// matching.
type Kind string

// Authentication kinds.
const (
	TokenMalformed        Kind = "token_malformed"
	TokenSignatureInvalid Kind = "token_signature_invalid"
	TokenExpired          Kind = "token_expired"
	TokenClaimMismatch    Kind = "token_claim_mismatch"
	AgentUnknown          Kind = "agent_unknown"
)

// Authorization kinds.
const (
	PermissionsInsufficient    Kind = "permissions_insufficient"
	RoleAbsent                 Kind = "role_absent"
	RoleCredentialRefused      Kind = "role_credential_refused"
	NonceMismatch              Kind = "nonce_mismatch"
	CredentialExpired          Kind = "credential_expired"
	CredentialSignatureInvalid Kind = "credential_signature_invalid"
	CredentialMalformed        Kind = "credential_malformed"
	IssuerUnresolved           Kind = "issuer_unresolved"
	VerificationMethodNotFound Kind = "verification_method_not_found"
)

// Flow-control kinds.
const (
	RateLimitExceeded Kind = "rate_limit_exceeded"
	CircuitOpen       Kind = "circuit_open"
	OperationTimeout  Kind = "operation_timeout"
	Cancelled         Kind = "cancelled"
)

// Infra kinds.
const (
	RegistryUnavailable  Kind = "registry_unavailable"
	ConfigurationInvalid Kind = "configuration_invalid"
)

// Error is the concrete error type every component returns. It carries a
// closed Kind, a human-readable message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var _ error = (*Error)(nil)

// New constructs an *Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, apierrors.New(SomeKind, "", nil)) match on Kind
// alone, so sentinels can be compared without caring about Message/Cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinel constructors, one per kind, so call sites never stringly-type a
// failure kind.
func NewTokenMalformed(cause error) *Error { return New(TokenMalformed, "token is malformed", cause) }
func NewTokenSignatureInvalid(cause error) *Error {
	return New(TokenSignatureInvalid, "token signature is invalid", cause)
}
func NewTokenExpired(cause error) *Error { return New(TokenExpired, "token has expired", cause) }
func NewTokenClaimMismatch(msg string) *Error {
	return New(TokenClaimMismatch, msg, nil)
}
func NewAgentUnknown(agentID string) *Error {
	return New(AgentUnknown, fmt.Sprintf("agent %q is not registered", agentID), nil)
}
func NewPermissionsInsufficient(missing []string) *Error {
	return New(PermissionsInsufficient, fmt.Sprintf("missing permissions: %v", missing), nil)
}
func NewRoleAbsent(role string) *Error {
	return New(RoleAbsent, fmt.Sprintf("no credential proves role %q", role), nil)
}
func NewRoleCredentialRefused(reason string) *Error {
	return New(RoleCredentialRefused, reason, nil)
}
func NewNonceMismatch() *Error {
	return New(NonceMismatch, "role response nonce does not match request nonce", nil)
}
func NewCredentialExpired() *Error { return New(CredentialExpired, "credential has expired", nil) }
func NewCredentialSignatureInvalid(cause error) *Error {
	return New(CredentialSignatureInvalid, "credential proof signature is invalid", cause)
}
func NewCredentialMalformed(cause error) *Error {
	return New(CredentialMalformed, "presentation is malformed", cause)
}
func NewIssuerUnresolved(issuer string, cause error) *Error {
	return New(IssuerUnresolved, fmt.Sprintf("could not resolve issuer %q", issuer), cause)
}
func NewVerificationMethodNotFound(method string) *Error {
	return New(VerificationMethodNotFound, fmt.Sprintf("verification method %q not found in DID document", method), nil)
}
func NewRateLimitExceeded(resetAt string) *Error {
	return New(RateLimitExceeded, fmt.Sprintf("rate limit exceeded, resets at %s", resetAt), nil)
}
func NewCircuitOpen(name string) *Error {
	return New(CircuitOpen, fmt.Sprintf("circuit %q is open", name), nil)
}
func NewOperationTimeout(op string, cause error) *Error {
	return New(OperationTimeout, fmt.Sprintf("operation %q timed out", op), cause)
}
func NewCancelled(cause error) *Error { return New(Cancelled, "operation was cancelled", cause) }
func NewRegistryUnavailable(cause error) *Error {
	return New(RegistryUnavailable, "registry is unavailable", cause)
}
func NewConfigurationInvalid(field, reason string) *Error {
	return New(ConfigurationInvalid, fmt.Sprintf("configuration field %q: %s", field, reason), nil)
}
