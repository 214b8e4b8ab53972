package domain

import (
	"errors"
	"fmt"
)

// LicenseStatus is the token returned by the licensing service. The
// vocabulary belongs to the remote store, so unknown values pass through.
type LicenseStatus string

const (
	LicenseValid             LicenseStatus = "valid"
	LicenseInvalid           LicenseStatus = "invalid"
	LicenseExpired           LicenseStatus = "expired"
	LicenseDisabled          LicenseStatus = "disabled"
	LicenseInactive          LicenseStatus = "inactive"
	LicenseSiteInactive      LicenseStatus = "site_inactive"
	LicenseItemNameMismatch  LicenseStatus = "item_name_mismatch"
	LicenseNoActivationsLeft LicenseStatus = "no_activations_left"
	LicenseDeactivated       LicenseStatus = "deactivated"
	LicenseFailed            LicenseStatus = "failed"
)

// IsValid reports whether the status grants access
func (s LicenseStatus) IsValid() bool {
	return s == LicenseValid
}

func (s LicenseStatus) String() string {
	return string(s)
}

// LicenseAction is the edd_action sent to the store
type LicenseAction string

const (
	ActionActivate   LicenseAction = "activate_license"
	ActionCheck      LicenseAction = "check_license"
	ActionDeactivate LicenseAction = "deactivate_license"
)

// ErrorKind classifies why a status could not be determined
type ErrorKind string

const (
	KindNone              ErrorKind = "none"
	KindNotRegistered     ErrorKind = "not_registered"
	KindEmptyLicense      ErrorKind = "empty_license"
	KindTransport         ErrorKind = "transport"
	KindHTTPStatus        ErrorKind = "http_status"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindMissingStatus     ErrorKind = "missing_status"
)

// License lookup errors
var (
	ErrNotRegistered     = errors.New("plugin is not registered")
	ErrEmptyLicense      = errors.New("license key is empty")
	ErrTransport         = errors.New("license request failed")
	ErrHTTPStatus        = errors.New("unexpected HTTP status from license server")
	ErrMalformedResponse = errors.New("malformed license response")
	ErrMissingStatus     = errors.New("license response has no status")
)

var kindErrors = map[ErrorKind]error{
	KindNotRegistered:     ErrNotRegistered,
	KindEmptyLicense:      ErrEmptyLicense,
	KindTransport:         ErrTransport,
	KindHTTPStatus:        ErrHTTPStatus,
	KindMalformedResponse: ErrMalformedResponse,
	KindMissingStatus:     ErrMissingStatus,
}

// LicenseResult is the outcome of one licensing call
type LicenseResult struct {
	Status LicenseStatus
	Kind   ErrorKind
	Err    error
}

// StatusResult builds a successful result
func StatusResult(status LicenseStatus) LicenseResult {
	return LicenseResult{Status: status, Kind: KindNone}
}

// FailedResult builds a failed result. The sentinel for kind is wrapped so
// errors.Is matches; cause, when given, is kept in the message chain.
func FailedResult(kind ErrorKind, cause error) LicenseResult {
	sentinel, ok := kindErrors[kind]
	if !ok {
		sentinel = fmt.Errorf("license error: %s", kind)
	}

	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}

	return LicenseResult{Kind: kind, Err: err}
}

// OK reports whether a status was obtained
func (r LicenseResult) OK() bool {
	return r.Kind == KindNone && r.Err == nil
}

// Lookup collapses every failure into ("", false)
func (r LicenseResult) Lookup() (LicenseStatus, bool) {
	if !r.OK() {
		return "", false
	}
	return r.Status, true
}
