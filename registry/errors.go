package registry

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/storage/model"
)

// Input validation errors; never partially applied, the caller has to
// correct the input.
var (
	ErrUnknownTemplate       = errors.New("unknown template")
	ErrUnknownField          = errors.New("unknown field")
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidExpiry         = errors.New("expiry must lie after the issuance time")
	ErrInvalidIdentity       = errors.New("invalid issuer identity")
	ErrEmptyDocument         = errors.New("document is empty")
	ErrDocumentTooLarge      = errors.New("document exceeds the maximum size")
	ErrInvalidContentHash    = errors.New("invalid content hash")
)

// Authorization errors
var (
	ErrIssuerNotAuthorized = errors.New("issuer is not authorized")
	ErrNotAuthorized       = errors.New("requester is not authorized")
)

// Not-found errors
var (
	ErrIssuerNotFound      = errors.New("issuer not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrContentNotFound     = errors.New("content not found")
)

// Conflict errors
var (
	ErrDuplicateIssuer = errors.New("issuer already registered")
	ErrAlreadyRevoked  = errors.New("certificate already revoked")
)

// Infrastructure errors. They are transient; retrying is up to the caller.
var (
	ErrStorageUnavailable = errors.New("content storage unavailable")
	ErrLedgerUnavailable  = errors.New("ledger unavailable")
	// ErrAborted is returned when the ledger aborted a transaction
	ErrAborted = model.ErrAborted
)

// UnknownFieldError lists every submitted field that the template does not
// define.
type UnknownFieldError struct {
	Template string
	Fields   []model.FieldName
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("template '%s': unknown field(s): %s", e.Template, joinFields(e.Fields))
}

// Unwrap makes errors.Is(err, ErrUnknownField) hold
func (e UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

// MissingRequiredFieldsError lists every required field of the template
// that was absent or empty.
type MissingRequiredFieldsError struct {
	Template string
	Fields   []model.FieldName
}

func (e MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("template '%s': missing required field(s): %s", e.Template, joinFields(e.Fields))
}

// Unwrap makes errors.Is(err, ErrMissingRequiredFields) hold
func (e MissingRequiredFieldsError) Unwrap() error {
	return ErrMissingRequiredFields
}

func joinFields(fields []model.FieldName) string {
	s := make([]string, len(fields))
	for i, f := range fields {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}

// ErrorKind returns the name of the error kind of err, or "" if err is not
// one of the engine's errors.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// FieldsOf returns the field list carried by a field validation error
func FieldsOf(err error) []model.FieldName {
	var missing MissingRequiredFieldsError
	if errors.As(err, &missing) {
		return missing.Fields
	}
	var unknown UnknownFieldError
	if errors.As(err, &unknown) {
		return unknown.Fields
	}
	return nil
}

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrUnknownTemplate, "UnknownTemplate"},
	{ErrUnknownField, "UnknownField"},
	{ErrMissingRequiredFields, "MissingRequiredFields"},
	{ErrInvalidExpiry, "InvalidExpiry"},
	{ErrInvalidIdentity, "InvalidIdentity"},
	{ErrEmptyDocument, "EmptyDocument"},
	{ErrDocumentTooLarge, "DocumentTooLarge"},
	{ErrInvalidContentHash, "InvalidContentHash"},
	{ErrIssuerNotAuthorized, "IssuerNotAuthorized"},
	{ErrNotAuthorized, "NotAuthorized"},
	{ErrIssuerNotFound, "IssuerNotFound"},
	{ErrCertificateNotFound, "CertificateNotFound"},
	{ErrContentNotFound, "ContentNotFound"},
	{ErrDuplicateIssuer, "DuplicateIssuer"},
	{ErrAlreadyRevoked, "AlreadyRevoked"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrLedgerUnavailable, "LedgerUnavailable"},
	{ErrAborted, "Aborted"},
}
