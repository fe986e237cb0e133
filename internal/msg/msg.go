// Package msg defines the coded errors exchanged between the service layer
// and the web layer. Services return *Error values instead of throwing
// ad-hoc errors so that the translation to the response envelope is a pure
// mapping, testable without any transport.
package msg

import "fmt"

// Code identifies a business or system error condition. Clients distinguish
// business failures from system failures by code, not by HTTP status.
type Code string

const (
	CodeInternalError Code = "InternalServerError"
	CodeNotFound       Code = "RecordNotFound"
	CodeAccessDenied   Code = "AccessDenied"
	CodeValidation     Code = "Validation"
	CodeUploadTooLarge Code = "Upload.SizeLimitExceeded"

	// Account codes.
	CodeEmailInUse         Code = "Account.EmailInUse"
	CodeInvalidCredentials Code = "Account.InvalidCredentials"

	// Draft asset codes.
	CodeDraftInvalidStatus Code = "Draft.InvalidStatus"
	CodeDraftLocked        Code = "Draft.Locked"
	CodeDraftFileMissing   Code = "Draft.FileMissing"
	CodeDraftReviewPending Code = "Draft.ReviewPending"

	// Cart and order codes.
	CodeQuotation       Code = "Cart.Quotation"
	CodeCartEmpty       Code = "Cart.Empty"
	CodeCartCheckedOut  Code = "Cart.AlreadyCheckedOut"
	CodeOrderNotFound   Code = "Order.NotFound"
	CodeDuplicateOrder  Code = "Order.Duplicate"
	CodePaymentProvider Code = "Payment.Provider"

	// Verification codes.
	CodeKycInvalidStatus     Code = "Kyc.InvalidStatus"
	CodeKycPageFileMissing   Code = "Kyc.PageFileMissing"
	CodeFileTooLarge         Code = "Kyc.FileTooLarge"
	CodeFileTooSmall         Code = "Kyc.FileTooSmall"
	CodeFileTypeNotSupported Code = "Kyc.FileTypeNotSupported"

	// Contract template codes.
	CodeContractInvalidStatus Code = "Contract.InvalidStatus"
	CodeContractMasterMissing Code = "Contract.MasterMissing"

	// External collaborator codes.
	CodeCatalogueService Code = "Catalogue.Service"
	CodeRatingsService   Code = "Ratings.Service"
	CodeNotebookService  Code = "Notebook.Service"
)

// Message is a single coded entry in a response envelope. Field is set only
// for validation messages.
type Message struct {
	Code        Code   `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field,omitempty"`
}

// Error is a coded error returned by service operations. It satisfies the
// error interface so it can travel through ordinary error returns.
type Error struct {
	Code        Code
	Description string
	Fields      []Message
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// New creates a coded error.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Description: fmt.Sprintf(format, args...)}
}

// Invalid creates a validation error carrying field-level messages.
func Invalid(fields ...Message) *Error {
	return &Error{Code: CodeValidation, Description: "validation failed", Fields: fields}
}

// FieldMessage builds a field-level validation message.
func FieldMessage(field string, code Code, format string, args ...any) Message {
	return Message{Code: code, Description: fmt.Sprintf(format, args...), Field: field}
}
