package apierror

import "fmt"

// Kind groups error codes by how a caller should react to them.
type Kind string

const (
	KindValidation Kind = "validation" // malformed request, do not retry
	KindNotFound   Kind = "not_found"  // referenced entity missing or inactive
	KindConflict   Kind = "conflict"   // well-formed request violating a business invariant
	KindExternal   Kind = "external"   // payment processor declined or unreachable
	KindInternal   Kind = "internal"
)

// Error is a typed domain failure carrying a machine-readable code.
// Two errors are equal under errors.Is when their codes match, so a
// sentinel can be compared against a wrapped, more detailed instance.
type Error struct {
	Code    string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(code string, kind Kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// Wrap returns a copy of base with a more specific message.
func Wrap(base *Error, format string, args ...any) *Error {
	return &Error{Code: base.Code, Kind: base.Kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause returns a copy of base that unwraps to cause.
func WithCause(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Kind: base.Kind, Message: base.Message, Err: cause}
}

// Input / validation
var (
	ErrEmptyTransaction         = newErr("EMPTY_TRANSACTION", KindValidation, "transaction must contain at least one item")
	ErrPaymentsRequired         = newErr("PAYMENTS_REQUIRED", KindValidation, "transaction must contain at least one payment")
	ErrInvalidAmount            = newErr("INVALID_AMOUNT", KindValidation, "amount must be greater than zero")
	ErrInvalidQuantity          = newErr("INVALID_QUANTITY", KindValidation, "quantity must be a positive integer")
	ErrCheckNumberRequired      = newErr("CHECK_NUMBER_REQUIRED", KindValidation, "check number is required")
	ErrCardTokenRequired        = newErr("CARD_TOKEN_REQUIRED", KindValidation, "card token is required")
	ErrGiftCardNumberRequired   = newErr("GIFT_CARD_NUMBER_REQUIRED", KindValidation, "gift card number is required")
	ErrAccountRequired          = newErr("STORE_CREDIT_ACCOUNT_REQUIRED", KindValidation, "store credit account is required")
	ErrUnsupportedPaymentMethod = newErr("UNSUPPORTED_PAYMENT_METHOD", KindValidation, "unsupported payment method")
	ErrInvalidCredentials       = newErr("INVALID_CREDENTIALS", KindValidation, "invalid credentials")
	ErrInvalidFilter            = newErr("INVALID_FILTER", KindValidation, "invalid filter")
)

// Not found
var (
	ErrTerminalNotFound    = newErr("TERMINAL_NOT_FOUND", KindNotFound, "terminal not found")
	ErrProductNotFound     = newErr("PRODUCT_NOT_FOUND", KindNotFound, "product not found")
	ErrTransactionNotFound = newErr("TRANSACTION_NOT_FOUND", KindNotFound, "transaction not found")
	ErrGiftCardNotFound    = newErr("GIFT_CARD_NOT_FOUND", KindNotFound, "gift card not found")
	ErrAccountNotFound     = newErr("ACCOUNT_NOT_FOUND", KindNotFound, "store credit account not found")
	ErrCustomerNotFound    = newErr("CUSTOMER_NOT_FOUND", KindNotFound, "customer not found")
	ErrReceiptNotFound     = newErr("RECEIPT_NOT_FOUND", KindNotFound, "receipt not found")
)

// State conflicts
var (
	ErrInsufficientStock       = newErr("INSUFFICIENT_STOCK", KindConflict, "insufficient stock")
	ErrInsufficientCash        = newErr("INSUFFICIENT_CASH", KindConflict, "cash received is less than the payment amount")
	ErrInsufficientBalance     = newErr("INSUFFICIENT_BALANCE", KindConflict, "insufficient gift card balance")
	ErrInsufficientStoreCredit = newErr("INSUFFICIENT_STORE_CREDIT", KindConflict, "insufficient store credit")
	ErrPaymentMismatch         = newErr("PAYMENT_MISMATCH", KindConflict, "payment total does not match transaction total")
	ErrInvalidVoidState        = newErr("INVALID_VOID_STATE", KindConflict, "only completed transactions can be voided")
	ErrGiftCardInactive        = newErr("GIFT_CARD_INACTIVE", KindConflict, "gift card is inactive")
	ErrGiftCardExpired         = newErr("GIFT_CARD_EXPIRED", KindConflict, "gift card has expired")
	ErrNegativeBalance         = newErr("NEGATIVE_BALANCE_NOT_ALLOWED", KindConflict, "adjustment would result in a negative balance")
)

// External dependencies
var (
	ErrCardDeclined         = newErr("CARD_DECLINED", KindExternal, "card declined")
	ErrProcessorUnavailable = newErr("PROCESSOR_UNAVAILABLE", KindExternal, "payment processor unavailable")
)

var ErrInternal = newErr("INTERNAL_ERROR", KindInternal, "internal server error")
