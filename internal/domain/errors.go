package domain

import "fmt"

// ErrorCode is the stable, client-visible identifier of a failure.
type ErrorCode string

const (
	CodeWalletNotFound   ErrorCode = "WALLET_NOT_FOUND"
	CodeProductNotFound  ErrorCode = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound    ErrorCode = "ORDER_NOT_FOUND"
	CodePaymentFailed    ErrorCode = "PAYMENT_FAILED"
	CodeMintFailed       ErrorCode = "MINT_FAILED"
	CodePersistFailed    ErrorCode = "PERSIST_FAILED"
	CodeInvalidDateRange ErrorCode = "INVALID_DATE_RANGE"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindNotFound        ErrorKind = "NotFoundError"
	KindExternalService ErrorKind = "ExternalServiceFailure"
	KindPersistence     ErrorKind = "PersistenceFailure"
	KindInternal        ErrorKind = "InternalError"
)

var kinds = map[ErrorCode]ErrorKind{
	CodeWalletNotFound:   KindNotFound,
	CodeProductNotFound:  KindNotFound,
	CodeOrderNotFound:    KindNotFound,
	CodePaymentFailed:    KindExternalService,
	CodeMintFailed:       KindExternalService,
	CodePersistFailed:    KindPersistence,
	CodeInvalidDateRange: KindValidation,
	CodeInternal:         KindInternal,
}

// OrderError is returned by every order operation. Two OrderErrors match
// under errors.Is when their codes are equal.
type OrderError struct {
	Code ErrorCode
	Msg  string
	Err  error
}

var (
	ErrWalletNotFound   = &OrderError{Code: CodeWalletNotFound, Msg: "member wallet not found"}
	ErrProductNotFound  = &OrderError{Code: CodeProductNotFound, Msg: "product not found"}
	ErrOrderNotFound    = &OrderError{Code: CodeOrderNotFound, Msg: "order not found"}
	ErrPaymentFailed    = &OrderError{Code: CodePaymentFailed, Msg: "fee payment failed"}
	ErrMintFailed       = &OrderError{Code: CodeMintFailed, Msg: "token mint failed, payment refunded"}
	ErrPersistFailed    = &OrderError{Code: CodePersistFailed, Msg: "order could not be saved"}
	ErrInvalidDateRange = &OrderError{Code: CodeInvalidDateRange, Msg: "invalid date range"}
	ErrInternal         = &OrderError{Code: CodeInternal, Msg: "internal error"}
)

// Wrap returns a copy of the sentinel carrying err as its cause.
func (e *OrderError) Wrap(err error) *OrderError {
	return &OrderError{Code: e.Code, Msg: e.Msg, Err: err}
}

// Withf returns a copy of the sentinel with a more specific message.
func (e *OrderError) Withf(format string, args ...any) *OrderError {
	return &OrderError{Code: e.Code, Msg: fmt.Sprintf(format, args...), Err: e.Err}
}

func (e *OrderError) Kind() ErrorKind {
	if k, ok := kinds[e.Code]; ok {
		return k
	}
	return KindInternal
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func (e *OrderError) Is(target error) bool {
	t, ok := target.(*OrderError)
	return ok && t.Code == e.Code
}
