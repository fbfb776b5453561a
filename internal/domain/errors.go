package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateMail         = errors.New("mail id already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidUpload         = errors.New("invalid upload")
	ErrConversionUnavailable = errors.New("conversion unavailable")
	ErrInvalidTransfer       = errors.New("invalid transfer")
)

// ConversionError reports a currency pair that could not be converted
type ConversionError struct {
	From string
	To   string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s to %s: %v", e.From, e.To, e.Err)
}

// Is matches ErrConversionUnavailable so callers never need the concrete type
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionUnavailable
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// UploadError reports a rejected avatar file
type UploadError struct {
	Filename string
	Reason   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q rejected: %s", e.Filename, e.Reason)
}

func (e *UploadError) Is(target error) bool {
	return target == ErrInvalidUpload
}

// TransferError explains why a transfer request was refused
type TransferError struct {
	Reason string
}

func (e *TransferError) Error() string {
	return "invalid transfer: " + e.Reason
}

func (e *TransferError) Is(target error) bool {
	return target == ErrInvalidTransfer
}
