// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the user and for HTTP status mapping.
type Kind int

const (
	// KindValidation is a bad input detected before any store call.
	KindValidation Kind = iota + 1
	// KindAuth is a failed sign-in.
	KindAuth
	// KindStoreRead is a failed live-query push.
	KindStoreRead
	// KindStoreWrite is a failed create, update or delete.
	KindStoreWrite
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindStoreRead:
		return "store_read"
	case KindStoreWrite:
		return "store_write"
	default:
		return "unknown"
	}
}

var (
	ErrNotSignedIn          = errors.New("not signed in")
	ErrItemNotFound         = errors.New("item not found")
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	ErrNothingToExport      = errors.New("nothing to export")
)

// Error is a classified inventory failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Notice renders the error for the presentation layer.
func (e *Error) Notice() Notice {
	return Notice{Level: NoticeError, Title: "Error", Message: e.Message}
}

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// NewAuthError wraps a sign-in failure.
func NewAuthError(err error) *Error {
	return newError(KindAuth, "sign in", "Could not sign in to save your data.", err)
}

// NoticeLevel drives how the presentation layer styles a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a blocking, user-visible message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

func successNotice(msg string) Notice {
	return Notice{Level: NoticeSuccess, Title: "Success", Message: msg}
}
