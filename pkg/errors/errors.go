// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package errors provides coded errors for the retrieval service, built on
// samber/oops. Codes follow a "<area>.<operation>.<reason>" convention so
// callers can branch on the trailing reason without string-matching messages.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreDatabaseFailure      Code = "store.database.failure"
	CodeStoreProjectNotFound      Code = "store.project.get.not_found"
	CodeStoreDocumentNotFound     Code = "store.document.get.not_found"
	CodeStoreChunkEncodeFailed    Code = "store.chunk.encode.failure"
	CodeStoreChunkDecodeFailed    Code = "store.chunk.decode.failure"
	CodeStoreConversationNotFound Code = "store.conversation.get.not_found"
	CodeStoreInvalidInput         Code = "store.invalid_input"

	CodeProviderRequestInvalid     Code = "provider.request.invalid"
	CodeProviderUpstreamFailure    Code = "provider.upstream.failure"
	CodeProviderResponseInvalid    Code = "provider.response.invalid"
	CodeProviderNotFound           Code = "provider.registry.not_found"
	CodeProviderEmbedUnsupported   Code = "provider.embeddings.unsupported"
	CodeProviderEmbedEmptyResult   Code = "provider.embeddings.empty_result"
	CodeProviderEmbedCountMismatch Code = "provider.embeddings.count_mismatch"

	CodeRetrievalQueryInvalid  Code = "retrieval.query.invalid_input"
	CodeRetrievalIngestInvalid Code = "retrieval.ingest.invalid_input"
	CodeRetrievalSearchFailure Code = "retrieval.search.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeSecretInvalidInput  Code = "secret.invalid_input"
	CodeSecretNotFound      Code = "secret.get.not_found"
	CodeSecretStoreFailure  Code = "secret.store.failure"
	CodeSecretDeleteFailure Code = "secret.delete.failure"
	CodeSecretListFailure   Code = "secret.list.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerEntityNotFound  Code = "server.entity.not_found"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerStartFailure    Code = "server.start.failure"

	CodeCLIInputInvalid   Code = "cli.input.invalid"
	CodeCLISetupFailure   Code = "cli.setup.failure"
	CodeCLIRequestFailure Code = "cli.request.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldProject(value string) Attr {
	return Field("project_id", value)
}

func FieldDocument(value string) Attr {
	return Field("document_id", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// recoded pins the code applied when an already-coded error crosses a layer
// boundary. The oops getters prefer the deepest code in a chain, so a bare
// oops wrap can never change the code of an error that already carries one;
// the pin keeps the boundary code visible to CodeOf while the full chain
// stays intact for errors.Is and errors.As.
type recoded struct {
	code Code
	err  error
}

func (r *recoded) Error() string { return r.err.Error() }

func (r *recoded) Unwrap() error { return r.err }

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return &recoded{
		code: code,
		err:  oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg),
	}
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return &recoded{
		code: code,
		err:  oops.Code(code).Wrapf(err, format, args...),
	}
}

// With adds structured fields to an existing error chain, preserving its code.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

// CodeOf returns the error's code. The outermost boundary code wins: a store
// failure wrapped at the retrieval boundary reports the retrieval code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	var r *recoded
	if stderrors.As(err, &r) {
		return r.code
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsUnsupported(err error) bool {
	return reason(CodeOf(err)) == "unsupported"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

// HTTPStatus maps an error code onto the HTTP status the server should return.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsUnsupported(err):
		return http.StatusNotImplemented
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
