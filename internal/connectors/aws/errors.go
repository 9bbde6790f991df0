package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// AWS error codes that mean "not configured" rather than "lookup failed".
const (
	codeNoSuchBucketPolicy   = "NoSuchBucketPolicy"
	codeNoEncryptionConfig   = "ServerSideEncryptionConfigurationNotFoundError"
	codeNoSuchEntity         = "NoSuchEntity"
	codeAccessDenied         = "AccessDenied"
	codeAccessDeniedExc      = "AccessDeniedException"
	codeUnauthorizedOp       = "UnauthorizedOperation"
	codeInvalidClientTokenID = "InvalidClientTokenId"
)

// ErrorCode returns the AWS API error code of err, or "".
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsAccessDenied reports whether err is an authorisation failure.
func IsAccessDenied(err error) bool {
	switch ErrorCode(err) {
	case codeAccessDenied, codeAccessDeniedExc, codeUnauthorizedOp:
		return true
	}
	return false
}

// IsInvalidCredentials reports whether err means the credentials were rejected.
func IsInvalidCredentials(err error) bool {
	return ErrorCode(err) == codeInvalidClientTokenID
}

func hasCode(err error, code string) bool {
	return ErrorCode(err) == code
}
