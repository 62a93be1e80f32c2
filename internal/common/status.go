package common

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// kindCodes maps every error kind onto the transport status enum. Order
// matters only for readability; GRPCCode checks kinds one by one with
// errors.Is so wrapped errors resolve to their kind.
var kindCodes = []struct {
	kind error
	code codes.Code
}{
	{ErrorValidation, codes.InvalidArgument},
	{ErrorNotFound, codes.NotFound},
	{ErrorConflict, codes.AlreadyExists},
	{ErrorTxAborted, codes.Aborted},
	{ErrorAborted, codes.Aborted},
	{ErrorExhausted, codes.ResourceExhausted},
	{ErrorUnauthenticated, codes.Unauthenticated},
	{ErrorTokenExpired, codes.Unauthenticated},
	{ErrorTokenMalformed, codes.InvalidArgument},
	{ErrorTokenRevoked, codes.ResourceExhausted},
	{ErrorTokenIssuerMismatch, codes.FailedPrecondition},
	{ErrorTokenSubjectMismatch, codes.FailedPrecondition},
	{ErrorTokenUnclassified, codes.Unknown},
	{ErrorSessionMissing, codes.Unavailable},
	{ErrorUnavailable, codes.Unavailable},
	{ErrorInternal, codes.Internal},
}

// GRPCCode resolves err to its transport status code. Unrecognized errors
// map to Unknown rather than being absorbed.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			return kc.code
		}
	}
	return codes.Unknown
}

// GRPCStatus wraps err into a *status.Status carrying the mapped code and
// the human-readable message of the error chain.
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	return status.New(GRPCCode(err), err.Error())
}
