package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrLoginFailed = errors.New("invalid email or secret")
)

var reasons = map[string]error{
	api.ReasonUnauthorized:      common.ErrorUnauthorized,
	api.ReasonUserExists:        common.ErrUserExists,
	api.ReasonUserNotFound:      common.ErrUserNotFound,
	api.ReasonInvalidCredential: common.ErrInvalidCredential,
	api.ReasonInvalidToken:      common.ErrInvalidToken,
	api.ReasonNotFound:          common.ErrorNotFound,
	api.ReasonValidation:        common.ErrorValidation,
	api.ReasonInternal:          common.ErrorInternal,
	api.ReasonLoginFailed:       ErrLoginFailed,
}

// mapError turns a gRPC status into a sentinel. The ErrorInfo reason wins;
// without one the status code decides.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != api.ErrorDomain {
			continue
		}
		if sentinel, ok := reasons[info.GetReason()]; ok {
			if sentinel == common.ErrorValidation {
				return fmt.Errorf("%w: %s", common.ErrorValidation, trimValidation(st.Message()))
			}
			return sentinel
		}
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrorUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func trimValidation(msg string) string {
	prefix := common.ErrorValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
