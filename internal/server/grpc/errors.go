package grpc

import (
	"errors"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type failure struct {
	code    codes.Code
	reason  string
	message string
}

// classify maps a service error onto its transport failure. Validation
// messages are passed through; everything else gets a fixed description.
func classify(err error) failure {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return failure{codes.Unauthenticated, api.ReasonUnauthorized, "authentication required"}
	case errors.Is(err, common.ErrInvalidToken):
		return failure{codes.Unauthenticated, api.ReasonInvalidToken, "invalid or expired token"}
	case errors.Is(err, common.ErrUserExists):
		return failure{codes.AlreadyExists, api.ReasonUserExists, "user exists already"}
	case errors.Is(err, common.ErrUserNotFound):
		return failure{codes.NotFound, api.ReasonUserNotFound, "user not found"}
	case errors.Is(err, common.ErrInvalidCredential):
		return failure{codes.Unauthenticated, api.ReasonInvalidCredential, "invalid credential"}
	case errors.Is(err, common.ErrorNotFound):
		return failure{codes.NotFound, api.ReasonNotFound, "not found"}
	case errors.Is(err, common.ErrorValidation):
		return failure{codes.InvalidArgument, api.ReasonValidation, err.Error()}
	default:
		return failure{codes.Internal, api.ReasonInternal, "internal error"}
	}
}

// toStatus converts a service error into a gRPC status error carrying an
// errdetails.ErrorInfo with the stable reason.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	return classify(err).status()
}

// loginStatus is toStatus for login calls: unknown users and wrong secrets
// are reported identically.
func loginStatus(err error) error {
	if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrInvalidCredential) {
		return failure{codes.Unauthenticated, api.ReasonLoginFailed, "invalid email or secret"}.status()
	}
	return toStatus(err)
}

func (f failure) status() error {
	st := status.New(f.code, f.message)
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: f.reason,
		Domain: api.ErrorDomain,
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}
