package potdrawconnect

import (
	"fmt"

	"connectrpc.com/connect"

	"github.com/castaneai/potdraw"
)

func toConnectError(err error) error {
	switch {
	case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case potdraw.ErrorHasStatus(err, potdraw.ErrorStatusAttemptsExhausted):
		return connect.NewError(connect.CodeResourceExhausted, err)
	}
	return err
}

func fromConnectError(err error) error {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument:
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, err)
	case connect.CodeNotFound:
		return potdraw.NewError(potdraw.ErrorStatusNotFound, err)
	case connect.CodeAlreadyExists:
		return potdraw.NewError(potdraw.ErrorStatusAlreadyExists, err)
	case connect.CodeResourceExhausted:
		return potdraw.NewError(potdraw.ErrorStatusAttemptsExhausted, fmt.Errorf("%w: %w", potdraw.ErrAttemptsExhausted, err))
	}
	return potdraw.NewError(potdraw.ErrorStatusUnknown, err)
}
