package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"llmanim/internal/gateway/service/editor"
	"llmanim/internal/version"
)

func toConnectError(err error) error {
	var ce *connect.Error
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, version.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, version.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, version.ErrNameRequired):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, version.ErrStale):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, editor.ErrNoCode), errors.Is(err, editor.ErrUnusableSegmentation):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
