package potdrawconnect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/castaneai/potdraw"
)

type emptyMessage struct{}

type structClient = connect.Client[structpb.Struct, structpb.Struct]

func procedure(service, method string) string {
	return "/" + service + "/" + method
}

func newUnaryHandler[Req, Res any](procedure string, fn func(ctx context.Context, req *Req) (*Res, error), opts ...connect.HandlerOption) *connect.Handler {
	return connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
		var in Req
		if err := fromStruct(req.Msg, &in); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		out, err := fn(ctx, &in)
		if err != nil {
			return nil, toConnectError(err)
		}
		msg, err := toStruct(out)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(msg), nil
	}, opts...)
}

func newStructClient(httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *structClient {
	return connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+procedure, opts...)
}

func callUnary[Res, Req any](ctx context.Context, client *structClient, req *Req) (*Res, error) {
	msg, err := toStruct(req)
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusInvalidRequest, err)
	}
	resp, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, fromConnectError(err)
	}
	var out Res
	if err := fromStruct(resp.Msg, &out); err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, err)
	}
	return &out, nil
}
