package graph

import (
	"context"
	"log/slog"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/errcode"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/go-faster/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"cart-catalog/service"
	"cart-catalog/store"
)

// Error codes reported in errors[].extensions.code.
const (
	CodeParseFailed      = errcode.ParseFailed
	CodeValidationFailed = errcode.ValidationFailed
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeNotSupported     = "NOT_SUPPORTED"
	CodeInternal         = "INTERNAL"
)

var (
	errIntrospection = errors.New("introspection is not supported; fetch the schema from the schema.graphql endpoint")
	errInternal      = errors.New("internal error")
)

// NewServer serves the schema over POST and, for queries only, GET.
func NewServer(svc service.ServiceInterface, log *slog.Logger) *handler.Server {
	srv := handler.New(NewExecutableSchema(Config{Resolvers: &Resolver{Svc: svc}}))
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	srv.SetErrorPresenter(presentError(log))
	srv.SetRecoverFunc(func(ctx context.Context, v interface{}) error {
		log.Error("panic resolving field", slog.Any("panic", v))
		return errInternal
	})
	return srv
}

// presentError tags engine errors with a code so clients can tell a missing
// cart from a missing product or bad input. Unexpected errors are logged and
// reported without detail.
func presentError(log *slog.Logger) graphql.ErrorPresenterFunc {
	return func(ctx context.Context, err error) *gqlerror.Error {
		gerr := graphql.DefaultErrorPresenter(ctx, err)

		var (
			nf *store.NotFoundError
			ve *service.ValidationError
		)
		switch {
		case errors.As(err, &nf):
			setCode(gerr, CodeNotFound)
			gerr.Extensions["entity"] = string(nf.Entity)
			gerr.Extensions["id"] = nf.ID
		case errors.As(err, &ve):
			setCode(gerr, CodeBadUserInput)
			gerr.Extensions["field"] = ve.Field
		case errors.Is(err, errIntrospection):
			setCode(gerr, CodeNotSupported)
		case gerr.Extensions["code"] != nil:
		case errors.Is(err, errInternal):
			setCode(gerr, CodeInternal)
		case gerr.Unwrap() != nil:
			log.Error("graphql field failed", slog.Any("err", err), slog.Any("path", gerr.Path))
			gerr.Message = errInternal.Error()
			setCode(gerr, CodeInternal)
		}
		return gerr
	}
}

func setCode(err *gqlerror.Error, code string) {
	if err.Extensions == nil {
		err.Extensions = map[string]interface{}{}
	}
	err.Extensions["code"] = code
}
