package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type containerKey struct{}

// Middleware adds a container in the request context.
//
// The container injected in each request is a new child
// of the app container given as parameter.
// It is disposed when the handler returns.
// Services registered in the request container only live for the request,
// the others are resolved from the app container.
//
// It can panic if the app container is disposed,
// so it should be used with another middleware to recover from the panic.
//
// The returned function has the signature of a chi middleware.
func Middleware(app Container, opts ...ContainerOption) func(http.Handler) http.Handler {
	opts = append([]ContainerOption{WithName("request")}, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctn, err := app.Child(opts...)
			if err != nil {
				panic(err)
			}

			defer func() {
				if err := ctn.Dispose(); err != nil {
					ctn.Logger().Error("could not dispose request container",
						zap.String("path", r.URL.Path),
						zap.Error(err),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), ctn)))
		})
	}
}

// NewContext returns a copy of ctx that carries the container.
func NewContext(ctx context.Context, ctn Container) context.Context {
	return context.WithValue(ctx, containerKey{}, ctn)
}

// FromContext retrieves the container stored in ctx by NewContext.
func FromContext(ctx context.Context) (Container, bool) {
	ctn, ok := ctx.Value(containerKey{}).(Container)
	return ctn, ok
}

// FromRequest retrieves the container added to the request by Middleware.
func FromRequest(r *http.Request) (Container, bool) {
	return FromContext(r.Context())
}
