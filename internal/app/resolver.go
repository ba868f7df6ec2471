package app

import (
	"context"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// Resolver answers "who am I" for the shell.
type Resolver struct {
	api    IdentityAPI
	logger logger.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(api IdentityAPI, l logger.Logger) *Resolver {
	if l == nil {
		l = logger.Nop()
	}
	return &Resolver{api: api, logger: l}
}

// Resolve returns the current user, or nil when there is none. Being logged
// out is a normal state, so failures of any kind are swallowed here.
func (r *Resolver) Resolve(ctx context.Context) *model.User {
	user, err := r.api.Me(ctx)
	if err != nil || user == nil || user.ID == "" {
		if err != nil {
			r.logger.Debug(ctx, "identity not resolved", logger.Error(err))
		}
		metrics.RecordSessionResolution(false)
		return nil
	}
	metrics.RecordSessionResolution(true)
	r.logger.Debug(ctx, "identity resolved",
		logger.String("user_id", user.ID),
		logger.String("role", string(user.Role)))
	return user
}
