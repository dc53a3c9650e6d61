package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/ncontiero/dk-tube-sub000/internal/crypto"
	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
)

// Identity provider lifecycle events.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// usernameAttempts bounds how many generated names are tried when a username is taken.
const usernameAttempts = 3

// Resolver maps provider identities to internal users, provisioning them on first sight.
type Resolver struct {
	users repository.UserRepository
	inv   *invalidate.Router
	log   *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(users repository.UserRepository, inv *invalidate.Router, log *zap.Logger) *Resolver {
	return &Resolver{users: users, inv: inv, log: log}
}

// CurrentUser resolves the identity carried by ctx.
func (r *Resolver) CurrentUser(ctx context.Context) (*model.User, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return nil, errs.ErrUnauthenticated
	}
	return r.Resolve(ctx, id)
}

// Resolve returns the user of id, creating it with a fallback username when unseen.
func (r *Resolver) Resolve(ctx context.Context, id model.Identity) (*model.User, error) {
	if id.ExternalID == "" {
		return nil, errs.ErrUnauthenticated
	}
	u, err := r.users.GetByExternalID(ctx, id.ExternalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Persistence(err)
	}

	nu, err := newUser(id)
	if err != nil {
		return nil, err
	}
	u, err = r.withFreeUsername(ctx, nu, r.users.Ensure)
	if err != nil {
		return nil, err
	}
	if u.ID == nu.ID {
		r.log.Info("provisioned user", zap.String("user_id", u.ID.String()), zap.String("username", u.Username))
		r.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.UserUpserted, ActorID: u.ID})
	}
	return u, nil
}

// OnIdentityEvent applies a provider lifecycle event. Deleting an unknown user is a no-op.
func (r *Resolver) OnIdentityEvent(ctx context.Context, kind string, id model.Identity) error {
	if id.ExternalID == "" {
		return fmt.Errorf("%w: event without subject", errs.ErrValidation)
	}
	switch kind {
	case EventUserCreated, EventUserUpdated:
		return r.upsertProfile(ctx, id)
	case EventUserDeleted:
		uid, err := r.users.DeleteByExternalID(ctx, id.ExternalID)
		if errors.Is(err, errs.ErrNotFound) {
			r.log.Info("delete of unknown user ignored", zap.String("external_id", id.ExternalID))
			return nil
		}
		if err != nil {
			return errs.Persistence(err)
		}
		r.log.Info("deleted user", zap.String("user_id", uid.String()))
		r.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.UserDeleted, ActorID: uid})
		return nil
	default:
		return fmt.Errorf("%w: unknown event %q", errs.ErrValidation, kind)
	}
}

func (r *Resolver) upsertProfile(ctx context.Context, id model.Identity) error {
	if id.Username == "" {
		existing, err := r.users.GetByExternalID(ctx, id.ExternalID)
		switch {
		case err == nil:
			id.Username = existing.Username
		case !errors.Is(err, errs.ErrNotFound):
			return errs.Persistence(err)
		}
	}
	nu, err := newUser(id)
	if err != nil {
		return err
	}
	u, err := r.withFreeUsername(ctx, nu, r.users.UpsertProfile)
	if err != nil {
		return err
	}
	r.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.UserUpserted, ActorID: u.ID})
	return nil
}

// withFreeUsername runs write, replacing nu.Username with a generated one each time
// the store reports the name as taken.
func (r *Resolver) withFreeUsername(
	ctx context.Context,
	nu *model.User,
	write func(context.Context, *model.User) (*model.User, error),
) (*model.User, error) {
	for attempt := 0; ; attempt++ {
		u, err := write(ctx, nu)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, errs.ErrAlreadyExists) || attempt == usernameAttempts {
			return nil, errs.Persistence(err)
		}
		taken := nu.Username
		if nu.Username, err = FallbackUsername(model.Identity{Name: nu.Name, Email: nu.Email}); err != nil {
			return nil, err
		}
		r.log.Info("username taken, retrying", zap.String("username", taken), zap.String("next", nu.Username))
	}
}

func newUser(id model.Identity) (*model.User, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	name := id.Username
	if name == "" {
		if name, err = FallbackUsername(id); err != nil {
			return nil, err
		}
	}
	return &model.User{
		ID:         uid,
		ExternalID: id.ExternalID,
		Username:   name,
		Name:       id.Name,
		Email:      id.Email,
		AvatarURL:  id.AvatarURL,
	}, nil
}

// FallbackUsername derives "<base>_<6 hex>" from the display name or email local part.
func FallbackUsername(id model.Identity) (string, error) {
	src := id.Name
	if src == "" {
		src, _, _ = strings.Cut(id.Email, "@")
	}
	var b strings.Builder
	for _, r := range strings.ToLower(src) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 16 {
			break
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}
	suffix, err := crypto.RandHex(3)
	if err != nil {
		return "", err
	}
	return base + "_" + suffix, nil
}
