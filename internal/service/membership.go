package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
)

// MembershipService changes which videos belong to a collection.
//
// Membership is a set, so no lock is taken between reading the current state
// and writing the opposite one: two concurrent toggles on the same pair may
// collapse into one observable flip.
type MembershipService interface {
	// Toggle flips membership of videoID and reports whether it was added.
	Toggle(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) (model.ToggleResult, error)
	// Add makes videoID a member; already being a member is not an error.
	Add(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) error
	// Remove drops videoID; fails with ErrNotFound if it is not a member.
	Remove(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) error
}

type MembershipServiceImpl struct {
	playlists repository.PlaylistRepository
	members   repository.MembershipRepository
	inv       *invalidate.Router
}

// NewMembershipService constructs MembershipService.
func NewMembershipService(playlists repository.PlaylistRepository, members repository.MembershipRepository, inv *invalidate.Router) *MembershipServiceImpl {
	return &MembershipServiceImpl{playlists: playlists, members: members, inv: inv}
}

// collection is a resolved CollectionRef: where its edges live and who owns it.
type collection struct {
	ref     model.CollectionRef
	key     model.CollectionKey
	members []model.Video
}

func (c *collection) has(videoID uuid.UUID) bool {
	for i := range c.members {
		if c.members[i].ID == videoID {
			return true
		}
	}
	return false
}

// resolve loads the target collection and checks that actorID owns it.
// Implicit collections always belong to the actor.
func (s *MembershipServiceImpl) resolve(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) (*collection, error) {
	if actorID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	if videoID == uuid.Nil {
		return nil, fmt.Errorf("%w: video id is required", errs.ErrValidation)
	}

	c := &collection{ref: ref, key: model.CollectionKey{Kind: ref.Kind, OwnerID: actorID}}
	if !ref.Kind.Implicit() {
		p, err := s.playlists.GetByID(ctx, ref.PlaylistID)
		if err != nil {
			return nil, errs.Persistence(err)
		}
		if p.UserID != actorID {
			return nil, errs.ErrForbidden
		}
		c.key.PlaylistID = p.ID
	}

	members, err := s.members.Members(ctx, c.key)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	c.members = members
	return c, nil
}

func (s *MembershipServiceImpl) Toggle(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) (model.ToggleResult, error) {
	c, err := s.resolve(ctx, actorID, ref, videoID)
	if err != nil {
		return model.ToggleResult{}, err
	}

	isMember := c.has(videoID)
	if isMember {
		_, err = s.members.Disconnect(ctx, c.key, videoID)
	} else {
		err = s.members.Connect(ctx, c.key, videoID)
	}
	if err != nil {
		return model.ToggleResult{}, errs.Persistence(err)
	}
	s.changed(ctx, actorID, ref)
	return model.ToggleResult{Added: !isMember}, nil
}

func (s *MembershipServiceImpl) Add(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) error {
	c, err := s.resolve(ctx, actorID, ref, videoID)
	if err != nil {
		return err
	}
	if c.has(videoID) {
		return nil
	}
	if err := s.members.Connect(ctx, c.key, videoID); err != nil {
		return errs.Persistence(err)
	}
	s.changed(ctx, actorID, ref)
	return nil
}

func (s *MembershipServiceImpl) Remove(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef, videoID uuid.UUID) error {
	c, err := s.resolve(ctx, actorID, ref, videoID)
	if err != nil {
		return err
	}
	if !c.has(videoID) {
		return fmt.Errorf("video not in %s: %w", ref, errs.ErrNotFound)
	}
	removed, err := s.members.Disconnect(ctx, c.key, videoID)
	if err != nil {
		return errs.Persistence(err)
	}
	if !removed {
		return fmt.Errorf("video not in %s: %w", ref, errs.ErrNotFound)
	}
	s.changed(ctx, actorID, ref)
	return nil
}

func (s *MembershipServiceImpl) changed(ctx context.Context, actorID uuid.UUID, ref model.CollectionRef) {
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.MembershipChanged, ActorID: actorID, Collection: ref})
}
