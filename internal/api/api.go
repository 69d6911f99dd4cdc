// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package api is the typed surface of the gallery API. Reads go through the
// swr client and its cache; writes are posted and then reconciled with the
// cache.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/galleryctl/internal/cache"
	"github.com/staranto/galleryctl/internal/fetcher"
	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/organizer"
	"github.com/staranto/galleryctl/internal/swr"
)

const (
	ActionFetchUser            fetcher.Action = "fetch user"
	ActionFetchCurrentUser     fetcher.Action = "fetch current user"
	ActionFetchGalleries       fetcher.Action = "fetch galleries"
	ActionFetchCollection      fetcher.Action = "fetch collection"
	ActionUpdateCollectionNfts fetcher.Action = "update collection nfts"
	ActionCreateCollection     fetcher.Action = "create collection"
)

const (
	PathUser                 = "/users/get"
	PathCurrentUser          = cache.CurrentUserPath
	PathGalleries            = swr.EnsureLatestPath
	PathCollection           = "/collections/get"
	PathUpdateCollectionNfts = "/collections/update/nfts"
	PathCreateCollection     = "/collections/create"
)

// fetchLimit bounds concurrent collection reads.
const fetchLimit = 4

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNoCollectionID     = errors.New("create response has no collection id")
)

func UserKey(username string) swr.Key {
	return swr.NewKey(PathUser, ActionFetchUser, "username", username)
}

func CurrentUserKey() swr.Key {
	return swr.Key{Path: PathCurrentUser, Action: ActionFetchCurrentUser}
}

func GalleriesKey(userID string) swr.Key {
	return swr.NewKey(PathGalleries, ActionFetchGalleries, "user_id", userID)
}

func CollectionKey(id string) swr.Key {
	return swr.NewKey(PathCollection, ActionFetchCollection, "id", id)
}

type userResponse struct {
	User *gallery.User `json:"user"`
}

type galleriesResponse struct {
	Galleries []gallery.Gallery `json:"galleries"`
}

type collectionResponse struct {
	Collection *gallery.Collection `json:"collection"`
}

type createResponse struct {
	CollectionID string `json:"collection_id"`
}

// UpdateNftsRequest is the body of a collection save.
type UpdateNftsRequest struct {
	ID     string         `json:"id"`
	Nfts   []string       `json:"nfts"`
	Layout gallery.Layout `json:"layout"`
}

// CreateRequest is the body of a collection create.
type CreateRequest struct {
	GalleryID      string         `json:"gallery_id"`
	Name           string         `json:"name"`
	CollectorsNote string         `json:"collectors_note"`
	Nfts           []string       `json:"nfts"`
	Layout         gallery.Layout `json:"layout"`
}

// Service issues typed calls against a swr client.
type Service struct {
	client *swr.Client
}

func New(c *swr.Client) *Service {
	return &Service{client: c}
}

// Client returns the underlying swr client.
func (s *Service) Client() *swr.Client { return s.client }

// User returns the profile for username.
func (s *Service) User(ctx context.Context, username string) (*gallery.User, error) {
	resp, err := swr.GetAs[userResponse](ctx, s.client, UserKey(username))
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return resp.User, nil
}

// CurrentUser returns the signed in user, or nil when there is none.
func (s *Service) CurrentUser(ctx context.Context) (*gallery.User, error) {
	resp, err := swr.GetAs[userResponse](ctx, s.client, CurrentUserKey())
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Galleries returns the galleries of userID. This key is always revalidated,
// so the returned value may be the cached one while a refresh runs.
func (s *Service) Galleries(ctx context.Context, userID string) ([]gallery.Gallery, error) {
	resp, err := swr.GetLatestAs[galleriesResponse](ctx, s.client, GalleriesKey(userID))
	if err != nil {
		return nil, err
	}
	return resp.Galleries, nil
}

// Collection returns a single collection.
func (s *Service) Collection(ctx context.Context, id string) (*gallery.Collection, error) {
	resp, err := swr.GetAs[collectionResponse](ctx, s.client, CollectionKey(id))
	if err != nil {
		return nil, err
	}
	if resp.Collection == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}
	return resp.Collection, nil
}

// CollectionsByID reads several collections concurrently. The result is in
// the order of ids; the first failure cancels the rest.
func (s *Service) CollectionsByID(ctx context.Context, ids []string) ([]gallery.Collection, error) {
	out := make([]gallery.Collection, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.Collection(ctx, id)
			if err != nil {
				return err
			}
			out[i] = *c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCollectionNfts saves the order and layout of a collection. A cached
// copy of the collection is patched in place, otherwise dropped, and cached
// galleries are dropped so the next read sees the change.
func (s *Service) UpdateCollectionNfts(ctx context.Context, collectionID string, d organizer.Draft) error {
	body := UpdateNftsRequest{ID: collectionID, Nfts: d.NftIDs(), Layout: d.Layout}
	if _, err := s.client.Post(ctx, PathUpdateCollectionNfts, ActionUpdateCollectionNfts, body); err != nil {
		return err
	}

	key := CollectionKey(collectionID)
	if patched, ok := s.patchCollection(key, d); ok {
		s.client.Mutate(key, patched)
	} else {
		s.client.Invalidate(func(k string) bool { return k == key.String() })
	}
	n := s.client.Invalidate(swr.MatchPrefix(PathGalleries))

	log.WithFields(log.Fields{
		"collection":  collectionID,
		"invalidated": n,
	}).Debug("collection updated")
	return nil
}

func (s *Service) patchCollection(key swr.Key, d organizer.Draft) (json.RawMessage, bool) {
	e, ok := s.client.Cache().Get(key.String())
	if !ok || !e.Usable() {
		return nil, false
	}

	var resp collectionResponse
	if err := json.Unmarshal(e.Data, &resp); err != nil || resp.Collection == nil {
		return nil, false
	}
	resp.Collection.Nfts = d.Nfts
	resp.Collection.Layout = d.Layout

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, false
	}
	return data, true
}

// CreateCollection creates a collection in galleryID and returns its id.
func (s *Service) CreateCollection(ctx context.Context, galleryID, name, note string, d organizer.Draft) (string, error) {
	body := CreateRequest{
		GalleryID:      galleryID,
		Name:           name,
		CollectorsNote: note,
		Nfts:           d.NftIDs(),
		Layout:         d.Layout,
	}
	data, err := s.client.Post(ctx, PathCreateCollection, ActionCreateCollection, body)
	if err != nil {
		return "", err
	}

	var resp createResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &resp); err != nil {
			return "", fmt.Errorf("failed to decode create response: %w", err)
		}
	}
	if resp.CollectionID == "" {
		return "", ErrNoCollectionID
	}

	s.client.Invalidate(swr.MatchPrefix(PathGalleries))
	log.WithFields(log.Fields{
		"collection": resp.CollectionID,
		"gallery":    galleryID,
	}).Info("collection created")
	return resp.CollectionID, nil
}

// CreateFlow returns an organizer create flow that creates the collection
// in galleryID. The new id is passed to created, which may be nil.
func (s *Service) CreateFlow(galleryID, name, note string, created func(id string)) organizer.CreateFlow {
	return func(ctx context.Context, d organizer.Draft) error {
		id, err := s.CreateCollection(ctx, galleryID, name, note, d)
		if err != nil {
			return err
		}
		if created != nil {
			created(id)
		}
		return nil
	}
}

var _ organizer.Updater = (*Service)(nil)
