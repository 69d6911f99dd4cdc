// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/galleryctl/internal/cache"
	"github.com/staranto/galleryctl/internal/fetcher"
	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/organizer"
	"github.com/staranto/galleryctl/internal/storage"
	"github.com/staranto/galleryctl/internal/swr"
)

// fakeAPI answers by request path and records every hit.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	hits   map[string]int
	bodies map[string][]byte
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	a.hits[key]++
	a.bodies[r.URL.Path] = body
	h, ok := a.routes[key]
	a.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"no route"}`)
		return
	}
	h(w, r)
}

func (a *fakeAPI) handle(path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[fetcher.APIPrefix+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (a *fakeAPI) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[fetcher.APIPrefix+path]
}

func (a *fakeAPI) body(path string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[fetcher.APIPrefix+path]
}

func newService(t *testing.T) (*Service, *fakeAPI) {
	t.Helper()
	a := &fakeAPI{
		routes: make(map[string]func(http.ResponseWriter, *http.Request)),
		hits:   make(map[string]int),
		bodies: make(map[string][]byte),
	}
	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)

	f, err := fetcher.New(srv.URL)
	require.NoError(t, err)

	c := swr.New(cache.NewManager(storage.NewMemory()), f, swr.Options{})
	t.Cleanup(c.Close)
	return New(c), a
}

const collectionBody = `{"collection":{
	"id":"c1","name":"Punks",
	"nfts":[{"id":"n1","created_at":"2021-01-01T00:00:00Z"},{"id":"n2","created_at":"2021-01-02T00:00:00Z"}],
	"layout":{"columns":2,"whitespace":[1]}}}`

func TestKeys(t *testing.T) {
	tests := []struct {
		key  swr.Key
		want string
	}{
		{UserKey("alice"), "/users/get?username=alice"},
		{CurrentUserKey(), "/users/get/current"},
		{GalleriesKey("u1"), "/galleries/user_get?user_id=u1"},
		{CollectionKey("c1"), "/collections/get?id=c1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.String())
	}
}

func TestService_User(t *testing.T) {
	svc, a := newService(t)
	a.handle("/users/get?username=alice", http.StatusOK, `{"user":{"id":"u1","username":"alice","addresses":["0x1"]}}`)
	a.handle("/users/get?username=ghost", http.StatusOK, `{"user":null}`)

	u, err := svc.User(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &gallery.User{ID: "u1", Username: "alice", Addresses: []string{"0x1"}}, u)

	_, err = svc.User(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, a.count("/users/get?username=alice"), "second read is served from cache")

	_, err = svc.User(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_UserError(t *testing.T) {
	svc, a := newService(t)
	a.handle("/users/get?username=bob", http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := svc.User(context.Background(), "bob")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, fetcher.StatusCode(err))
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), string(ActionFetchUser))
}

func TestService_CurrentUser(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		svc, a := newService(t)
		a.handle("/users/get/current", http.StatusOK, `{"user":{"id":"u1","username":"alice"}}`)

		u, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("no content", func(t *testing.T) {
		svc, a := newService(t)
		a.handle("/users/get/current", http.StatusNoContent, "")

		u, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestService_Galleries(t *testing.T) {
	svc, a := newService(t)
	a.handle("/galleries/user_get?user_id=u1", http.StatusOK,
		`{"galleries":[{"id":"g1","collections":[{"id":"c1","name":"Punks","nfts":[],"layout":{"columns":"x"}}]}]}`)

	gs, err := svc.Galleries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, gs, 1)
	require.Len(t, gs[0].Collections, 1)
	assert.Equal(t, "Punks", gs[0].Collections[0].Name)
	assert.Equal(t, 0, gs[0].Collections[0].Layout.Columns)
}

func TestService_Galleries_ReturnsRevalidated(t *testing.T) {
	ctx := context.Background()
	svc, a := newService(t)
	a.handle("/galleries/user_get?user_id=u1", http.StatusOK, `{"galleries":[{"id":"g2"}]}`)

	svc.Client().Mutate(GalleriesKey("u1"), json.RawMessage(`{"galleries":[{"id":"g1"}]}`))

	gs, err := svc.Galleries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, gs, 1)
	assert.Equal(t, "g2", gs[0].ID, "the fresher listing wins over the cached one")
	assert.Equal(t, 1, a.count("/galleries/user_get?user_id=u1"))

	raw, ok := svc.Client().Lookup(GalleriesKey("u1"))
	require.True(t, ok)
	assert.Contains(t, string(raw), "g2")
}

func TestService_CollectionsByID(t *testing.T) {
	svc, a := newService(t)
	for _, id := range []string{"c1", "c2", "c3"} {
		a.handle("/collections/get?id="+id, http.StatusOK, `{"collection":{"id":"`+id+`","nfts":[],"layout":{}}}`)
	}

	cs, err := svc.CollectionsByID(context.Background(), []string{"c3", "c1", "c2"})
	require.NoError(t, err)
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"c3", "c1", "c2"}, ids)

	_, err = svc.CollectionsByID(context.Background(), []string{"c1", "missing"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, fetcher.StatusCode(err))

	a.handle("/collections/get?id=empty", http.StatusOK, `{"collection":null}`)
	_, err = svc.Collection(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestService_UpdateCollectionNfts(t *testing.T) {
	ctx := context.Background()
	svc, a := newService(t)
	a.handle("/collections/get?id=c1", http.StatusOK, collectionBody)
	a.handle("/galleries/user_get?user_id=u1", http.StatusOK, `{"galleries":[]}`)
	a.handle("/collections/update/nfts", http.StatusOK, `{}`)

	c, err := svc.Collection(ctx, "c1")
	require.NoError(t, err)
	_, err = svc.Galleries(ctx, "u1")
	require.NoError(t, err)

	o := organizer.NewForCollection(*c, organizer.WithUpdater(svc))
	require.NoError(t, o.Reorder("n2", 0))
	require.True(t, o.IncrementColumns())
	require.NoError(t, o.Commit(ctx))
	assert.Equal(t, organizer.Committed, o.State())

	var sent UpdateNftsRequest
	require.NoError(t, json.Unmarshal(a.body("/collections/update/nfts"), &sent))
	assert.Equal(t, "c1", sent.ID)
	assert.Equal(t, []string{"n2", "n1"}, sent.Nfts)
	assert.Equal(t, 3, sent.Layout.Columns)

	raw, ok := svc.Client().Lookup(CollectionKey("c1"))
	require.True(t, ok, "collection is patched in the cache")
	var cached collectionResponse
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, []string{"n2", "n1"}, gallery.IDs(gallery.NftItems(cached.Collection.Nfts)))
	assert.Equal(t, 3, cached.Collection.Layout.Columns)

	_, ok = svc.Client().Cache().Get(GalleriesKey("u1").String())
	assert.False(t, ok, "galleries are invalidated")

	c, err = svc.Collection(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "n2", c.Nfts[0].ID)
	assert.Equal(t, 1, a.count("/collections/get?id=c1"))
}

func TestService_UpdateCollectionNfts_Uncached(t *testing.T) {
	ctx := context.Background()
	svc, a := newService(t)
	a.handle("/collections/update/nfts", http.StatusNoContent, "")

	err := svc.UpdateCollectionNfts(ctx, "c9", organizer.Draft{
		Nfts:   []gallery.Nft{{ID: "n1"}},
		Layout: gallery.Layout{Columns: 1},
	})
	require.NoError(t, err)
	_, ok := svc.Client().Cache().Get(CollectionKey("c9").String())
	assert.False(t, ok)
}

func TestService_UpdateCollectionNfts_Failure(t *testing.T) {
	ctx := context.Background()
	svc, a := newService(t)
	a.handle("/collections/get?id=c1", http.StatusOK, collectionBody)
	a.handle("/collections/update/nfts", http.StatusForbidden, `{"error":"not yours"}`)

	c, err := svc.Collection(ctx, "c1")
	require.NoError(t, err)

	o := organizer.NewForCollection(*c, organizer.WithUpdater(svc))
	require.NoError(t, o.Reorder("n2", 0))
	err = o.Commit(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, fetcher.StatusCode(err))
	assert.Equal(t, organizer.Staging, o.State())

	raw, ok := svc.Client().Lookup(CollectionKey("c1"))
	require.True(t, ok)
	assert.JSONEq(t, collectionBody, string(raw))
}

func TestService_CreateFlow(t *testing.T) {
	ctx := context.Background()
	svc, a := newService(t)
	a.handle("/collections/create", http.StatusOK, `{"collection_id":"c42"}`)

	var created string
	o := organizer.New(organizer.WithCreateFlow(svc.CreateFlow("g1", "New", "note", func(id string) { created = id })))
	require.NoError(t, o.Stage(gallery.Nft{ID: "n1"}))
	require.NoError(t, o.Stage(gallery.Nft{ID: "n2"}))
	require.NoError(t, o.Commit(ctx))

	assert.Equal(t, "c42", created)
	assert.Equal(t, organizer.Committed, o.State())

	var sent CreateRequest
	require.NoError(t, json.Unmarshal(a.body("/collections/create"), &sent))
	assert.Equal(t, "g1", sent.GalleryID)
	assert.Equal(t, "New", sent.Name)
	assert.Equal(t, "note", sent.CollectorsNote)
	assert.Equal(t, []string{"n1", "n2"}, sent.Nfts)
}

func TestService_CreateCollection_NoID(t *testing.T) {
	svc, a := newService(t)
	a.handle("/collections/create", http.StatusOK, `{}`)

	_, err := svc.CreateCollection(context.Background(), "g1", "x", "", organizer.Draft{})
	assert.ErrorIs(t, err, ErrNoCollectionID)
}
