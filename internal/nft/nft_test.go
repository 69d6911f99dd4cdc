// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staranto/galleryctl/internal/gallery"
)

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "png", FileExtension("https://x/a.png"))
	assert.Equal(t, "", FileExtension("noext"))
	assert.Equal(t, "gz", FileExtension("a.tar.gz"))
}

func TestMediaTypeForURL(t *testing.T) {
	tests := map[string]MediaType{
		"a.html": Animation,
		"a.mp4":  Video,
		"a.mp3":  Audio,
		"a.wav":  Audio,
		"a.glb":  Model,
		"a.gif":  Image,
		"a.jpeg": Image,
		"a.svg":  Animation,
		"":       Animation,
	}
	for url, want := range tests {
		assert.Equal(t, want, MediaTypeForURL(url), url)
	}
}

func TestMediaTypeOf(t *testing.T) {
	assert.Equal(t, Video, MediaTypeOf(gallery.Nft{ImageURL: "a.mp4", AnimationURL: "b.html"}))
	assert.Equal(t, Image, MediaTypeOf(gallery.Nft{ImageURL: "a.png"}))
	assert.Equal(t, Audio, MediaTypeOf(gallery.Nft{ImageURL: "a.png", AnimationURL: "b.mp3"}))
}

func TestResizedImageURL(t *testing.T) {
	tests := []struct {
		name string
		nft  gallery.Nft
		size int
		want string
	}{
		{
			name: "gif animation wins",
			nft:  gallery.Nft{AnimationOriginalURL: "https://x/a.gif", ImageURL: "https://x/a.png"},
			want: "https://x/a.gif",
		},
		{
			name: "google without size",
			nft:  gallery.Nft{ImageURL: "https://lh3.googleusercontent.com/abc"},
			size: 500,
			want: "https://lh3.googleusercontent.com/abc=w500",
		},
		{
			name: "google with size",
			nft:  gallery.Nft{ImageURL: "https://lh3.googleusercontent.com/abc=s250"},
			want: "https://lh3.googleusercontent.com/abc=w288",
		},
		{
			name: "plain image",
			nft:  gallery.Nft{ImageURL: "https://x/a.png", ImageOriginalURL: "https://x/o.png"},
			want: "https://x/a.png",
		},
		{
			name: "original image",
			nft:  gallery.Nft{ImageOriginalURL: "https://x/o.png"},
			want: "https://x/o.png",
		},
		{
			name: "contract image",
			nft:  gallery.Nft{AssetContract: gallery.AssetContract{ContractImageURL: "https://x/c.png"}},
			want: "https://x/c.png",
		},
		{
			name: "fallback",
			want: FallbackImageURL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResizedImageURL(tt.nft, tt.size))
		})
	}
}

func TestVideoURL(t *testing.T) {
	assert.Equal(t, "a.mp4", VideoURL(gallery.Nft{ImageURL: "a.mp4", AnimationURL: "b.mp4"}))
	assert.Equal(t, "b.mp4", VideoURL(gallery.Nft{ImageURL: "a.png", AnimationURL: "b.mp4"}))
}
