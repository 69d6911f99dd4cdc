// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package nft picks media for an nft.
package nft

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/staranto/galleryctl/internal/gallery"
)

type MediaType string

const (
	Image     MediaType = "image"
	Video     MediaType = "video"
	Audio     MediaType = "audio"
	Model     MediaType = "model"
	Animation MediaType = "animation"
)

// FallbackImageURL is shown when an nft has no usable image.
const FallbackImageURL = "https://i.ibb.co/q7DP0Dz/no-image.png"

// DefaultImageSize is the width requested from resizing image hosts.
const DefaultImageSize = 288

// googleSize matches the sizing suffix of a googleusercontent URL.
var googleSize = regexp.MustCompile(`=[swh]\d+(-[a-z0-9]+)*$`)

// FileExtension returns what follows the last dot, or "".
func FileExtension(url string) string {
	i := strings.LastIndex(url, ".")
	if i < 0 {
		return ""
	}
	return url[i+1:]
}

// MediaTypeForURL guesses the media type from the extension. Unknown
// extensions are treated as animations.
func MediaTypeForURL(url string) MediaType {
	switch FileExtension(url) {
	case "html":
		return Animation
	case "mp4":
		return Video
	case "mp3", "wav":
		return Audio
	case "glb":
		return Model
	case "gif", "jpg", "jpeg", "png":
		return Image
	default:
		return Animation
	}
}

// MediaTypeOf checks the image URL first, since marketplaces sometimes put
// the video in both fields.
func MediaTypeOf(n gallery.Nft) MediaType {
	if MediaTypeForURL(n.ImageURL) == Video {
		return Video
	}
	if n.AnimationURL == "" {
		return Image
	}
	return MediaTypeForURL(n.AnimationURL)
}

// ResizedImageURL returns the best image for n at the given width.
// Animated gifs win, google-hosted images are resized, and the rest fall back
// through the original image, the contract image and FallbackImageURL.
func ResizedImageURL(n gallery.Nft, size int) string {
	if size <= 0 {
		size = DefaultImageSize
	}
	if strings.HasSuffix(n.AnimationOriginalURL, ".gif") {
		return n.AnimationOriginalURL
	}
	if strings.Contains(n.ImageURL, "googleusercontent") {
		suffix := fmt.Sprintf("=w%d", size)
		if googleSize.MatchString(n.ImageURL) {
			return googleSize.ReplaceAllString(n.ImageURL, suffix)
		}
		return n.ImageURL + suffix
	}
	for _, u := range []string{n.ImageURL, n.ImageOriginalURL, n.AssetContract.ContractImageURL} {
		if u != "" {
			return u
		}
	}
	return FallbackImageURL
}

// VideoURL prefers an mp4 image URL over the animation URL.
func VideoURL(n gallery.Nft) string {
	if FileExtension(n.ImageURL) == "mp4" {
		return n.ImageURL
	}
	return n.AnimationURL
}
