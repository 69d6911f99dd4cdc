// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package gallery holds the API's domain types.
package gallery

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Bio       string   `json:"bio,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

type Gallery struct {
	ID          string       `json:"id"`
	Owner       string       `json:"owner,omitempty"`
	Collections []Collection `json:"collections"`
}

type Collection struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CollectorsNote string `json:"collectors_note,omitempty"`
	Hidden         bool   `json:"hidden,omitempty"`
	Nfts           []Nft  `json:"nfts"`
	Layout         Layout `json:"layout"`
}

// Layout is how a collection is arranged. Whitespace holds insertion
// positions relative to Nfts.
type Layout struct {
	Columns    int   `json:"columns"`
	Whitespace []int `json:"whitespace"`
}

// UnmarshalJSON accepts any JSON value for columns. Anything but an integer
// leaves Columns at zero, which layout resolution replaces with the default.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns    json.RawMessage `json:"columns"`
		Whitespace []int           `json:"whitespace"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Layout{Whitespace: raw.Whitespace}
	if len(raw.Columns) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Columns))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			l.Columns = int(f)
		}
	}
	return nil
}

type AssetContract struct {
	Address          string `json:"address,omitempty"`
	Name             string `json:"name,omitempty"`
	ContractImageURL string `json:"contract_image_url,omitempty"`
}

type Nft struct {
	ID                   string        `json:"id"`
	CreatedAt            time.Time     `json:"created_at"`
	Name                 string        `json:"name,omitempty"`
	Description          string        `json:"description,omitempty"`
	TokenID              string        `json:"opensea_token_id,omitempty"`
	OwnerAddress         string        `json:"owner_address,omitempty"`
	ImageURL             string        `json:"image_url,omitempty"`
	ImageOriginalURL     string        `json:"image_original_url,omitempty"`
	ImageThumbnailURL    string        `json:"image_thumbnail_url,omitempty"`
	ImagePreviewURL      string        `json:"image_preview_url,omitempty"`
	AnimationURL         string        `json:"animation_url,omitempty"`
	AnimationOriginalURL string        `json:"animation_original_url,omitempty"`
	AssetContract        AssetContract `json:"asset_contract"`
}

func (n Nft) ItemID() string { return n.ID }
func (Nft) IsNft() bool      { return true }

// WhitespaceBlock is a blank grid cell.
type WhitespaceBlock struct {
	ID string `json:"id"`
}

func (w WhitespaceBlock) ItemID() string { return w.ID }
func (WhitespaceBlock) IsNft() bool      { return false }
