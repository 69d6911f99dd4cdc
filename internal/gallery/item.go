// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package gallery

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Item is an Nft or a WhitespaceBlock.
type Item interface {
	ItemID() string
	IsNft() bool
}

// DecodeItem decodes one item. Objects with created_at are Nfts, everything
// else is whitespace.
func DecodeItem(raw []byte) (Item, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid item: %s", raw)
	}
	if gjson.GetBytes(raw, "created_at").Exists() {
		var n Nft
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("failed to decode nft: %w", err)
		}
		return n, nil
	}
	var w WhitespaceBlock
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode whitespace block: %w", err)
	}
	return w, nil
}

// DecodeItems decodes a JSON array of items.
func DecodeItems(raw []byte) ([]Item, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	items := make([]Item, 0, len(parts))
	for _, p := range parts {
		it, err := DecodeItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID()
	}
	return ids
}

// NftItems wraps nfts as items.
func NftItems(nfts []Nft) []Item {
	items := make([]Item, len(nfts))
	for i, n := range nfts {
		items[i] = n
	}
	return items
}
