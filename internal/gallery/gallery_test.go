// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package gallery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Layout
	}{
		{"integer", `{"columns":4,"whitespace":[1,3]}`, Layout{Columns: 4, Whitespace: []int{1, 3}}},
		{"integral float", `{"columns":2.0}`, Layout{Columns: 2}},
		{"fraction", `{"columns":2.5}`, Layout{}},
		{"string", `{"columns":"3"}`, Layout{}},
		{"null", `{"columns":null}`, Layout{}},
		{"missing", `{}`, Layout{}},
		{"out of range kept", `{"columns":9}`, Layout{Columns: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Layout
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Layout
	assert.Error(t, json.Unmarshal([]byte(`{"whitespace":"x"}`), &bad))
}

func TestDecodeItems(t *testing.T) {
	raw := []byte(`[
		{"id":"n1","created_at":"2021-11-02T10:00:00Z","name":"One"},
		{"id":"blank-1"},
		{"id":"n2","created_at":"2021-11-03T10:00:00Z"}
	]`)

	items, err := DecodeItems(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "blank-1", "n2"}, IDs(items))

	n, ok := items[0].(Nft)
	require.True(t, ok)
	assert.Equal(t, "One", n.Name)
	assert.True(t, items[0].IsNft())
	assert.False(t, items[1].IsNft())

	_, err = DecodeItems([]byte(`{}`))
	assert.Error(t, err)
	_, err = DecodeItem([]byte(`not json`))
	assert.Error(t, err)
}

func TestCollection_Decode(t *testing.T) {
	raw := `{"id":"c1","name":"Punks","nfts":[{"id":"n1","created_at":"2021-11-02T10:00:00Z",
		"asset_contract":{"contract_image_url":"https://x/c.png"}}],"layout":{"columns":3,"whitespace":[0]}}`

	var c Collection
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, 3, c.Layout.Columns)
	assert.Equal(t, []int{0}, c.Layout.Whitespace)
	require.Len(t, c.Nfts, 1)
	assert.Equal(t, "https://x/c.png", c.Nfts[0].AssetContract.ContractImageURL)
	assert.Len(t, NftItems(c.Nfts), 1)
}
