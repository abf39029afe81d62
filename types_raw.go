package tiktok

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Embedded page-state structs. Field names match the JSON TikTok ships in
// SIGI_STATE and __UNIVERSAL_DATA_FOR_REHYDRATION__.

type rawItem struct {
	ID     flexString    `json:"id"`
	Author rawItemAuthor `json:"author"`
	Stats  rawItemStats  `json:"stats"`
}

type rawItemStats struct {
	PlayCount    flexString `json:"playCount"`
	DiggCount    flexString `json:"diggCount"`
	CommentCount flexString `json:"commentCount"`
	ShareCount   flexString `json:"shareCount"`
}

// Rehydration payload for a video detail page.

type rawRehydration struct {
	DefaultScope struct {
		VideoDetail struct {
			ItemInfo struct {
				ItemStruct rawItem `json:"itemStruct"`
			} `json:"itemInfo"`
		} `json:"webapp.video-detail"`
	} `json:"__DEFAULT_SCOPE__"`
}

// flexString accepts a JSON string or number and keeps its literal text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// rawItemAuthor is a bare uniqueId in ItemModule and an object elsewhere.
type rawItemAuthor struct {
	UniqueID string `json:"uniqueId"`
}

func (a *rawItemAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.UniqueID)
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var obj struct {
		UniqueID string `json:"uniqueId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.UniqueID = obj.UniqueID
	return nil
}

// stateItem is the typed view of one embedded item.
type stateItem struct {
	ID     string
	Author string
	Views  string
	Likes  string
}

func parseItem(key string, raw rawItem) stateItem {
	id := string(raw.ID)
	if id == "" {
		id = key
	}
	return stateItem{
		ID:     id,
		Author: raw.Author.UniqueID,
		Views:  string(raw.Stats.PlayCount),
		Likes:  string(raw.Stats.DiggCount),
	}
}
