package tiktok

import (
	"encoding/json"
	"regexp"
	"sort"
)

// stateSources are the page globals (or script ids) that may carry the
// initial render data, in lookup order.
var stateSources = []string{"SIGI_STATE", "__UNIVERSAL_DATA_FOR_REHYDRATION__"}

// itemModuleKeys are the aliases the per-video item map has shipped under.
var itemModuleKeys = []string{"ItemModule", "itemModule"}

var videoIDPattern = regexp.MustCompile(`/video/(\d+)`)

// embeddedState is the typed result of parsing a page's state blob.
type embeddedState struct {
	Source string
	Items  []stateItem
}

// parseEmbeddedState decodes the {source: value} object returned by
// Page.State and returns the first source that yields at least one item.
func parseEmbeddedState(raw []byte) (embeddedState, bool) {
	var sources map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sources); err != nil {
		return embeddedState{}, false
	}
	for _, name := range stateSources {
		value, ok := sources[name]
		if !ok {
			continue
		}
		if items := itemsFromModule(value); len(items) > 0 {
			return embeddedState{Source: name, Items: items}, true
		}
		if items := itemsFromRehydration(value); len(items) > 0 {
			return embeddedState{Source: name, Items: items}, true
		}
	}
	return embeddedState{}, false
}

func itemsFromModule(value json.RawMessage) []stateItem {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(value, &top); err != nil {
		return nil
	}
	for _, key := range itemModuleKeys {
		module, ok := top[key]
		if !ok {
			continue
		}
		var entries map[string]rawItem
		if err := json.Unmarshal(module, &entries); err != nil {
			continue
		}
		items := make([]stateItem, 0, len(entries))
		for k, raw := range entries {
			item := parseItem(k, raw)
			if item.ID != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		return items
	}
	return nil
}

func itemsFromRehydration(value json.RawMessage) []stateItem {
	var data rawRehydration
	if err := json.Unmarshal(value, &data); err != nil {
		return nil
	}
	item := parseItem("", data.DefaultScope.VideoDetail.ItemInfo.ItemStruct)
	if item.ID == "" && item.Views == "" && item.Likes == "" {
		return nil
	}
	return []stateItem{item}
}

// item returns the entry for videoID. Without an exact match it only
// answers when the state holds a single item.
func (s embeddedState) item(videoID string) (stateItem, bool) {
	for _, it := range s.Items {
		if videoID != "" && it.ID == videoID {
			return it, true
		}
	}
	if len(s.Items) == 1 {
		return s.Items[0], true
	}
	return stateItem{}, false
}

// videoIDFromURL returns the numeric id in a /video/<id> path, or "".
func videoIDFromURL(rawURL string) string {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}
