package model

import "sort"

// DeltaStatus classifies an item when two scrapes are compared.
type DeltaStatus string

const (
	// DeltaAdded marks an item present only in the newer scrape.
	DeltaAdded DeltaStatus = "added"
	// DeltaRemoved marks an item present only in the older scrape.
	DeltaRemoved DeltaStatus = "removed"
	// DeltaChanged marks an item whose counters moved.
	DeltaChanged DeltaStatus = "changed"
	// DeltaUnchanged marks an item whose counters are identical.
	DeltaUnchanged DeltaStatus = "unchanged"
)

// ItemDelta is the change of one item's counters between two scrapes.
type ItemDelta struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Status      DeltaStatus `json:"status"`
	Visitors    int         `json:"visitors"`
	Subscribers int         `json:"subscribers"`
	Favorites   int         `json:"favorites"`
	Awards      int         `json:"awards"`
	Comments    int         `json:"comments"`
}

// HasChanges reports whether any counter moved.
func (d ItemDelta) HasChanges() bool {
	return d.Visitors != 0 || d.Subscribers != 0 || d.Favorites != 0 || d.Awards != 0 || d.Comments != 0
}

// CompareItems diffs two scrapes of the same user, matching items by Key.
// The result is sorted by status (added, removed, changed, unchanged) and then by name.
func CompareItems(older, newer []WorkshopItem) []ItemDelta {
	previous := make(map[string]WorkshopItem, len(older))
	for _, item := range older {
		previous[item.Key()] = item
	}

	deltas := make([]ItemDelta, 0, len(newer))
	seen := make(map[string]bool, len(newer))

	for _, item := range newer {
		key := item.Key()
		seen[key] = true

		old, ok := previous[key]
		if !ok {
			deltas = append(deltas, ItemDelta{
				Key:         key,
				Name:        item.Name,
				Status:      DeltaAdded,
				Visitors:    item.Visitors,
				Subscribers: item.Subscribers,
				Favorites:   item.Favorites,
				Awards:      item.Awards,
				Comments:    item.Comments,
			})
			continue
		}

		d := ItemDelta{
			Key:         key,
			Name:        item.Name,
			Visitors:    item.Visitors - old.Visitors,
			Subscribers: item.Subscribers - old.Subscribers,
			Favorites:   item.Favorites - old.Favorites,
			Awards:      item.Awards - old.Awards,
			Comments:    item.Comments - old.Comments,
		}
		d.Status = DeltaUnchanged
		if d.HasChanges() {
			d.Status = DeltaChanged
		}
		deltas = append(deltas, d)
	}

	for _, item := range older {
		key := item.Key()
		if seen[key] {
			continue
		}
		deltas = append(deltas, ItemDelta{
			Key:         key,
			Name:        item.Name,
			Status:      DeltaRemoved,
			Visitors:    -item.Visitors,
			Subscribers: -item.Subscribers,
			Favorites:   -item.Favorites,
			Awards:      -item.Awards,
			Comments:    -item.Comments,
		})
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		if deltas[i].Status != deltas[j].Status {
			return statusOrder(deltas[i].Status) < statusOrder(deltas[j].Status)
		}
		return deltas[i].Name < deltas[j].Name
	})

	return deltas
}

func statusOrder(s DeltaStatus) int {
	switch s {
	case DeltaAdded:
		return 0
	case DeltaRemoved:
		return 1
	case DeltaChanged:
		return 2
	default:
		return 3
	}
}
