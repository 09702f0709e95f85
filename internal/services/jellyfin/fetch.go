package jellyfin

import (
	"context"
	"net/url"

	"tiermover/internal/services"
)

// ItemKind distinguishes the playback item types the mover understands.
type ItemKind int

const (
	KindOther ItemKind = iota
	KindMovie
	KindEpisode
)

func (k ItemKind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	default:
		return "other"
	}
}

// PlayedItem is one fully-watched media item reported by the playback source.
type PlayedItem struct {
	Name       string
	Kind       ItemKind
	SeriesName string
	RemotePath string
}

type itemsResponse struct {
	Items []struct {
		Name       string `json:"Name"`
		Type       string `json:"Type"`
		SeriesName string `json:"SeriesName"`
		Path       string `json:"Path"`
	} `json:"Items"`
}

// PlayedItems queries fully-played movies and episodes for one user, most
// recently played first. Items the server reports without a path are dropped;
// the server legitimately omits paths for items without accessible files.
func (c *Client) PlayedItems(ctx context.Context, userID string) ([]PlayedItem, error) {
	query := url.Values{
		"IsPlayed":         []string{"true"},
		"IncludeItemTypes": []string{"Movie,Episode"},
		"SortBy":           []string{"LastPlayedDate"},
		"SortOrder":        []string{"Descending"},
		"Recursive":        []string{"true"},
		"Fields":           []string{"Path,SeriesName"},
	}

	var resp itemsResponse
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID)+"/Items", query, &resp); err != nil {
		return nil, services.Wrap(services.ErrConnectivity, "jellyfin", "fetch played items", "Failed to fetch watched items for user "+userID, err)
	}

	items := make([]PlayedItem, 0, len(resp.Items))
	for _, raw := range resp.Items {
		if raw.Path == "" {
			continue
		}
		items = append(items, PlayedItem{
			Name:       raw.Name,
			Kind:       kindFromType(raw.Type),
			SeriesName: raw.SeriesName,
			RemotePath: raw.Path,
		})
	}
	return items, nil
}

// FetchPlayed collects played items across all users and deduplicates by
// remote path, keeping the first occurrence in fetch order. A failure for any
// single user is fatal to the whole fetch; partial results would silently
// under-relocate.
func (c *Client) FetchPlayed(ctx context.Context, userIDs []string) ([]PlayedItem, error) {
	seen := make(map[string]struct{})
	var deduped []PlayedItem
	for _, userID := range userIDs {
		items, err := c.PlayedItems(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if _, ok := seen[item.RemotePath]; ok {
				continue
			}
			seen[item.RemotePath] = struct{}{}
			deduped = append(deduped, item)
		}
	}
	return deduped, nil
}

func kindFromType(itemType string) ItemKind {
	switch itemType {
	case "Movie":
		return KindMovie
	case "Episode":
		return KindEpisode
	default:
		return KindOther
	}
}
