package jellyfin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tiermover/internal/services"
	"tiermover/internal/services/jellyfin"
)

type fakeServer struct {
	itemsByUser map[string][]map[string]any
	failUsers   map[string]bool
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Emby-Token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/System/Info":
			_ = json.NewEncoder(w).Encode(map[string]string{"ServerName": "test", "Version": "10.9"})
		case strings.HasSuffix(r.URL.Path, "/Items"):
			userID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/Users/"), "/Items")
			if f.failUsers[userID] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if got := r.URL.Query().Get("IsPlayed"); got != "true" {
				t.Errorf("expected IsPlayed=true, got %q", got)
			}
			if got := r.URL.Query().Get("Fields"); got != "Path,SeriesName" {
				t.Errorf("expected Fields=Path,SeriesName, got %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"Items": f.itemsByUser[userID]})
		case strings.HasPrefix(r.URL.Path, "/Users/"):
			userID := strings.TrimPrefix(r.URL.Path, "/Users/")
			if f.failUsers[userID] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"Id": userID, "Name": "user"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestPingSucceeds(t *testing.T) {
	srv := httptest.NewServer((&fakeServer{}).handler(t))
	defer srv.Close()

	client := jellyfin.NewClient(srv.URL, "abc123", nil)
	info, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if info.ServerName != "test" {
		t.Fatalf("unexpected server name %q", info.ServerName)
	}
}

func TestPingFailureIsConnectivityError(t *testing.T) {
	client := jellyfin.NewClient("http://127.0.0.1:1", "abc123", nil)
	_, err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error against closed port")
	}
	if !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected connectivity marker, got %v", err)
	}
}

func TestPlayedItemsDropsPathlessEntries(t *testing.T) {
	fake := &fakeServer{itemsByUser: map[string][]map[string]any{
		"u1": {
			{"Name": "Heat", "Type": "Movie", "Path": "/media/media/movies-pool/Heat (1995)/Heat.mkv"},
			{"Name": "Ghost", "Type": "Movie"},
			{"Name": "Pilot", "Type": "Episode", "SeriesName": "Show", "Path": "/media/media/tv-pool/Show/S01E01.mkv"},
		},
	}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := jellyfin.NewClient(srv.URL, "abc123", nil)
	items, err := client.PlayedItems(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PlayedItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items with paths, got %d", len(items))
	}
	if items[0].Kind != jellyfin.KindMovie || items[1].Kind != jellyfin.KindEpisode {
		t.Fatalf("unexpected kinds: %v, %v", items[0].Kind, items[1].Kind)
	}
	if items[1].SeriesName != "Show" {
		t.Fatalf("expected series name, got %q", items[1].SeriesName)
	}
}

func TestFetchPlayedDeduplicatesByPathFirstWins(t *testing.T) {
	shared := "/media/media/movies-pool/Heat (1995)/Heat.mkv"
	fake := &fakeServer{itemsByUser: map[string][]map[string]any{
		"u1": {{"Name": "Heat (u1)", "Type": "Movie", "Path": shared}},
		"u2": {
			{"Name": "Heat (u2)", "Type": "Movie", "Path": shared},
			{"Name": "Alien", "Type": "Movie", "Path": "/media/media/movies-pool/Alien (1979)/Alien.mkv"},
		},
	}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := jellyfin.NewClient(srv.URL, "abc123", nil)
	items, err := client.FetchPlayed(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("FetchPlayed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 deduplicated items, got %d", len(items))
	}
	if items[0].Name != "Heat (u1)" {
		t.Fatalf("first occurrence must win, got %q", items[0].Name)
	}
}

func TestFetchPlayedSingleUserFailureIsFatal(t *testing.T) {
	fake := &fakeServer{
		itemsByUser: map[string][]map[string]any{
			"u1": {{"Name": "Heat", "Type": "Movie", "Path": "/p/heat.mkv"}},
		},
		failUsers: map[string]bool{"u2": true},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := jellyfin.NewClient(srv.URL, "abc123", nil)
	if _, err := client.FetchPlayed(context.Background(), []string{"u1", "u2"}); err == nil {
		t.Fatal("expected fetch-level error when one user fails")
	}
}

func TestGetUserNotFound(t *testing.T) {
	fake := &fakeServer{failUsers: map[string]bool{"ghost": true}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := jellyfin.NewClient(srv.URL, "abc123", nil)
	if _, err := client.GetUser(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
