package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"discovery/internal/catalog"
	"discovery/internal/config"
	"discovery/internal/importer"
)

const steamLovedMinutes = 10 * 60

type steamGame struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks"`
	ImgIconURL      string `json:"img_icon_url"`
}

type steamOwnedGames struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []steamGame `json:"games"`
	} `json:"response"`
}

// parseSteamFile reads a saved GetOwnedGames response.
func parseSteamFile(_ context.Context, path string) ([]importer.Candidate, error) {
	var payload steamOwnedGames
	if err := readJSON(path, &payload); err != nil {
		return nil, err
	}
	return steamCandidates(payload.Response.Games), nil
}

// steamCandidates converts owned games. Games played for ten hours or more
// are loved; the Web API does not report developers, so creators stay empty.
func steamCandidates(games []steamGame) []importer.Candidate {
	out := make([]importer.Candidate, 0, len(games))
	for _, game := range games {
		name := strings.TrimSpace(game.Name)
		if name == "" {
			continue
		}
		appID := strconv.FormatInt(game.AppID, 10)
		hours := float64(game.PlaytimeForever) / 60
		out = append(out, importer.Candidate{
			Title:    name,
			Category: catalog.CategoryGame,
			SourceID: appID,
			Loved:    catalog.Bool(game.PlaytimeForever >= steamLovedMinutes),
			Metadata: catalog.Metadata{
				"steam_appid":    appID,
				"playtime_hours": math.Round(hours*10) / 10,
			},
			SourceData: catalog.Metadata{
				"playtime_minutes": game.PlaytimeForever,
				"playtime_2weeks":  game.Playtime2Weeks,
				"img_icon_url":     game.ImgIconURL,
			},
		})
	}
	return out
}

// SteamClient fetches the owned-games list from the Steam Web API.
type SteamClient struct {
	apiKey     string
	steamID    string
	baseURL    string
	httpClient *http.Client
}

// SteamOption configures a SteamClient.
type SteamOption func(*SteamClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) SteamOption {
	return func(c *SteamClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSteamClient creates a client from the [steam] config section.
func NewSteamClient(cfg config.Steam, opts ...SteamOption) (*SteamClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	steamID := strings.TrimSpace(cfg.SteamID)
	if apiKey == "" || steamID == "" {
		return nil, errors.New("steam api key and steam id required; run 'discovery sources steam' for setup steps")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("steam base url required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &SteamClient{
		apiKey:     apiKey,
		steamID:    steamID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// OwnedGames returns the user's library as import candidates.
func (c *SteamClient) OwnedGames(ctx context.Context) ([]importer.Candidate, error) {
	endpoint, err := url.Parse(c.baseURL + "/IPlayerService/GetOwnedGames/v1/")
	if err != nil {
		return nil, fmt.Errorf("parse steam url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("steamid", c.steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		// url.Error embeds the request URL, which carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("steam api error (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam api returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload steamOwnedGames
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode steam response: %w", err)
	}
	return steamCandidates(payload.Response.Games), nil
}

// Parser adapts the client to the import pipeline; the path is ignored.
func (c *SteamClient) Parser() importer.Parser {
	return importer.ParserFunc(func(ctx context.Context, _ string) ([]importer.Candidate, error) {
		return c.OwnedGames(ctx)
	})
}
