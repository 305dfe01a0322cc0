// Package worldstate fetches live game data (sortie, void trader, invasions)
// from a warframestat-style world-state API. Responses are cached with a
// short TTL and the last good snapshot is served when the API is down, so
// upstream flakiness never reaches callers as a hard failure while any data
// is available.
package worldstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/warfbot/warfbot/internal/cycle"
)

// ErrUnavailable is returned when the API cannot be reached and no cached
// snapshot exists.
var ErrUnavailable = errors.New("world state unavailable")

const (
	defaultBaseURL  = "https://api.warframestat.us"
	defaultPlatform = "pc"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 2 * time.Minute
)

// Sortie is the daily three-mission challenge.
type Sortie struct {
	Boss     string          `json:"boss"`
	Faction  string          `json:"faction"`
	Expiry   time.Time       `json:"expiry"`
	Variants []SortieVariant `json:"variants"`
}

// SortieVariant is one mission of a sortie.
type SortieVariant struct {
	MissionType string `json:"missionType"`
	Modifier    string `json:"modifier"`
	Node        string `json:"node"`
}

// VoidTrader is the periodic merchant visit.
type VoidTrader struct {
	Character  string    `json:"character"`
	Location   string    `json:"location"`
	Active     bool      `json:"active"`
	Activation time.Time `json:"activation"`
	Expiry     time.Time `json:"expiry"`
}

// Invasion is one faction-vs-faction node conflict.
type Invasion struct {
	Node             string         `json:"node"`
	AttackingFaction string         `json:"attackingFaction"`
	DefendingFaction string         `json:"defendingFaction"`
	AttackerReward   InvasionReward `json:"attackerReward"`
	DefenderReward   InvasionReward `json:"defenderReward"`
	Completed        bool           `json:"completed"`
	Completion       float64        `json:"completion"`
}

// InvasionReward is the reward offered by one side of an invasion.
type InvasionReward struct {
	AsString string `json:"asString"`
}

// WorldCycle is the provider's authoritative view of the Cambion Drift
// cycle. The local clock computes the same phase, but the provider wins when
// the two disagree after a game patch.
type WorldCycle struct {
	State  string    `json:"state"`
	Expiry time.Time `json:"expiry"`
}

// AsState converts the provider view into a cycle state. Returns false when
// the entry is incomplete or already expired.
func (w *WorldCycle) AsState() (cycle.State, bool) {
	remaining := time.Until(w.Expiry)
	if w.State == "" || remaining <= 0 {
		return cycle.State{}, false
	}
	phase := strings.ToLower(w.State)
	next := "vome"
	if phase == "vome" {
		next = "fass"
	}
	return cycle.State{
		Phase:     phase,
		Next:      next,
		Remaining: remaining,
		InPhaseA:  phase == "fass",
		Expiry:    w.Expiry,
	}, true
}

// Snapshot is the subset of the world state the bot consumes.
type Snapshot struct {
	Sortie       *Sortie     `json:"sortie"`
	VoidTrader   *VoidTrader `json:"voidTrader"`
	Invasions    []Invasion  `json:"invasions"`
	CambionCycle *WorldCycle `json:"cambionCycle"`
	FetchedAt    time.Time   `json:"-"`
}

// Client fetches and caches world-state snapshots.
type Client struct {
	httpClient *http.Client
	baseURL    string
	platform   string
	cacheTTL   time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	cached   *Snapshot
	cachedAt time.Time
}

// Config holds client settings; zero values fall back to defaults.
type Config struct {
	BaseURL  string
	Platform string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// NewClient creates a world-state client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Platform == "" {
		cfg.Platform = defaultPlatform
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		platform:   cfg.Platform,
		cacheTTL:   cfg.CacheTTL,
		logger:     logger.With("component", "worldstate"),
	}
}

// Fetch returns the current world-state snapshot. A snapshot younger than the
// cache TTL is returned as is; on a failed refresh the stale snapshot is
// returned instead (last known good). Only when no snapshot exists at all
// does a fetch failure surface to the caller.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.cachedAt) < c.cacheTTL {
		snap := c.cached
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	snap, err := c.fetchRemote(ctx)
	if err != nil {
		c.mu.Lock()
		stale := c.cached
		c.mu.Unlock()
		if stale != nil {
			c.logger.WarnContext(ctx, "World-state fetch failed, serving last known good",
				"age", time.Since(stale.FetchedAt), "error", err)
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cached = snap
	c.cachedAt = snap.FetchedAt
	c.mu.Unlock()
	return snap, nil
}

func (c *Client) fetchRemote(ctx context.Context) (*Snapshot, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build world-state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("world-state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("world-state API returned status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode world-state response: %w", err)
	}
	snap.FetchedAt = time.Now().UTC()

	c.logger.DebugContext(ctx, "Fetched world state", "duration", time.Since(start))
	return &snap, nil
}

// ActiveInvasions returns the not-yet-completed invasions from the snapshot,
// capped at limit (zero means no cap).
func (s *Snapshot) ActiveInvasions(limit int) []Invasion {
	var out []Invasion
	for _, inv := range s.Invasions {
		if inv.Completed {
			continue
		}
		out = append(out, inv)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
