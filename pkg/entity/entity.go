package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/impactgraph/pkg/handle"
)

// TimestampFormat is the fixed layout of Record.UpdatedAt.
const TimestampFormat = "2006-01-02 15:04:05"

// =============================================================================
// Profile
// =============================================================================

// Profile is the provider payload captured at insertion time.
// Numbers are kept as json.Number when decoded by the provider client so
// identifiers survive without float rounding.
type Profile map[string]any

// ID extracts the stable numeric identifier from the payload.
// It prefers "id_str" and falls back to "id".
func (p Profile) ID() (int64, bool) {
	if s, ok := p["id_str"].(string); ok {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return id, true
		}
	}
	return toInt64(p["id"])
}

// String returns the string value stored under key, or "".
func (p Profile) String(key string) string {
	s, _ := p[key].(string)
	return s
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	}
	return 0, false
}

// =============================================================================
// Relation
// =============================================================================

// FetchState records how a relation list was obtained.
// The zero value means the list has not been fetched yet.
type FetchState string

const (
	StatePending  FetchState = ""
	StateFetched  FetchState = "fetched"
	StateFailed   FetchState = "failed"
	StateDisabled FetchState = "disabled"
)

// Relation is an id list together with the state it was fetched in.
// A failed fetch carries an empty, non-nil list.
type Relation struct {
	IDs   []int64
	State FetchState
}

// Fetched reports whether the list reflects a successful provider call.
func (r Relation) Fetched() bool { return r.State == StateFetched }

// =============================================================================
// Project & Record
// =============================================================================

// Project is one row submitted for import.
type Project struct {
	Name        string
	Handle      string
	Description string
	Website     string
	MetricsURL  string
}

// Record is one persisted project.
type Record struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Handle         string     `json:"handle"`
	UpdatedAt      Timestamp  `json:"updated_at"`
	Profile        Profile    `json:"profile"`
	FriendIDs      []int64    `json:"friend_ids"`
	FollowerIDs    []int64    `json:"follower_ids"`
	FriendsState   FetchState `json:"friends_state,omitempty"`
	FollowersState FetchState `json:"followers_state,omitempty"`
	Description    string     `json:"description,omitempty"`
	Website        string     `json:"website,omitempty"`
	MetricsURL     string     `json:"metrics_url,omitempty"`
}

// MarshalJSON keeps friend_ids and follower_ids as arrays even when nil.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	out := plain(r)
	if out.FriendIDs == nil {
		out.FriendIDs = []int64{}
	}
	if out.FollowerIDs == nil {
		out.FollowerIDs = []int64{}
	}
	if out.Profile == nil {
		out.Profile = Profile{}
	}
	return json.Marshal(out)
}

// Detail is the per-node lookup shown next to the graph.
type Detail struct {
	Name          string `json:"name"`
	Handle        string `json:"handle"`
	ProfileURL    string `json:"profile_url"`
	Description   string `json:"description,omitempty"`
	Website       string `json:"website,omitempty"`
	MetricsURL    string `json:"metrics_url,omitempty"`
	FollowerCount int64  `json:"follower_count,omitempty"`
}

// Detail builds the display detail for r. Import-supplied fields win over
// the profile snapshot.
func (r Record) Detail() Detail {
	d := Detail{
		Name:        r.Name,
		Handle:      r.Handle,
		ProfileURL:  handle.ProfileURL(r.Handle),
		Description: r.Description,
		Website:     r.Website,
		MetricsURL:  r.MetricsURL,
	}
	if d.Description == "" {
		d.Description = r.Profile.String("description")
	}
	if d.Website == "" {
		d.Website = r.Profile.String("url")
	}
	if n, ok := toInt64(r.Profile["followers_count"]); ok {
		d.FollowerCount = n
	}
	return d
}

// =============================================================================
// Timestamp
// =============================================================================

// Timestamp is a UTC time serialized with TimestampFormat.
type Timestamp struct{ time.Time }

// NewTimestamp truncates t to seconds and converts it to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

// String formats the timestamp, or returns "" for the zero value.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampFormat)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampFormat, s, time.UTC)
	if err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	t.Time = parsed
	return nil
}
