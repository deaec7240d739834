// Package mcsrvstat decodes and normalizes responses from the mcsrvstat.us
// status API (v3).
//
// The API answers GET {base}/{host}:{port} with a JSON document describing
// the server. Only the fields mcstatus displays are decoded:
//
//	{
//	  "online": true,
//	  "motd": {"clean": ["A Minecraft Server", "second line"]},
//	  "version": "1.21.1",
//	  "players": {"online": 3, "max": 20, "list": [{"name": "Steve"}]},
//	  "info": {"clean": ["Alex"]}
//	}
//
// Every field is optional. Servers that hide their player list sometimes
// put the names in the "info" lines instead, so both sources are merged.
package mcsrvstat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is the subset of the status API document used by mcstatus.
type Response struct {
	Online  *bool    `json:"online"`
	MOTD    *Lines   `json:"motd"`
	Version string   `json:"version"`
	Players *Players `json:"players"`
	Info    *Lines   `json:"info"`
}

// Lines is a multi-line text block. Only the clean (formatting-free) form is
// decoded.
type Lines struct {
	Clean []string `json:"clean"`
}

// Players holds the player counts and, when the server exposes it, the
// sample of online players.
type Players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []Player `json:"list,omitempty"`
}

// Player is one entry of the player list.
type Player struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

// Counts are the player counts shown in the online badge.
type Counts struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// Status is the normalized server status.
//
// A zero Status is the offline record. Optional fields are empty when the
// API did not supply them.
type Status struct {
	Online      bool
	ServerName  string
	Version     string
	Players     *Counts
	PlayerNames []string
}

// DefaultBaseURL is the public v3 endpoint.
const DefaultBaseURL = "https://api.mcsrvstat.us/3"

// URL returns the lookup URL for target (host or host:port).
func URL(base, target string) string {
	return strings.TrimRight(base, "/") + "/" + target
}

// Decode parses a status API response body.
func Decode(body []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("decode status response: %w", err)
	}
	return resp, nil
}

// Offline returns the record every failure collapses to.
func Offline() Status {
	return Status{Online: false}
}

// Normalize maps a decoded response to a [Status].
func Normalize(resp Response) Status {
	st := Status{
		Version:     resp.Version,
		PlayerNames: resp.PlayerNames(),
	}
	if resp.Online != nil {
		st.Online = *resp.Online
	}
	if resp.MOTD != nil && len(resp.MOTD.Clean) > 0 {
		st.ServerName = resp.MOTD.Clean[0]
	}
	if resp.Players != nil {
		st.Players = &Counts{Online: resp.Players.Online, Max: resp.Players.Max}
	}
	return st
}

// PlayerNames merges the explicit player list with the info lines.
//
// Names keep their first-seen position, list entries first. Blank entries
// are dropped. Returns nil when nothing remains.
func (r Response) PlayerNames() []string {
	var candidates []string
	if r.Players != nil {
		for _, p := range r.Players.List {
			candidates = append(candidates, p.Name)
		}
	}
	if r.Info != nil {
		candidates = append(candidates, r.Info.Clean...)
	}

	var names []string
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
