// Package config loads the two configuration documents used by mcstatus.
//
// The site document describes the Minecraft server being displayed and is
// the same file the status page serves at /config.json:
//
//	{
//	  "serverAddress": "mc.example.com",
//	  "serverPort": 25565,
//	  "github": "https://github.com/example/server",
//	  "downloads": [
//	    {"name": "Modpack", "file": "/downloads/modpack.zip"}
//	  ]
//	}
//
// YAML documents with the same keys are accepted when the source ends in
// .yaml or .yml.
//
// The service settings (port, poll interval, status API, log level) are
// loaded separately with viper from an optional mcstatus.yaml, MCSTATUS_*
// environment variables and command line flags. See [LoadSettings].
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxSiteSize bounds the site document read from disk or the network.
const maxSiteSize = 1 << 20

// Format identifies the encoding of a site document.
type Format string

const (
	// FormatJSON is the default site document encoding.
	FormatJSON Format = "json"

	// FormatYAML is selected for .yaml and .yml sources.
	FormatYAML Format = "yaml"
)

// Site is the static description of the server shown on the status page.
//
// Site is immutable after loading; nothing in mcstatus mutates it.
type Site struct {
	// ServerAddress is the host players connect to. It is shown verbatim
	// on the page and is what the copy button copies.
	ServerAddress string `json:"serverAddress" yaml:"serverAddress"`

	// ServerPort is the game port. Zero means the status API default.
	ServerPort int `json:"serverPort" yaml:"serverPort"`

	// GitHub is the repository link shown in the page corner.
	GitHub string `json:"github" yaml:"github"`

	// Downloads are the artifacts offered as download links.
	Downloads []Download `json:"downloads" yaml:"downloads"`
}

// Download is a single downloadable artifact.
type Download struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
}

// Target returns the status lookup key, serverAddress:serverPort.
func (s Site) Target() string {
	if s.ServerPort == 0 {
		return s.ServerAddress
	}
	return s.ServerAddress + ":" + strconv.Itoa(s.ServerPort)
}

// Validate reports problems that would make the page useless.
//
// The service itself never calls Validate: a loaded site is displayed as-is.
// It backs the validate command.
func (s Site) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ServerAddress) == "" {
		errs = append(errs, errors.New("serverAddress is required"))
	}
	if s.ServerPort < 0 || s.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("serverPort must be between 0 and 65535, got %d", s.ServerPort))
	}
	for i, d := range s.Downloads {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("downloads[%d]: name is required", i))
		}
		if d.File == "" {
			errs = append(errs, fmt.Errorf("downloads[%d] (%s): file is required", i, d.Name))
		}
	}
	return errors.Join(errs...)
}

// FormatOf picks the document format from the source's extension.
func FormatOf(source string) Format {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseSite decodes a site document.
//
// Environment references (${VAR} or ${VAR:-default}) in serverAddress,
// github and download files are expanded after decoding.
func ParseSite(data []byte, format Format) (*Site, error) {
	var site Site
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &site); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &site); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown site format %q", format)
	}

	if err := site.expand(); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Site) expand() error {
	var err error
	if s.ServerAddress, err = expandEnvVars(s.ServerAddress); err != nil {
		return fmt.Errorf("serverAddress: %w", err)
	}
	if s.GitHub, err = expandEnvVars(s.GitHub); err != nil {
		return fmt.Errorf("github: %w", err)
	}
	for i := range s.Downloads {
		if s.Downloads[i].File, err = expandEnvVars(s.Downloads[i].File); err != nil {
			return fmt.Errorf("downloads[%d]: file: %w", i, err)
		}
	}
	return nil
}

// LoadSite reads the site document once from a file path or an http(s) URL.
//
// There is no retry and no caching. When client is nil, [http.DefaultClient]
// is used for URL sources.
func LoadSite(ctx context.Context, source string, client *http.Client) (*Site, error) {
	if source == "" {
		return nil, errors.New("site source is empty")
	}

	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = fetchSite(ctx, source, client)
	} else {
		data, err = readSite(source)
	}
	if err != nil {
		return nil, err
	}
	return ParseSite(data, FormatOf(source))
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func readSite(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxSiteSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	return data, nil
}

func fetchSite(ctx context.Context, rawURL string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch site config: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch site config: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSiteSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read site config body: %w", err)
	}
	return data, nil
}
