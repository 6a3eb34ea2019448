// Package config reads command line flags, falling back to environment
// variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const appName = "iplay"

var ErrMissingOutput = errors.New("missing output directory")

// Config drives the player UI.
type Config struct {
	CatalogURL  string
	CatalogDir  string
	URL         string
	SessionPath string
	LogPath     string
	MPV         string
	Socket      string
	Debug       bool
}

// CompileConfig drives the archive compiler.
type CompileConfig struct {
	Input  string
	Output string
	Debug  bool
}

// ServeConfig drives the catalog server.
type ServeConfig struct {
	Dir     string
	Bind    string
	Port    int
	LogPath string
	Debug   bool
}

// Addr is the listen address.
func (c ServeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// Load parses the player flags. getenv is os.Getenv outside tests.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := newFlagSet(appName)
	var c Config
	fs.StringVar(&c.CatalogURL, "catalog", env(getenv, "IPLAY_CATALOG", "http://localhost:8000"), "catalog server base URL")
	fs.StringVar(&c.CatalogDir, "dir", env(getenv, "IPLAY_DIR", ""), "compiled catalog directory used when the server is unavailable")
	fs.StringVar(&c.URL, "url", env(getenv, "IPLAY_URL", ""), "location to open, e.g. /ui/playlists/jazz?video-id=abc")
	fs.StringVar(&c.SessionPath, "session", env(getenv, "IPLAY_SESSION", defaultPath(os.UserConfigDir, "session.json")), "session file")
	fs.StringVar(&c.LogPath, "log", env(getenv, "IPLAY_LOG", defaultPath(os.UserCacheDir, "iplay.log")), "log file")
	fs.StringVar(&c.MPV, "mpv", env(getenv, "IPLAY_MPV", "mpv"), "mpv binary")
	fs.StringVar(&c.Socket, "socket", env(getenv, "IPLAY_SOCKET", filepath.Join(os.TempDir(), fmt.Sprintf("iplay-mpv-%d.sock", os.Getpid()))), "mpv IPC socket")
	fs.BoolVar(&c.Debug, "debug", envBool(getenv, "IPLAY_DEBUG"), "log at debug level")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadCompile parses the flags of the compile subcommand. The output
// directory may be given as -o or as the first positional argument.
func LoadCompile(args []string, getenv func(string) string) (CompileConfig, error) {
	fs := newFlagSet(appName + " compile")
	var c CompileConfig
	fs.StringVar(&c.Input, "i", env(getenv, "IPLAY_ARCHIVE", "."), "archive directory")
	fs.StringVar(&c.Output, "o", "", "output directory (required)")
	fs.BoolVar(&c.Debug, "debug", envBool(getenv, "IPLAY_DEBUG"), "log at debug level")
	if err := fs.Parse(args); err != nil {
		return CompileConfig{}, err
	}
	if c.Output == "" && fs.NArg() > 0 {
		c.Output = fs.Arg(0)
	}
	if c.Output == "" {
		return CompileConfig{}, ErrMissingOutput
	}
	return c, nil
}

// LoadServe parses the flags of the serve subcommand.
func LoadServe(args []string, getenv func(string) string) (ServeConfig, error) {
	fs := newFlagSet(appName + " serve")
	var c ServeConfig
	port, err := envInt(getenv, "PORT", 8000)
	if err != nil {
		return ServeConfig{}, err
	}
	fs.StringVar(&c.Dir, "d", env(getenv, "IPLAY_DIR", "."), "compiled catalog directory")
	fs.StringVar(&c.Bind, "b", env(getenv, "IPLAY_BIND", "localhost"), "bind address")
	fs.IntVar(&c.Port, "p", port, "port")
	fs.StringVar(&c.LogPath, "log", env(getenv, "IPLAY_LOG", ""), "log file, stderr when empty")
	fs.BoolVar(&c.Debug, "debug", envBool(getenv, "IPLAY_DEBUG"), "log at debug level")
	if err := fs.Parse(args); err != nil {
		return ServeConfig{}, err
	}
	return c, nil
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func env(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(getenv func(string) string, key string) bool {
	v, err := strconv.ParseBool(getenv(key))
	return err == nil && v
}

func envInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func defaultPath(dir func() (string, error), name string) string {
	base, err := dir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appName, name)
}
