package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"focusguard/internal/logger"
)

type AppConfig struct {
	ListenAddr      string
	DBPath          string
	TokenPath       string
	LogPath         string
	AccountBaseURL  string
	BlockPageURL    string
	AppVersion      string
	FreeSiteLimit   int
	FreePresetLimit int
}

var (
	mu  sync.RWMutex
	cfg AppConfig
	v   *viper.Viper
)

// Init reads config/config.yaml (all keys optional) and starts watching it for
// changes. Later edits to limits or the account URL are picked up without a
// daemon restart.
func Init(path string) AppConfig {
	dataDir := filepath.Join(os.TempDir(), "focusguard")

	v = viper.New()
	if path == "" {
		path = "config/config.yaml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// defaults
	v.SetDefault("daemon.listen_addr", "127.0.0.1:8645")
	v.SetDefault("daemon.db_path", filepath.Join(dataDir, "focusguard.db"))
	v.SetDefault("daemon.token_path", filepath.Join(dataDir, "account.token"))
	v.SetDefault("daemon.log_path", "")
	v.SetDefault("account.base_url", "https://api.focusguard.app")
	v.SetDefault("blocking.block_page_url", "http://127.0.0.1:8645/blocked")
	v.SetDefault("app.version", "2.0.0")
	v.SetDefault("limits.free_sites", 10)
	v.SetDefault("limits.free_presets", 2)
	_ = v.ReadInConfig()

	reload()

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Infof("Config file changed: %s", e.Name)
		reload()
	})
	v.WatchConfig()

	return Get()
}

func reload() {
	mu.Lock()
	defer mu.Unlock()
	cfg = AppConfig{
		ListenAddr:      v.GetString("daemon.listen_addr"),
		DBPath:          v.GetString("daemon.db_path"),
		TokenPath:       v.GetString("daemon.token_path"),
		LogPath:         v.GetString("daemon.log_path"),
		AccountBaseURL:  v.GetString("account.base_url"),
		BlockPageURL:    v.GetString("blocking.block_page_url"),
		AppVersion:      v.GetString("app.version"),
		FreeSiteLimit:   v.GetInt("limits.free_sites"),
		FreePresetLimit: v.GetInt("limits.free_presets"),
	}
}

func Get() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func TokenFilePath() string {
	c := Get()
	if c.TokenPath == "" {
		return filepath.Join(os.TempDir(), "focusguard", "account.token")
	}
	return c.TokenPath
}
