package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	// Embedded zone database so the site timezone resolves in minimal containers.
	_ "time/tzdata"
)

const (
	// RendererBrowser renders the page in headless Chromium before extraction.
	RendererBrowser = "browser"
	// RendererHTTP extracts from the raw HTTP response body.
	RendererHTTP = "http"

	// StorageFile persists the snapshot as JSON in <dataDir>/products.json.
	StorageFile = "file"
	// StorageSQLite persists the snapshot in <dataDir>/state.db.
	StorageSQLite = "sqlite"

	productsFileName = "products.json"
	sqliteFileName   = "state.db"
)

var ErrEmptyConfigPath = errors.New("config path is empty: set WATCHER_CONFIG or pass --config")

// Settings are process-level options taken from the environment.
type Settings struct {
	Env        string // Env is the current environment: local, development, production.
	ConfigPath string // ConfigPath is the location of the watcher YAML document.
	DataDir    string // DataDir holds the persisted snapshot.
	LogFile    string // LogFile enables a rotated log file next to stdout when set.
}

// WatcherConfig is the validated description of one watched site.
type WatcherConfig struct {
	Name             string         `yaml:"name" validate:"required"`
	Site             SiteConfig     `yaml:"site"`
	Messages         MessageConfig  `yaml:"messages"`
	Notifiers        NotifierConfig `yaml:"notifiers"`
	Browser          BrowserConfig  `yaml:"browser"`
	Storage          StorageConfig  `yaml:"storage"`
	NotifyOnFirstRun bool           `yaml:"notifyOnFirstRun"`

	DataDir      string `yaml:"-"`
	ProductsFile string `yaml:"-"`
	SQLiteFile   string `yaml:"-"`
}

type SiteConfig struct {
	URL       string          `yaml:"url" validate:"required,url"`
	BaseURL   string          `yaml:"baseUrl" validate:"required,url"`
	Locale    string          `yaml:"locale" validate:"required"`
	Timezone  string          `yaml:"timezone" validate:"required,timezone"`
	Renderer  string          `yaml:"renderer" validate:"oneof=browser http"`
	Selectors SelectorsConfig `yaml:"selectors"`
	Parsing   ParsingConfig   `yaml:"parsing"`
}

// SelectorsConfig holds CSS selectors; all but ProductList are relative to one product element.
type SelectorsConfig struct {
	ProductList string `yaml:"productList" validate:"required"`
	Image       string `yaml:"image" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Color       string `yaml:"color" validate:"required"`
	Price       string `yaml:"price" validate:"required"`
	Link        string `yaml:"link" validate:"required"`
}

type ParsingConfig struct {
	ProductCodeAttr    string `yaml:"productCodeAttr" validate:"required"`
	ProductCodeReplace string `yaml:"productCodeReplace"`
	ColorStripPattern  string `yaml:"colorStripPattern" validate:"omitempty,regexp"`
}

// MessageConfig carries every literal used in notifications.
type MessageConfig struct {
	Header       string `yaml:"header" validate:"required"`
	Added        string `yaml:"added" validate:"required"`
	Removed      string `yaml:"removed" validate:"required"`
	PriceChanged string `yaml:"priceChanged" validate:"required"`
	ColorLabel   string `yaml:"colorLabel" validate:"required"`
	PriceLabel   string `yaml:"priceLabel" validate:"required"`
	TimeLabel    string `yaml:"timeLabel" validate:"required"`
	CountLabel   string `yaml:"countLabel" validate:"required"`
	CountUnit    string `yaml:"countUnit"`
}

type NotifierConfig struct {
	Console  ConsoleConfig  `yaml:"console"`
	Line     LineConfig     `yaml:"line"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LineConfig struct {
	Enabled            bool     `yaml:"enabled"`
	ChannelAccessToken string   `yaml:"channelAccessToken"`
	Users              []string `yaml:"users"`
}

type TelegramConfig struct {
	Enabled bool          `yaml:"enabled"`
	Token   string        `yaml:"token"`
	Chats   []int64       `yaml:"chats"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"` // Timeout is the long poller timeout of the helper bot.
}

type BrowserConfig struct {
	Headless          bool          `yaml:"headless"`
	Bin               string        `yaml:"bin"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout" validate:"gt=0"`
	WaitTimeout       time.Duration `yaml:"waitTimeout" validate:"gt=0"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=file sqlite"`
}

// LoadSettings reads process settings from the environment (prefix WATCHER_).
// A .env file in the working directory is loaded first when present.
func LoadSettings() *Settings {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("WATCHER")
	vpr.AutomaticEnv()

	// optional args
	vpr.SetDefault("ENV", "production")
	vpr.SetDefault("CONFIG", "watcher.config.yml")

	dataDir := vpr.GetString("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}

	return &Settings{
		Env:        vpr.GetString("ENV"),
		ConfigPath: vpr.GetString("CONFIG"),
		DataDir:    dataDir,
		LogFile:    vpr.GetString("LOG_FILE"),
	}
}

// Load reads, expands and validates the watcher document at path.
// Derived paths are placed under dataDir.
func Load(path, dataDir string) (*WatcherConfig, error) {
	const opn = "config.Load"

	if path == "" {
		return nil, ErrEmptyConfigPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", opn, path, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", opn, path, err)
	}

	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	cfg.DataDir = dataDir
	cfg.ProductsFile = filepath.Join(dataDir, productsFileName)
	cfg.SQLiteFile = filepath.Join(dataDir, sqliteFileName)

	return cfg, nil
}

// Parse decodes a watcher document, expanding ${VAR} placeholders in every value, and validates it.
func Parse(raw []byte) (*WatcherConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	expandNode(&root)

	cfg := defaults()
	if err := root.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Notifiers.Line.Users = compact(cfg.Notifiers.Line.Users)
	cfg.Notifiers.Telegram.Chats = nonZero(cfg.Notifiers.Telegram.Chats)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location returns the site timezone. The zone name is checked by Validate.
func (s SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaults() *WatcherConfig {
	return &WatcherConfig{
		Site: SiteConfig{Renderer: RendererBrowser},
		Notifiers: NotifierConfig{
			Console:  ConsoleConfig{Enabled: true},
			Telegram: TelegramConfig{Timeout: 15 * time.Second},
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: 30 * time.Second,
			WaitTimeout:       15 * time.Second,
		},
		Storage:          StorageConfig{Driver: StorageFile},
		NotifyOnFirstRun: true,
	}
}

func defaultDataDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "data"
	}
	return filepath.Join(cwd, "data")
}

// compact drops empty entries.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// nonZero drops chat ids left at zero by placeholders that expanded to nothing.
func nonZero(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}
