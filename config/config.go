package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the knowledge hub service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	RefreshCron  string        `mapstructure:"refresh_cron"`
	ChatCacheTTL time.Duration `mapstructure:"chat_cache_ttl"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.JWTSecret) == "" {
		return fmt.Errorf("server.jwt_secret is required")
	}
	return nil
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

// SignalWeights is a per-specificity weight triple over the three ranking
// signals. The three weights are expected to sum to 1.0.
type SignalWeights struct {
	TFIDF    float64 `mapstructure:"tfidf"`
	Semantic float64 `mapstructure:"semantic"`
	Keyword  float64 `mapstructure:"keyword"`
}

func (w SignalWeights) Validate(name string) error {
	sum := w.TFIDF + w.Semantic + w.Keyword
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("retrieval.weights.%s must sum to 1.0 (got %.3f)", name, sum)
	}
	if w.TFIDF < 0 || w.Semantic < 0 || w.Keyword < 0 {
		return fmt.Errorf("retrieval.weights.%s must be non-negative", name)
	}
	return nil
}

// RetrievalConfig carries the tuned parameters of the ranking pipeline. The
// defaults mirror the values the hub was launched with; they are not
// correctness constants and may be adjusted per deployment.
type RetrievalConfig struct {
	StopwordFile    string  `mapstructure:"stopword_file"`
	VectorFile      string  `mapstructure:"vector_file"`
	MaxFeatures     int     `mapstructure:"max_features"`
	MaxDocFreqRatio float64 `mapstructure:"max_doc_freq_ratio"`

	Threshold        float64 `mapstructure:"threshold"`
	GeneralThreshold float64 `mapstructure:"general_threshold"`
	KeywordFloor     float64 `mapstructure:"keyword_floor"`
	TopK             int     `mapstructure:"top_k"`
	GeneralTopK      int     `mapstructure:"general_top_k"`
	TypeCap          int     `mapstructure:"type_cap"`

	Weights RetrievalWeights `mapstructure:"weights"`
}

// RetrievalWeights maps each query specificity tier to its weight triple.
type RetrievalWeights struct {
	VeryGeneral     SignalWeights `mapstructure:"very_general"`
	General         SignalWeights `mapstructure:"general"`
	SomewhatGeneral SignalWeights `mapstructure:"somewhat_general"`
	Specific        SignalWeights `mapstructure:"specific"`
}

// Normalize applies defaults for unset retrieval values.
func (r RetrievalConfig) Normalize() RetrievalConfig {
	if r.MaxFeatures <= 0 {
		r.MaxFeatures = 5000
	}
	if r.MaxDocFreqRatio <= 0 || r.MaxDocFreqRatio > 1 {
		r.MaxDocFreqRatio = 0.8
	}
	if r.Threshold <= 0 {
		r.Threshold = 0.05
	}
	if r.GeneralThreshold <= 0 {
		r.GeneralThreshold = 0.02
	}
	if r.KeywordFloor < 0 {
		r.KeywordFloor = 0
	}
	if r.TopK <= 0 {
		r.TopK = 5
	}
	if r.GeneralTopK <= 0 {
		r.GeneralTopK = 10
	}
	if r.TypeCap <= 0 {
		r.TypeCap = 2
	}
	zero := SignalWeights{}
	if r.Weights.VeryGeneral == zero {
		r.Weights.VeryGeneral = SignalWeights{TFIDF: 0.15, Semantic: 0.15, Keyword: 0.7}
	}
	if r.Weights.General == zero {
		r.Weights.General = SignalWeights{TFIDF: 0.25, Semantic: 0.2, Keyword: 0.55}
	}
	if r.Weights.SomewhatGeneral == zero {
		r.Weights.SomewhatGeneral = SignalWeights{TFIDF: 0.35, Semantic: 0.25, Keyword: 0.4}
	}
	if r.Weights.Specific == zero {
		r.Weights.Specific = SignalWeights{TFIDF: 0.45, Semantic: 0.3, Keyword: 0.25}
	}
	return r
}

func (r RetrievalConfig) Validate() error {
	if r.GeneralThreshold > r.Threshold {
		return fmt.Errorf("retrieval.general_threshold must not exceed retrieval.threshold")
	}
	if r.GeneralTopK < r.TopK {
		return fmt.Errorf("retrieval.general_top_k must be >= retrieval.top_k")
	}
	if err := r.Weights.VeryGeneral.Validate("very_general"); err != nil {
		return err
	}
	if err := r.Weights.General.Validate("general"); err != nil {
		return err
	}
	if err := r.Weights.SomewhatGeneral.Validate("somewhat_general"); err != nil {
		return err
	}
	return r.Weights.Specific.Validate("specific")
}

// ChatbotConfig controls chat response assembly.
type ChatbotConfig struct {
	MaxSuggestions      int      `mapstructure:"max_suggestions"`
	FallbackSuggestions []string `mapstructure:"fallback_suggestions"`
}

// Normalize applies sensible defaults when values are omitted.
func (c ChatbotConfig) Normalize() ChatbotConfig {
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = 3
	}
	if len(c.FallbackSuggestions) == 0 {
		c.FallbackSuggestions = []string{
			"Browse the commodity catalogue",
			"Read the frequently asked questions",
			"Visit the community forum",
		}
	}
	return c
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("server.chat_cache_ttl", "2m")
	viper.SetDefault("retrieval.max_features", 5000)
	viper.SetDefault("retrieval.max_doc_freq_ratio", 0.8)
	viper.SetDefault("retrieval.threshold", 0.05)
	viper.SetDefault("retrieval.general_threshold", 0.02)
	viper.SetDefault("retrieval.keyword_floor", 0.01)
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.general_top_k", 10)
	viper.SetDefault("retrieval.type_cap", 2)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("AGRIHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Retrieval = config.Retrieval.Normalize()
	config.Chatbot = config.Chatbot.Normalize()

	if err := config.Server.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Postgres.Validate(); err != nil {
		panic(err)
	}
	if err := config.Retrieval.Validate(); err != nil {
		panic(err)
	}
	return &config
}
