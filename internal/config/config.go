package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRoles is the search role list used when the config file does not
// override harvest.roles.
var DefaultRoles = []string{
	"Computer Operator",
	"Clerk",
	"Data Entry",
	"Intern",
	"Construction Worker",
	"Construction Manager",
	"Construction Project Manager",
	"Construction Coordinator",
	"Site Supervisor",
	"Developer",
	"Social Media Manager",
	"Graphic Designer",
	"Content Writer",
	"Automation",
	"AI",
}

// DefaultSources is the source list used when harvest.sources is empty.
var DefaultSources = []string{"indeed", "rozee", "jobz"}

// WordPressSite holds the credentials and publishing defaults for one
// WordPress installation.
type WordPressSite struct {
	Label      string `yaml:"label"`
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Categories []int  `yaml:"categories"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Workers struct {
		PoolSize   int           `yaml:"pool_size" default:"4"`
		RateLimit  int           `yaml:"rate_limit" default:"30"` // requests per minute per domain
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"workers"`

	BackgroundTasks struct {
		MaxConcurrentTasks int           `yaml:"max_concurrent_tasks" default:"10"`
		TaskTimeout        time.Duration `yaml:"task_timeout" default:"1800s"`
		CleanupInterval    time.Duration `yaml:"cleanup_interval" default:"1h"`
		MaxTaskAge         time.Duration `yaml:"max_task_age" default:"24h"`
	} `yaml:"background_tasks"`

	Harvest struct {
		Roles          []string `yaml:"roles"`
		Sources        []string `yaml:"sources"`
		ResultsPerRole int      `yaml:"results_per_role" default:"25"`
		SkipDetails    bool     `yaml:"skip_details" default:"false"`
	} `yaml:"harvest"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-5-haiku-latest"`
		MaxTokens   int           `yaml:"max_tokens" default:"4096"`
		Temperature float32       `yaml:"temperature" default:"0.7"`
		Timeout     time.Duration `yaml:"timeout" default:"120s"`
	} `yaml:"llm"`

	Scraper struct {
		Engine         string        `yaml:"engine" default:"static"`
		UserAgent      string        `yaml:"user_agent"`
		MaxRetries     int           `yaml:"max_retries" default:"3"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
		HeadlessMode   bool          `yaml:"headless_mode" default:"true"`
		StealthMode    bool          `yaml:"stealth_mode" default:"true"`
	} `yaml:"scraper"`

	BrowserPool struct {
		MaxBrowsers        int           `yaml:"max_browsers" default:"2"`
		AcquisitionTimeout time.Duration `yaml:"acquisition_timeout" default:"30s"`
	} `yaml:"browser_pool"`

	Firecrawl struct {
		APIKey     string        `yaml:"api_key"`
		APIURL     string        `yaml:"api_url" default:"https://api.firecrawl.dev"`
		Timeout    time.Duration `yaml:"timeout" default:"60s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"firecrawl"`

	Database struct {
		URL            string        `yaml:"url"`
		MaxConns       int           `yaml:"max_conns" default:"10"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
		MigrateOnStart bool          `yaml:"migrate_on_start" default:"true"`
	} `yaml:"database"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		SeenTTL  time.Duration `yaml:"seen_ttl" default:"720h"`
	} `yaml:"redis"`

	WordPress struct {
		Primary   WordPressSite `yaml:"primary"`
		Secondary WordPressSite `yaml:"secondary"`
	} `yaml:"wordpress"`

	Publisher struct {
		Enabled      bool   `yaml:"enabled" default:"false"`
		BatchLimit   int    `yaml:"batch_limit" default:"10"`
		DefaultSite  string `yaml:"default_site" default:"primary"`
		SnapshotDir  string `yaml:"snapshot_dir"`
		PublishDraft bool   `yaml:"publish_draft" default:"true"`
	} `yaml:"publisher"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	// Expand ${VAR} syntax
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	// Expand $VAR syntax (but avoid replacing ${VAR} that was already processed)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.PoolSize = 4
	config.Workers.RateLimit = 30
	config.Workers.Timeout = 30 * time.Second
	config.Workers.MaxRetries = 3

	config.BackgroundTasks.MaxConcurrentTasks = 10
	config.BackgroundTasks.TaskTimeout = 1800 * time.Second
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	config.Harvest.Roles = append([]string(nil), DefaultRoles...)
	config.Harvest.Sources = append([]string(nil), DefaultSources...)
	config.Harvest.ResultsPerRole = 25

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-5-haiku-latest"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.7
	config.LLM.Timeout = 120 * time.Second

	config.Scraper.Engine = "static"
	config.Scraper.MaxRetries = 3
	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.HeadlessMode = true
	config.Scraper.StealthMode = true
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	config.BrowserPool.MaxBrowsers = 2
	config.BrowserPool.AcquisitionTimeout = 30 * time.Second

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second
	config.Firecrawl.MaxRetries = 3

	config.Database.MaxConns = 10
	config.Database.ConnectTimeout = 10 * time.Second
	config.Database.MigrateOnStart = true

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second
	config.Redis.SeenTTL = 720 * time.Hour

	config.WordPress.Primary.Label = "primary"
	config.WordPress.Secondary.Label = "secondary"

	config.Publisher.BatchLimit = 10
	config.Publisher.DefaultSite = "primary"
	config.Publisher.PublishDraft = true

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	if len(config.Harvest.Roles) == 0 {
		config.Harvest.Roles = append([]string(nil), DefaultRoles...)
	}
	if len(config.Harvest.Sources) == 0 {
		config.Harvest.Sources = append([]string(nil), DefaultSources...)
	}
	if config.WordPress.Primary.Label == "" {
		config.WordPress.Primary.Label = "primary"
	}
	if config.WordPress.Secondary.Label == "" {
		config.WordPress.Secondary.Label = "secondary"
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if engine := os.Getenv("SCRAPER_ENGINE"); engine != "" {
		c.Scraper.Engine = engine
	}

	if roles := os.Getenv("HARVEST_ROLES"); roles != "" {
		c.Harvest.Roles = splitAndTrim(roles)
	}

	if sources := os.Getenv("HARVEST_SOURCES"); sources != "" {
		c.Harvest.Sources = splitAndTrim(sources)
	}

	if perRole := os.Getenv("HARVEST_RESULTS_PER_ROLE"); perRole != "" {
		if n, err := strconv.Atoi(perRole); err == nil && n > 0 {
			c.Harvest.ResultsPerRole = n
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		c.Database.URL = databaseURL
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if baseURL := os.Getenv("WP_PRIMARY_URL"); baseURL != "" {
		c.WordPress.Primary.BaseURL = baseURL
	}
	if user := os.Getenv("WP_PRIMARY_USERNAME"); user != "" {
		c.WordPress.Primary.Username = user
	}
	if pass := os.Getenv("WP_PRIMARY_PASSWORD"); pass != "" {
		c.WordPress.Primary.Password = pass
	}

	if baseURL := os.Getenv("WP_SECONDARY_URL"); baseURL != "" {
		c.WordPress.Secondary.BaseURL = baseURL
	}
	if user := os.Getenv("WP_SECONDARY_USERNAME"); user != "" {
		c.WordPress.Secondary.Username = user
	}
	if pass := os.Getenv("WP_SECONDARY_PASSWORD"); pass != "" {
		c.WordPress.Secondary.Password = pass
	}

	if enabled := os.Getenv("PUBLISHER_ENABLED"); enabled != "" {
		c.Publisher.Enabled = enabled == "true" || enabled == "1"
	}
}

// Site resolves a publish target by name, falling back to the primary site.
func (c *Config) Site(name string) WordPressSite {
	if strings.EqualFold(name, "secondary") {
		return c.WordPress.Secondary
	}
	return c.WordPress.Primary
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
