package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, parsed from ROOTED_* env
// vars with the defaults below. Flags in cmd/ override individual
// fields.
type Config struct {
	Env     string `default:"dev"`
	Port    int    `default:"5000"`
	LogJSON bool   `split_words:"true" default:"true"`

	JWTSecret string `split_words:"true"`

	InMemoryStore bool   `split_words:"true"`
	MongoURI      string `split_words:"true" default:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `split_words:"true" default:"rooted"`

	PhonePeBaseURL      string `split_words:"true" default:"https://api.phonepe.com/apis/pg"`
	PhonePeAuthURL      string `split_words:"true" default:"https://api.phonepe.com/apis/identity-manager"`
	PhonePeClientID     string `split_words:"true"`
	PhonePeClientSecret string `split_words:"true"`
	WebhookUser         string `split_words:"true"`
	WebhookPass         string `split_words:"true"`

	MSG91AuthKey    string `envconfig:"MSG91_AUTH_KEY"`
	MSG91TemplateID string `envconfig:"MSG91_TEMPLATE_ID"`

	MapsAPIKey string `split_words:"true"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("rooted", &c)
	return c, err
}
