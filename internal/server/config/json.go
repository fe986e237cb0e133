package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/geotrade/marketplace/internal/flagx"
	"github.com/geotrade/marketplace/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	RedisAddr                   string         `json:"redis_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DraftLockTTL                timex.Duration `json:"draft_lock_ttl"`
	DraftProviderReview         bool           `json:"draft_provider_review"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	CatalogueBaseURL            string         `json:"catalogue_base_url"`
	PaymentBaseURL              string         `json:"payment_base_url"`
	RatingsBaseURL              string         `json:"ratings_base_url"`
	NotebookBaseURL             string         `json:"notebook_base_url"`
	ClientTimeout               timex.Duration `json:"client_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags. If it is
// not set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.DraftLockTTL = time.Duration(c.DraftLockTTL.Duration)
	config.DraftProviderReview = c.DraftProviderReview
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.CatalogueBaseURL = c.CatalogueBaseURL
	config.PaymentBaseURL = c.PaymentBaseURL
	config.RatingsBaseURL = c.RatingsBaseURL
	config.NotebookBaseURL = c.NotebookBaseURL
	config.ClientTimeout = time.Duration(c.ClientTimeout.Duration)
}
