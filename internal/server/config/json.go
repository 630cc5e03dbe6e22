package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/azura/internal/flagx"
	"github.com/dmitrijs2005/azura/internal/timex"
)

// JsonConfig is the on-disk form of Config. Interval fields use
// timex.Duration, so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	Storage                      string         `json:"storage"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ResetHashValidityDuration    timex.Duration `json:"reset_hash_validity_duration"`
	RefreshTokenStore            string         `json:"refresh_token_store"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	Mailer                       string         `json:"mailer"`
	ResetURL                     string         `json:"reset_url"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	RevokeSessionsOnReset        bool           `json:"revoke_sessions_on_reset"`
	LogLevel                     string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:             c.EndpointAddrHTTP,
		DatabaseDSN:                  c.DatabaseDSN,
		Storage:                      c.Storage,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		ResetHashValidityDuration:    timex.Duration{Duration: c.ResetHashValidityDuration},
		RefreshTokenStore:            c.RefreshTokenStore,
		RedisAddr:                    c.RedisAddr,
		RedisPassword:                c.RedisPassword,
		RedisDB:                      c.RedisDB,
		Mailer:                       c.Mailer,
		ResetURL:                     c.ResetURL,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
		BcryptCost:                   c.BcryptCost,
		RevokeSessionsOnReset:        c.RevokeSessionsOnReset,
		LogLevel:                     c.LogLevel,
	}
}

// parseJson overlays the JSON file named by -c/-config onto config. Keys
// missing from the file keep their current values. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.Storage = c.Storage
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.ResetHashValidityDuration = c.ResetHashValidityDuration.Duration
	config.RefreshTokenStore = c.RefreshTokenStore
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.Mailer = c.Mailer
	config.ResetURL = c.ResetURL
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.BcryptCost = c.BcryptCost
	config.RevokeSessionsOnReset = c.RevokeSessionsOnReset
	config.LogLevel = c.LogLevel
}
