package config

import (
	"encoding/json"
	"os"

	"github.com/dka-services/account-core/internal/flagx"
	"github.com/dka-services/account-core/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Duration fields accept both "5m" strings and
// integer nanoseconds; after unmarshalling they are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	KeyDir           string         `json:"key_dir"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	AccessIssuer     string         `json:"access_issuer"`
	AccessSubject    string         `json:"access_subject"`
	RefreshIssuer    string         `json:"refresh_issuer"`
	RefreshSubject   string         `json:"refresh_subject"`
	ReconcilerPoll   timex.Duration `json:"reconciler_poll"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into config. Absent flags mean no file is loaded; an
// unreadable or invalid file panics, as a broken explicit config is a
// bootstrap failure.
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

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.KeyDir = c.KeyDir
	config.AccessTokenTTL = c.AccessTokenTTL.Duration
	config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	config.AccessIssuer = c.AccessIssuer
	config.AccessSubject = c.AccessSubject
	config.RefreshIssuer = c.RefreshIssuer
	config.RefreshSubject = c.RefreshSubject
	config.ReconcilerPoll = c.ReconcilerPoll.Duration
}
