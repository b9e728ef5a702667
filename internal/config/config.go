// Package config builds the process-wide configuration object.
//
// All credentials, endpoints and enterprise identifiers are read exactly once
// at process start; components receive the resulting Config by reference and
// never read ambient process state themselves.
package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/vbtn/compliance-audit/internal/identity"
)

// Mail holds the mailbox session configuration.
type Mail struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Port     int    `mapstructure:"port"`
}

// Configured reports whether the mail source should be collected at all.
func (m Mail) Configured() bool {
	return m.Host != "" && m.User != ""
}

// SMS holds the SMS provider configuration.
type SMS struct {
	SID     string   `mapstructure:"sid"`
	Token   string   `mapstructure:"token"`
	Numbers []string `mapstructure:"numbers"`
}

// Configured reports whether the SMS source should be collected at all.
func (s SMS) Configured() bool {
	return s.SID != "" && s.Token != ""
}

// Endpoint is a URL and API key pair. Both must be present for the endpoint
// to be used; absence of either is a deliberate skip, never an error.
type Endpoint struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// Configured reports whether both the URL and the key are set.
func (e Endpoint) Configured() bool {
	return e.URL != "" && e.Key != ""
}

// Config is the full process configuration.
type Config struct {
	Mail    Mail     `mapstructure:"mail"`
	SMS     SMS      `mapstructure:"sms"`
	Devices Endpoint `mapstructure:"devices"`

	Coupa Endpoint `mapstructure:"coupa"`
	PIEE  Endpoint `mapstructure:"piee"`
	SAM   Endpoint `mapstructure:"sam"`

	Archive Endpoint `mapstructure:"archive"`

	// HPFaxEmail, when set, joins the mail target-recipient set.
	HPFaxEmail string `mapstructure:"hp_fax_email"`

	Enterprise identity.Identifiers `mapstructure:"enterprise"`
}

// envBindings maps viper keys to the flat environment variables that form the
// contract with the wrapping scheduler.
var envBindings = map[string]string{
	"mail.host":     "IMAP_HOST",
	"mail.user":     "IMAP_USER",
	"mail.password": "IMAP_PASSWORD",
	"mail.port":     "IMAP_PORT",

	"sms.sid":     "TWILIO_SID",
	"sms.token":   "TWILIO_TOKEN",
	"sms.numbers": "PHONE_NUMBERS",

	"devices.url": "APPLE_MDM_API_URL",
	"devices.key": "APPLE_MDM_API_KEY",

	"coupa.url": "COUPA_API_URL",
	"coupa.key": "COUPA_API_KEY",
	"piee.url":  "PIEE_API_URL",
	"piee.key":  "PIEE_API_KEY",
	"sam.url":   "SAM_API_URL",
	"sam.key":   "SAM_API_KEY",

	"archive.url": "CLOUD_ARCHIVE_URL",
	"archive.key": "CLOUD_ARCHIVE_KEY",

	"hp_fax_email": "HP_FAX_EMAIL",

	"enterprise.uei":                "UEI",
	"enterprise.cage":               "CAGE_CODE",
	"enterprise.dodaac_contracting": "DODAAC_CONTRACTING",
	"enterprise.dodaac_funding":     "DODAAC_FUNDING",
	"enterprise.paying_dodaac":      "PAYING_DODAAC",
	"enterprise.fedstrip":           "FEDSTRIP",
	"enterprise.finance_unitid":     "FINANCE_UNITID",
	"enterprise.cag_code":           "CAG_CODE",
	"enterprise.ba_codes":           "BA_CODES",
	"enterprise.scf_code":           "SCF_CODE",
	"enterprise.district_cd":        "DISTRICT_CD",
	"enterprise.eps":                "EPS",
}

// Load binds the documented environment variables onto vip and unmarshals the
// result into a Config. The viper instance may already carry values from a
// configuration file; environment variables take precedence per viper rules.
func Load(vip *viper.Viper) (Config, error) {
	vip.SetDefault("mail.port", 993)

	for key, env := range envBindings {
		if err := vip.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("could not bind environment variable %s: %w", env, err)
		}
	}

	var c Config
	if err := vip.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration into struct: %w", err)
	}

	c.SMS.Numbers = trimNumbers(c.SMS.Numbers)

	return c, nil
}

func trimNumbers(numbers []string) []string {
	var out []string
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}
