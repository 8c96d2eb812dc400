package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const envPrefix = "SIGNER"

type EchoServer struct {
	Debug                          bool
	ListenAddress                  string
	EnableCORSMiddleware           bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableTrailingSlashMiddleware  bool
	EnableLoggerMiddleware         bool
	EnableBodyLimitMiddleware      bool
	BodyLimit                      string
	EnableSecureMiddleware         bool
	SecureMiddlewareContentNoSniff bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	LogRequestBody     bool
	LogResponseBody    bool
	PrettyPrintConsole bool
}

type Management struct {
	ReadinessTimeout time.Duration
}

type Keystore struct {
	Directory  string
	ScryptN    int
	ScryptP    int
	SS58Prefix uint16
}

type Signing struct {
	// HID path of the Ledger to use, "auto" for the first one found
	HardwareDevicePath string
	EnableBroadcast    bool
	ShutdownTimeout    time.Duration
}

// Chain describes one network the signer builds payloads for
type Chain struct {
	Name             string   `mapstructure:"name"`
	Type             string   `mapstructure:"type"`
	RPCURL           string   `mapstructure:"rpc_url"`
	SS58Prefix       uint16   `mapstructure:"ss58_prefix"`
	SignedExtensions []string `mapstructure:"signed_extensions"`
}

type I18n struct {
	DefaultLanguage language.Tag
	BundleDirAbs    string
}

type Metrics struct {
	Enabled   bool
	Namespace string
}

type Server struct {
	Echo       EchoServer
	Logger     LoggerServer
	Management Management
	Keystore   Keystore
	Signing    Signing
	Chains     []Chain
	I18n       I18n
	Metrics    Metrics
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_echo_listen_address", ":8080")
	v.SetDefault("server_echo_enable_cors_middleware", true)
	v.SetDefault("server_echo_enable_recover_middleware", true)
	v.SetDefault("server_echo_enable_request_id_middleware", true)
	v.SetDefault("server_echo_enable_trailing_slash_middleware", true)
	v.SetDefault("server_echo_enable_logger_middleware", true)
	v.SetDefault("server_echo_enable_body_limit_middleware", true)
	v.SetDefault("server_echo_body_limit", "1M")
	v.SetDefault("server_echo_enable_secure_middleware", true)
	v.SetDefault("server_echo_secure_middleware_content_nosniff", true)
	v.SetDefault("logger_level", zerolog.DebugLevel.String())
	v.SetDefault("logger_request_level", zerolog.DebugLevel.String())
	v.SetDefault("management_readiness_timeout", 4*time.Second)
	v.SetDefault("keystore_directory", "./keystore")
	//nolint:mnd // keystore v3 scrypt defaults
	v.SetDefault("keystore_scrypt_n", 262144)
	v.SetDefault("keystore_scrypt_p", 1)
	//nolint:mnd // generic substrate prefix
	v.SetDefault("keystore_ss58_prefix", 42)
	v.SetDefault("signing_shutdown_timeout", 10*time.Second)
	v.SetDefault("i18n_default_language", language.English.String())
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_namespace", "signer")

	return v
}

func parseLanguage(raw string, fallback language.Tag) language.Tag {
	tag, err := language.Parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("language", raw).Msg("Invalid default language, falling back")
		return fallback
	}

	return tag
}

func parseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		log.Warn().Err(err).Str("level", raw).Msg("Invalid log level, falling back")
		return fallback
	}

	return level
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment
// variables (prefixed SIGNER_) and their defaults. Chains come from the optional
// config file named by SIGNER_CONFIG_FILE.
func DefaultServiceConfigFromEnv() Server {
	DotEnvTryLoad(".env.local")

	v := newViper()

	var chains []Chain
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			log.Error().Err(err).Str("file", file).Msg("Failed to read config file")
		} else if err := v.UnmarshalKey("chains", &chains); err != nil {
			log.Error().Err(err).Str("file", file).Msg("Failed to parse chains")
		}
	}

	return Server{
		Echo: EchoServer{
			Debug:                          v.GetBool("server_echo_debug"),
			ListenAddress:                  v.GetString("server_echo_listen_address"),
			EnableCORSMiddleware:           v.GetBool("server_echo_enable_cors_middleware"),
			EnableRecoverMiddleware:        v.GetBool("server_echo_enable_recover_middleware"),
			EnableRequestIDMiddleware:      v.GetBool("server_echo_enable_request_id_middleware"),
			EnableTrailingSlashMiddleware:  v.GetBool("server_echo_enable_trailing_slash_middleware"),
			EnableLoggerMiddleware:         v.GetBool("server_echo_enable_logger_middleware"),
			EnableBodyLimitMiddleware:      v.GetBool("server_echo_enable_body_limit_middleware"),
			BodyLimit:                      v.GetString("server_echo_body_limit"),
			EnableSecureMiddleware:         v.GetBool("server_echo_enable_secure_middleware"),
			SecureMiddlewareContentNoSniff: v.GetBool("server_echo_secure_middleware_content_nosniff"),
		},
		Logger: LoggerServer{
			Level:              parseLevel(v.GetString("logger_level"), zerolog.DebugLevel),
			RequestLevel:       parseLevel(v.GetString("logger_request_level"), zerolog.DebugLevel),
			LogRequestBody:     v.GetBool("logger_log_request_body"),
			LogResponseBody:    v.GetBool("logger_log_response_body"),
			PrettyPrintConsole: v.GetBool("logger_pretty_print_console"),
		},
		Management: Management{
			ReadinessTimeout: v.GetDuration("management_readiness_timeout"),
		},
		Keystore: Keystore{
			Directory:  v.GetString("keystore_directory"),
			ScryptN:    v.GetInt("keystore_scrypt_n"),
			ScryptP:    v.GetInt("keystore_scrypt_p"),
			SS58Prefix: v.GetUint16("keystore_ss58_prefix"),
		},
		Signing: Signing{
			HardwareDevicePath: v.GetString("signing_hardware_device_path"),
			EnableBroadcast:    v.GetBool("signing_enable_broadcast"),
			ShutdownTimeout:    v.GetDuration("signing_shutdown_timeout"),
		},
		Chains: chains,
		I18n: I18n{
			DefaultLanguage: parseLanguage(v.GetString("i18n_default_language"), language.English),
			BundleDirAbs:    v.GetString("i18n_bundle_dir_abs"),
		},
		Metrics: Metrics{
			Enabled:   v.GetBool("metrics_enabled"),
			Namespace: v.GetString("metrics_namespace"),
		},
	}
}
