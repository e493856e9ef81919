package config

const (
	defaultConfigPath       = "~/.config/hitqueue/config.toml"
	projectConfigName       = "hitqueue.toml"
	defaultDataDir          = "~/.local/share/hitqueue"
	defaultLogDir           = "~/.local/share/hitqueue/logs"
	defaultSocketPath       = "~/.local/share/hitqueue/hitqueue.sock"
	defaultAPIBind          = "127.0.0.1:7491"
	defaultQueueName        = "hits"
	defaultTimeoutSeconds   = 10
	defaultContentType      = "application/json"
	defaultRetryBaseSeconds = 30
	defaultRetryMaxSeconds  = 30
	defaultPrivacyStatus    = "unknown"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	endpointEnvVar          = "HITQUEUE_ENDPOINT"
	apiTokenEnvVar          = "HITQUEUE_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
			APIBind:    defaultAPIBind,
		},
		Queue: Queue{
			Name: defaultQueueName,
		},
		Delivery: Delivery{
			TimeoutSeconds:   defaultTimeoutSeconds,
			ContentType:      defaultContentType,
			RetryBaseSeconds: defaultRetryBaseSeconds,
			RetryMaxSeconds:  defaultRetryMaxSeconds,
		},
		Privacy: Privacy{
			DefaultStatus: defaultPrivacyStatus,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}
