package config

const (
	// Discovery Defaults
	DefaultDiscoveryTimeoutSecs = 10
	DefaultDiscoveryUserAgent   = "devtargets/1.0"
	DefaultDiscoveryEnableHTTP2 = true

	// Frontend Defaults
	DefaultFrontendEntry      = "rn_fusebox.html"
	DefaultFrontendAssetsDir  = "third-party/front_end"
	DefaultFrontendHostedPath = "/debugger-frontend"

	// Storage Defaults
	DefaultStorageDatabasePath     = "database/devtargets.db"
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// ConfigPathEnv overrides the config file location.
	ConfigPathEnv = "DEVTARGETS_CONFIG_PATH"
)

// DefaultDiscoveryScanPorts are the ports Metro and Expo dev servers usually listen on.
var DefaultDiscoveryScanPorts = []int{8081, 8082, 19000, 19001}
