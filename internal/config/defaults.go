package config

const (
	defaultDataDir       = "data"
	defaultMetadataDir   = "metadata"
	defaultCollectionDir = "root"
	defaultProgramData   = "/config"
	defaultLogFormat     = "text"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root:          ".",
			DataDir:       defaultDataDir,
			MetadataDir:   defaultMetadataDir,
			CollectionDir: defaultCollectionDir,
		},
		Server: Server{
			ProgramData:   defaultProgramData,
			CaseSensitive: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
