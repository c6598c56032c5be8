package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesFile      string
	Port             string
	NewsAPIKey       string
	APIAccessKey     string
	WorkerCount      int
	SyncInterval     int
	CleanupInterval  int
	ReindexInterval  int
	RetentionHours   int
	RotationPoolSize int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
