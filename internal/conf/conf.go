package conf

import "time"

// Bootstrap is the root configuration scanned from the config file.
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
}

// Server holds transport configuration.
type Server struct {
	HTTP HTTPServer `json:"http"`
}

// HTTPServer configures the HTTP transport.
type HTTPServer struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Data holds storage and messaging configuration.
type Data struct {
	Database Database `json:"database"`
	Redis    Redis    `json:"redis"`
	Kafka    Kafka    `json:"kafka"`
}

// Database selects the repository adapter. Driver is "memory" or "postgres";
// Source is the postgres DSN and is ignored for the memory driver.
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Redis configures the optional read cache for the postgres adapter.
type Redis struct {
	Addr         string `json:"addr"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

// Kafka configures the catalog event publisher. Empty brokers disable it.
type Kafka struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

// Duration parses s as a time.Duration, falling back to def when s is empty
// or malformed.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
