package model

// DiagnosticReport is the payload of GET /test.  It is rebuilt on every call
// from the live database handle and environment.
type DiagnosticReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}
