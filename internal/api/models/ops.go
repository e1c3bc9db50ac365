package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Cache     CacheStatus      `json:"cache"`
	Warmer    *WarmerStatus    `json:"warmer,omitempty"`
	Providers []ProviderStatus `json:"providers"`
}

// CacheStatus describes the readings snapshot cache.
type CacheStatus struct {
	HasData   bool       `json:"hasData"`
	FetchedAt *Timestamp `json:"fetchedAt,omitempty"`
	ExpiresAt *Timestamp `json:"expiresAt,omitempty"`
	IsExpired bool       `json:"isExpired"`
	RowCount  int        `json:"rowCount"`
	Source    string     `json:"source,omitempty"`
}

// ProviderStatus represents the status of a backing data source.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}

// WarmerStatus describes the background cache warmer.
type WarmerStatus struct {
	Enabled        bool       `json:"enabled"`
	Runs           int64      `json:"runs"`
	Reloads        int64      `json:"reloads"`
	Failures       int64      `json:"failures"`
	LastRunAt      *Timestamp `json:"lastRunAt,omitempty"`
	LastDurationMs int64      `json:"lastDurationMs"`
	LastRowCount   int        `json:"lastRowCount"`
	LastError      *string    `json:"lastError,omitempty"`
}
