package domain

// RetrainLog is one retraining run as recorded by the replacement service.
// The service writes timestamps as ISO-8601 without a zone, so Timestamp
// stays a string and is parsed for display only.
type RetrainLog struct {
	Timestamp  string   `json:"timestamp"`
	MSE        float64  `json:"mse"`
	R2         float64  `json:"r2"`
	NumSamples int      `json:"num_samples"`
	Features   []string `json:"features,omitempty"`
	ModelPath  string   `json:"model_path,omitempty"`
}
