package audit

// Entry is one line in the hash-chained JSONL audit log: the outcome of
// one validation run. All fields are plain values so json.Marshal field
// order is fixed and hashing is reproducible.
type Entry struct {
	Timestamp  string   `json:"ts"`
	RunID      string   `json:"run_id"`
	Source     string   `json:"source"`
	InputHash  string   `json:"input_hash"`
	Compliant  bool     `json:"compliant"`
	Errors     int      `json:"errors"`
	Warnings   int      `json:"warnings"`
	Rules      []string `json:"rules"`
	ConfigHash string   `json:"config_hash"`
	PrevHash   string   `json:"prev_hash"`
}
