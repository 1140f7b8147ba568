package dto

// Row is the wire and table representation of a fasting session.
// Field names are snake_case and timestamps are RFC 3339 strings.
type Row struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id,omitempty"`
	Type           string   `json:"type"`
	StartTime      string   `json:"start_time"`
	EndTime        *string  `json:"end_time"`
	TargetDuration float64  `json:"target_duration"`
	ActualDuration *float64 `json:"actual_duration"`
	Completed      bool     `json:"completed"`
	ManuallyAdded  bool     `json:"manually_added"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

type RowList struct {
	Records []Row `json:"records"`
}
