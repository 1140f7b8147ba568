package dto

import "time"

type SessionOutput struct {
	ID            string
	Protocol      string
	StartTime     time.Time
	EndTime       *time.Time
	TargetHours   float64
	ActualHours   *float64
	Completed     bool
	ManuallyAdded bool
	InProgress    bool
}

type ProgressOutput struct {
	Elapsed   time.Duration
	Remaining time.Duration
	Percent   float64
}

type StatusOutput struct {
	State      string
	Protocol   string
	Active     *SessionOutput
	Progress   ProgressOutput
	Hydrated   bool
	Identified bool
	// Notice carries a one-off message such as a resumed fast.
	Notice string
	// Finished is set when this call observed natural completion.
	Finished *SessionOutput
}

type StopOutput struct {
	Session     SessionOutput
	JournalPath string
}

type ManualInput struct {
	Protocol string
	// StartText is parsed as natural language when Start is zero.
	StartText   string
	Start       time.Time
	Completed   bool
	ActualHours *float64
	Duration    string
}

type MigrateOutput struct {
	Migrated int
	Failed   int
}

type SyncOutput struct {
	SessionID string
	RemoteID  string
}

type ExportOutput struct {
	Paths []string
}
