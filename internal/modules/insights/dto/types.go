package dto

import "time"

type StatsOutput struct {
	Total          int
	Completed      int
	CompletionRate float64
	ThisWeek       int
	ThisMonth      int
	AverageHours   float64
	AverageLabel   string
	CurrentStreak  int
}

type HistoryInput struct {
	Range  string
	Status string
}

type RecordOutput struct {
	ID            string
	Protocol      string
	Start         time.Time
	TargetHours   float64
	ActualHours   float64
	Completed     bool
	DurationLabel string
}

type DayOutput struct {
	Date   time.Time
	Status string
	Fasts  int
}

type MonthOutput struct {
	Year           int
	Month          time.Month
	Days           []DayOutput
	Total          int
	Completed      int
	CompletionRate float64
	FastingDays    int
}
