package models

import (
	"strconv"
	"time"
)

// CategoryThreshold is the magnitude at and above which an event counts as High.
const CategoryThreshold = 5

// Category is the binary classification of a resolved event.
type Category int

const (
	CategoryLow Category = iota
	CategoryHigh
)

// CategoryFromMagnitude derives the category from a raw magnitude.
func CategoryFromMagnitude(n int) Category {
	if n >= CategoryThreshold {
		return CategoryHigh
	}
	return CategoryLow
}

// Opposite returns the other category.
func (c Category) Opposite() Category {
	if c == CategoryHigh {
		return CategoryLow
	}
	return CategoryHigh
}

func (c Category) String() string {
	if c == CategoryHigh {
		return "High"
	}
	return "Low"
}

// ParseCategory maps a stored label back to a Category.
func ParseCategory(s string) Category {
	if s == "High" {
		return CategoryHigh
	}
	return CategoryLow
}

// MarshalJSON emits the human-readable label; the enum never leaves the
// process as a bare integer.
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// Outcome describes how a single observation resolved against the pending
// prediction.
type Outcome int

const (
	// OutcomeFirstObservation marks the very first event of an epoch, when
	// there was no pending prediction to score.
	OutcomeFirstObservation Outcome = iota
	OutcomeWin
	OutcomeLoss
	// OutcomeUnchanged marks a repeat poll whose head event was already
	// scored; nothing was mutated.
	OutcomeUnchanged
	// OutcomeNoData marks an empty window from the feed.
	OutcomeNoData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "Win"
	case OutcomeLoss:
		return "Loss"
	case OutcomeUnchanged:
		return "Unchanged"
	case OutcomeNoData:
		return "NoData"
	default:
		return "FirstObservation"
	}
}

// Label is the dashboard-facing decoration of the outcome.
func (o Outcome) Label() string {
	switch o {
	case OutcomeWin:
		return "WIN ✅"
	case OutcomeLoss:
		return "LOSS ❌"
	case OutcomeUnchanged:
		return "Unchanged"
	case OutcomeNoData:
		return "No Data"
	default:
		return "First Run"
	}
}

// ParseOutcome maps a stored label back to an Outcome.
func ParseOutcome(s string) Outcome {
	switch s {
	case "Win":
		return OutcomeWin
	case "Loss":
		return OutcomeLoss
	case "Unchanged":
		return OutcomeUnchanged
	case "NoData":
		return OutcomeNoData
	default:
		return OutcomeFirstObservation
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(o.Label())), nil
}

// ResolvedEvent is one observed outcome from the feed. The ID is an opaque
// ordering/identity token issued by the feed; it is only ever compared as a
// string. Immutable once constructed.
type ResolvedEvent struct {
	ID        string   `json:"issue"`
	Magnitude int      `json:"number"`
	Category  Category `json:"result"`
	ColorTag  string   `json:"color"`
}

// DisplayID is the shortened issue shown on the dashboard (the feed's issue
// numbers share a long common prefix, only the tail is interesting).
func (e ResolvedEvent) DisplayID() string {
	if len(e.ID) <= 5 {
		return e.ID
	}
	return e.ID[len(e.ID)-5:]
}

// NextIDHint is a best-effort guess at the id of the next event, for display
// only. Returns empty when the id is not numeric.
func (e ResolvedEvent) NextIDHint() string {
	n, err := strconv.ParseUint(e.ID, 10, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(n+1, 10)
}

// PredictionRecord is one persisted audit row: the event that just resolved
// together with the prediction issued for the event after it. Append-only;
// rows are only ever removed in bulk by an archival reset.
type PredictionRecord struct {
	EventID         string    `json:"event_id"`
	Magnitude       int       `json:"magnitude"`
	Category        Category  `json:"category"`
	ColorTag        string    `json:"color_tag"`
	PredictionLabel string    `json:"prediction_label"`
	StrategyLabel   string    `json:"strategy_label"`
	Outcome         Outcome   `json:"outcome"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// ObservationResult is the full payload the engine hands outward per poll.
type ObservationResult struct {
	EventID    string   `json:"issue_full,omitempty"`
	Issue      string   `json:"issue"`
	NextIssue  string   `json:"next_issue,omitempty"`
	Magnitude  int      `json:"number"`
	Category   Category `json:"result"`
	ColorTag   string   `json:"color"`
	Outcome    Outcome  `json:"outcome"`
	Prediction Category `json:"prediction"`
	Strategy   string   `json:"strategy"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	Total      int      `json:"total"`
	Accuracy   float64  `json:"accuracy"`
	LossStreak int      `json:"loss_streak"`
	Hot        []int    `json:"hot"`
	Cold       []int    `json:"cold"`
	NoData     bool     `json:"no_data,omitempty"`
}

// ArchiveHandle identifies one frozen epoch export.
type ArchiveHandle struct {
	ID          string    `json:"id"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}
