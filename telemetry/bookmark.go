package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStall      BookmarkType = "stall"
	BookmarkSurge      BookmarkType = "surge"
	BookmarkSaturated  BookmarkType = "fields_saturated"
	BookmarkSteadyFlow BookmarkType = "steady_flow"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       uint64       `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the flow.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	saturated          bool // fields were at capacity last window
	steadyWindowsCount int  // consecutive windows with stable mean speed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady flow detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Stall: mean speed under a quarter of the rolling average
		if b := bd.checkStall(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Surge: mean speed over twice the rolling average
		if b := bd.checkSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Steady flow: low speed variance over 5+ windows
		if b := bd.checkSteadyFlow(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Saturation triggers on the transition to a full set
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) avgSpeed() (float64, int) {
	history := bd.getHistory()
	var total float64
	for _, h := range history {
		total += h.SpeedMean
	}
	if len(history) == 0 {
		return 0, 0
	}
	return total / float64(len(history)), len(history)
}

func (bd *BookmarkDetector) checkStall(stats WindowStats) *Bookmark {
	avg, n := bd.avgSpeed()
	if n < 3 || avg == 0 {
		return nil
	}

	if stats.SpeedMean < avg*0.25 {
		return &Bookmark{
			Type:        BookmarkStall,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Mean speed %.3f fell below a quarter of average (%.3f)", stats.SpeedMean, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSurge(stats WindowStats) *Bookmark {
	avg, n := bd.avgSpeed()
	if n < 3 || avg == 0 {
		return nil
	}

	if stats.SpeedMean > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkSurge,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Mean speed %.3f is %.1fx average (%.3f)", stats.SpeedMean, stats.SpeedMean/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	full := stats.FieldCapacity > 0 && stats.Fields >= stats.FieldCapacity
	wasFull := bd.saturated
	bd.saturated = full

	if full && !wasFull {
		return &Bookmark{
			Type:        BookmarkSaturated,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Force field set full (%d/%d)", stats.Fields, stats.FieldCapacity),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSteadyFlow(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 4 || stats.SpeedMean == 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.SpeedMean
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.SpeedMean - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.0025 means CV < 5%
	if mean > 0 && variance/(mean*mean) < 0.0025 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyFlow,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Flow steady at mean speed %.3f over 5+ windows", stats.SpeedMean),
		}
	}

	return nil
}
