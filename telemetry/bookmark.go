package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkContactSurge BookmarkType = "contact_surge"
	BookmarkContactLost  BookmarkType = "contact_lost"
	BookmarkBlinded      BookmarkType = "blinded"
	BookmarkPowerLoss    BookmarkType = "power_loss"
	BookmarkScopeFlood   BookmarkType = "scope_flood"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Session     string       `csv:"session" json:"-"`
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments on the scope.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	contactPeak  int  // most contact hits in a window since the last loss
	wasUnpowered bool // previous window had unpowered ticks
	flooded      bool // scope flood already reported
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
// maxBlips is the registry cap used for flood detection (0 disables it).
func (bd *BookmarkDetector) Check(stats WindowStats, maxBlips int) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Session = stats.Session
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Contact hits > 3x rolling average
		add(bd.checkContactSurge(stats))

		// Every contact dropped off the scope
		add(bd.checkContactLost(stats))

		// Most samples occluded by disruption
		add(bd.checkBlinded(stats))
	}

	// Power loss is meaningful from the first window
	add(bd.checkPowerLoss(stats))
	add(bd.checkScopeFlood(stats, maxBlips))

	bd.addToHistory(stats)
	if stats.ContactHits > bd.contactPeak {
		bd.contactPeak = stats.ContactHits
	}

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

func (bd *BookmarkDetector) checkContactSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.ContactHits
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.ContactHits) > avg*3 && stats.ContactHits >= 5 {
		return &Bookmark{
			Type:        BookmarkContactSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Contact hits %d are %.1fx average (%.1f)", stats.ContactHits, float64(stats.ContactHits)/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkContactLost(stats WindowStats) *Bookmark {
	// Only active pings can lose a contact
	if bd.contactPeak < 3 || stats.Mode != "active" || stats.Pings == 0 {
		return nil
	}
	if stats.ContactHits > 0 {
		return nil
	}

	oldPeak := bd.contactPeak
	bd.contactPeak = 0
	return &Bookmark{
		Type:        BookmarkContactLost,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No contacts returned after a peak of %d hits per window", oldPeak),
	}
}

func (bd *BookmarkDetector) checkBlinded(stats WindowStats) *Bookmark {
	if stats.Samples < 100 {
		return nil
	}

	history := bd.getHistory()
	var prev float64
	for _, h := range history {
		prev += h.OcclusionRate
	}
	prev /= float64(len(history))

	if stats.OcclusionRate > 0.5 && prev < 0.25 {
		return &Bookmark{
			Type:        BookmarkBlinded,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%.0f%% of samples occluded (was %.0f%%)", stats.OcclusionRate*100, prev*100),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPowerLoss(stats WindowStats) *Bookmark {
	unpowered := stats.UnpoweredTicks > 0
	defer func() { bd.wasUnpowered = unpowered }()

	if !unpowered || bd.wasUnpowered {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPowerLoss,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Sonar unpowered for %d ticks", stats.UnpoweredTicks),
	}
}

func (bd *BookmarkDetector) checkScopeFlood(stats WindowStats, maxBlips int) *Bookmark {
	if maxBlips <= 0 {
		return nil
	}
	full := stats.BlipsP90 >= float64(maxBlips)*0.95
	if !full {
		bd.flooded = false
		return nil
	}
	if bd.flooded {
		return nil
	}
	bd.flooded = true
	return &Bookmark{
		Type:        BookmarkScopeFlood,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Blip registry near capacity (p90 %.0f of %d)", stats.BlipsP90, maxBlips),
	}
}
