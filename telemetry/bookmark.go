package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkKillBurst   BookmarkType = "kill_burst"
	BookmarkPreyCrash   BookmarkType = "prey_crash"
	BookmarkFlockSplit  BookmarkType = "flock_split"
	BookmarkConsensus   BookmarkType = "consensus"
	BookmarkQuietPeriod BookmarkType = "quiet_period"
)

// consensusLevel is the polarization above which the flock counts as aligned.
const consensusLevel = 0.9

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int          `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPreyPeak   int     // peak prey count in recent history
	quietWindows     int     // consecutive windows without kills while predators live
	lastPolarization float64
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for quiet period detection
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
		checks := []func(WindowStats) *Bookmark{
			bd.checkKillBurst,
			bd.checkPreyCrash,
			bd.checkFlockSplit,
			bd.checkConsensus,
			bd.checkQuietPeriod,
		}
		for _, check := range checks {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	bd.lastPolarization = stats.Polarization
	if stats.PreyCount > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.PreyCount
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

func (bd *BookmarkDetector) checkKillBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.KillRate
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.KillRate > avg*2.0 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkKillBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kill rate %.2f/s is %.1fx average (%.2f/s)", stats.KillRate, stats.KillRate/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats WindowStats) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.PreyCount)/float64(bd.recentPreyPeak)
	if dropPercent > 0.30 && stats.PreyCount < bd.recentPreyPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.PreyCount

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Prey crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.PreyCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFlockSplit(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Groups
	}
	avg := float64(total) / float64(len(history))

	if stats.Groups >= 3 && float64(stats.Groups) >= avg+2 {
		return &Bookmark{
			Type:        BookmarkFlockSplit,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Prey split into %d groups (average %.1f)", stats.Groups, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkConsensus(stats WindowStats) *Bookmark {
	if bd.lastPolarization < consensusLevel && stats.Polarization >= consensusLevel && stats.PreyCount >= 10 {
		return &Bookmark{
			Type:        BookmarkConsensus,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Prey aligned: polarization %.2f", stats.Polarization),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkQuietPeriod(stats WindowStats) *Bookmark {
	if stats.PredCount == 0 || stats.PreyCount == 0 || stats.Kills > 0 {
		bd.quietWindows = 0
		return nil
	}

	bd.quietWindows++
	if bd.quietWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkQuietPeriod,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No kills for 5 windows with %d prey, %d predators", stats.PreyCount, stats.PredCount),
		}
	}

	return nil
}
