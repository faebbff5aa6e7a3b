// internal/model/core/log.go
package core

import "sort"

// LogType enumerates simulation log entry categories.
type LogType string

const (
	LogWeaponLaunched   LogType = "WEAPON_LAUNCHED"
	LogWeaponHit        LogType = "WEAPON_HIT"
	LogWeaponMissed     LogType = "WEAPON_MISSED"
	LogWeaponExpended   LogType = "WEAPON_EXPENDED"
	LogWeaponCrashed    LogType = "WEAPON_CRASHED"
	LogOrdnanceDepleted LogType = "ORDNANCE_DEPLETED"
	LogStrikeSuccess    LogType = "STRIKE_MISSION_SUCCESS"
	LogStrikeAborted    LogType = "STRIKE_MISSION_ABORTED"
	LogRTB              LogType = "RTB"
	LogAircraftCrashed  LogType = "AIRCRAFT_CRASHED"
	LogTargetDestroyed  LogType = "TARGET_DESTROYED"
	LogOther            LogType = "OTHER"
)

// LogEntry is one append-only simulation log record.
type LogEntry struct {
	ID        uint    `json:"id"`
	Timestamp int64   `json:"timestamp"` // epoch seconds of scenario time
	Type      LogType `json:"type"`
	SideID    string  `json:"sideId"`
	Message   string  `json:"message"`
}

// SortLogEntries returns a copy of entries ordered by timestamp, breaking
// ties by entry ID so the emission order within a tick is preserved. The
// input slice is never mutated.
func SortLogEntries(entries []LogEntry, descending bool) []LogEntry {
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			if descending {
				return out[i].Timestamp > out[j].Timestamp
			}
			return out[i].Timestamp < out[j].Timestamp
		}
		if descending {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FilterLogEntries returns the entries matching the given side and/or type.
// Empty side or type matches everything.
func FilterLogEntries(entries []LogEntry, sideID string, logType LogType) []LogEntry {
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if sideID != "" && e.SideID != sideID {
			continue
		}
		if logType != "" && e.Type != logType {
			continue
		}
		out = append(out, e)
	}
	return out
}
