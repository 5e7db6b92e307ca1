// File: utils/constants.go
package utils

import "time"

// SnapshotCachePrefix is the prefix used for Redis booking snapshot keys.
const SnapshotCachePrefix = "snapshot:"

// PrefsCachePrefix is the prefix used for Redis dashboard preference keys.
const PrefsCachePrefix = "prefs:"

// SnapshotTTL is the time-to-live for cached booking snapshots.
const SnapshotTTL = 30 * time.Minute
