// Package database provides the SQLite access layer of querystats.
//
// It has three parts:
//   - HistoryDB reads a Firefox profile's places.sqlite and
//     formhistory.sqlite and implements analyzer.Store
//   - Snapshot copies live browser databases aside before they are read
//   - RunDB stores finished reports so earlier runs can be shown again
//
// All databases are opened with modernc.org/sqlite, which needs no CGO.
// Browser databases are only ever read; snapshots are opened read-write
// so SQLite can replay the copied write-ahead log.
package database
