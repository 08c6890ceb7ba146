// Package storage provides implementations of network.Store.
//
//   - [FileStore] keeps the state in a JSON file (the CLI default).
//   - [MongoStore] keeps it as a single MongoDB document.
//   - [MemoryStore] keeps it in memory, for tests and the ephemeral server.
//
// All stores hold one state document under the key [StateKey]. Load returns
// network.ErrNoState until something has been saved.
package storage

// StateKey names the persisted state: the file stem of FileStore and the
// document id of MongoStore.
const StateKey = "rose-networks"
