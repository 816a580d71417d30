// Package session keeps live game sessions in memory and, optionally, on
// disk.
//
// Manager is safe for concurrent use. Session IDs are case-insensitive
// 4-character hex strings unless the caller supplies one. When a
// SessionPersistence is attached, sessions are written on creation and on
// every access update, and a Get for an ID that is only on disk reloads it.
//
// FilePersistence stores one JSON document per session. It records the
// level ID, tuning profile and engine.Progress rather than the node graph;
// Load parses the level again through the service.ConfigManager and replays
// the progress, so edits to a level file take effect on reload.
//
//	manager := session.NewManagerWithPersistence(store)
//	sess, err := manager.Create("", &service.GameSetup{Level: lvl, Tuning: engine.StandardTuning()})
package session
