// Package config manages the level directory and the tuning profiles.
//
// Levels are XML documents named <id>.xml in a single directory. The
// Manager caches each document's bytes together with a summary, and
// LoadLevel parses a fresh graph on every call so that sessions never share
// goal state. SaveLevel validates a document before writing it.
//
// Tuning profiles come from two places: the built-in standard and lab
// profiles, and an optional YAML file whose entries are decoded over a base
// profile:
//
//	default_level: intro
//	profiles:
//	  - name: slow
//	    base: standard
//	    step: 0.04
//	    run: 0.12
//
// Usage:
//
//	manager, err := config.NewManager("levels", "configs/tuning.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	lvl, err := manager.LoadLevel(manager.DefaultLevel())
package config
