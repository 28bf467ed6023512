// Package config loads the settings of an editing session.
//
// Settings are layered with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← ROPECORE_TAB_WIDTH=2
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← settings.toml or settings.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Typical use:
//
//	s, err := config.Load("settings.toml")
//	if err != nil {
//	    return err
//	}
//	s, err = config.FromEnv(s)
//
// Files are decoded strictly: unknown keys are errors, and TOML parse
// errors carry the line and column of the problem.
package config
