// Package config provides application configuration management from environment variables.
//
// # Overview
//
// Configuration is loaded from ROSTER_* environment variables with sensible
// defaults, optionally overlaid by a YAML file. The rate-limit section can be
// hot-reloaded while the server runs by watching the overlay file.
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// With a YAML overlay and hot reload:
//	cfg, err := config.LoadConfigFile("/etc/rosterd/config.yaml")
//	watcher, err := config.WatchRateLimit("/etc/rosterd/config.yaml", limiter.UpdateConfig)
//	defer watcher.Close()
package config
