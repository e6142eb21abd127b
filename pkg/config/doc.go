// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with caarlos0/env tags. Load parses each
// type once and caches it, and reads a .env file from the working directory
// on first use when one exists:
//
//	var app config.App
//	config.MustLoad(&app)
//	if err := app.Validate(); err != nil {
//		log.Fatal(err)
//	}
package config
