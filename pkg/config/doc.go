// Package config loads typed configuration from the environment.
//
// Structs describe their variables with caarlos0/env tags; Load parses and
// caches one value per type, reading a local .env file (joho/godotenv) first
// when present.
//
//	type HTTPConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[HTTPConfig]()
//	if err != nil {
//		return err
//	}
//
// Parsing failures wrap ErrParsingConfig and can be detected with errors.Is.
package config
