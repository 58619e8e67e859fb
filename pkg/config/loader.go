package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	cache  = map[reflect.Type]any{}
	dotenv sync.Once
)

// LoadEnv reads the given .env files into the process environment. Values
// already set in the environment win. Without arguments it reads ./.env and
// ignores its absence.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		dotenv.Do(func() { _ = godotenv.Load() })
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses the environment into a T using its env tags. Each type is parsed
// once per process; later calls return the cached value.
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[ServerConfig]()
func Load[T any]() (T, error) {
	_ = LoadEnv()

	key := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()
	if v, ok := cache[key]; ok {
		return v.(T), nil
	}

	v, err := env.ParseAs[T]()
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	cache[key] = v
	return v, nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any]() T {
	v, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %s: %v", reflect.TypeFor[T](), err))
	}
	return v
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
