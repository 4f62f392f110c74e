package util

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var env = newEnv()

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// GetEnv returns the value of the env var key or defaultVal if it is unset.
func GetEnv(key string, defaultVal string) string {
	if !env.IsSet(key) {
		return defaultVal
	}
	return env.GetString(key)
}

func GetEnvAsInt(key string, defaultVal int) int {
	if !env.IsSet(key) {
		return defaultVal
	}
	return env.GetInt(key)
}

func GetEnvAsUint8(key string, defaultVal uint8) uint8 {
	if !env.IsSet(key) {
		return defaultVal
	}
	return uint8(env.GetUint(key))
}

func GetEnvAsFloat(key string, defaultVal float64) float64 {
	if !env.IsSet(key) {
		return defaultVal
	}
	return env.GetFloat64(key)
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	if !env.IsSet(key) {
		return defaultVal
	}
	return env.GetBool(key)
}

// GetEnvAsDuration accepts Go duration strings ("30m", "5s").
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if !env.IsSet(key) {
		return defaultVal
	}
	return env.GetDuration(key)
}

// GetEnvAsStringArr splits a comma separated env var, trimming whitespace.
func GetEnvAsStringArr(key string, defaultVal []string) []string {
	if !env.IsSet(key) {
		return defaultVal
	}

	raw := env.GetString(key)
	if raw == "" {
		return defaultVal
	}

	parts := strings.Split(raw, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func GetEnvAsLogLevel(key string, defaultVal zerolog.Level) zerolog.Level {
	if !env.IsSet(key) {
		return defaultVal
	}

	level, err := zerolog.ParseLevel(env.GetString(key))
	if err != nil {
		return defaultVal
	}
	return level
}

// RunningInTest is true for binaries built by `go test`.
func RunningInTest() bool {
	return strings.HasSuffix(osArgs0(), ".test") || strings.Contains(osArgs0(), "/_test/")
}
