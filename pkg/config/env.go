package config

import (
	"fmt"
	"strings"
)

// Env is the environment a build targets. It only affects analytics tagging.
type Env string

const (
	Development Env = "development"
	Production  Env = "production"
)

func ParseEnv(s string) (Env, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev", "development":
		return Development, nil
	case "prod", "production":
		return Production, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want development or production)", s)
	}
}

// TrackingEnv returns the analytics environment code: "p" in production and
// "t" otherwise.
func (e Env) TrackingEnv() string {
	if e == Production {
		return "p"
	}
	return "t"
}

func (e Env) String() string {
	if e == "" {
		return string(Development)
	}
	return string(e)
}
