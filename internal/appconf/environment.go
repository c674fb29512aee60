package appconf

import "strings"

// Environment is the deployment the process runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

var environmentNames = map[Environment]string{
	Development: "development",
	Test:        "test",
	Production:  "production",
}

func (e Environment) String() string {
	if name, ok := environmentNames[e]; ok {
		return name
	}
	return "unknown"
}

// EnvFlagToEnvironment maps a flag or config value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}
