package config

import (
	"os"
	"strconv"
	"time"

	"quizroyale/internal/game"
)

// Config holds the server's environment-driven settings.
type Config struct {
	HTTPPort      string
	MongoURI      string
	QuestionsFile string
	Game          game.Settings
}

// Load reads configuration from the environment, falling back to the
// default game tuning.
func Load() *Config {
	g := game.DefaultSettings()
	g.SelectingWindow = getEnvDuration("SELECTING_WINDOW", g.SelectingWindow)
	g.ExcuseWindow = getEnvDuration("EXCUSE_WINDOW", g.ExcuseWindow)
	g.DisconnectGrace = getEnvDuration("DISCONNECT_GRACE", g.DisconnectGrace)
	g.MaxPlayers = getEnvInt("MAX_PLAYERS", g.MaxPlayers)
	g.JoinPolicy = game.JoinPolicy(getEnv("JOIN_POLICY", string(g.JoinPolicy)))
	g.RescueEnabled = getEnvBool("RESCUE_ENABLED", g.RescueEnabled)

	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", ""),
		QuestionsFile: getEnv("QUESTIONS_FILE", "questions.json"),
		Game:          g,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
