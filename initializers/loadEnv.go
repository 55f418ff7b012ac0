package initializers

import (
	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/joho/godotenv"
)

// LoadEnv loads .env into the process environment. A missing file is fine in
// deployed environments where variables come from the orchestrator.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded")
	}
}
