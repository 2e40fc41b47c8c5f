package utils

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DEV_ENV_FILENAME = ".env.development"
const PROD_ENV_FILENAME = ".env"

// InitEnvironmentVariables loads a dotenv file from the working directory
// when one exists. Variables already present in the environment win.
func InitEnvironmentVariables() error {
	if os.Getenv("ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	for _, envFile := range []string{DEV_ENV_FILENAME, PROD_ENV_FILENAME} {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}

		if err := godotenv.Load(envFile); err != nil {
			return err
		}

		log.Infof("Loaded environment variables from %s", envFile)
		return nil
	}

	log.Debug("No dotenv file found, using process environment")
	return nil
}
