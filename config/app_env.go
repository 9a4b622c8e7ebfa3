package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/utils"
)

const AppEnvKey = "APP_ENV"

var developmentEnvs = map[string]bool{
	"":            true,
	"dev":         true,
	"development": true,
	"local":       true,
	"test":        true,
	"testing":     true,
}

// InitializeEnvFile loads ENV_FILE (comma separated) or ./.env. Variables
// already present in the process environment win.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	files := envFiles(os.Getenv("ENV_FILE"))
	if err := godotenv.Load(files...); err != nil {
		logger.Warn("No .env file loaded", "files", files, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded from file", "files", files)
}

func envFiles(raw string) []string {
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return []string{".env"}
	}
	return files
}

func GetAppEnv() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(AppEnvKey)))
}

func IsDevelopmentEnv(appEnv string) bool {
	return developmentEnvs[strings.ToLower(strings.TrimSpace(appEnv))]
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	if IsDevelopmentEnv(appEnv) {
		return nil
	}
	return fmt.Errorf("--auto-migrate is not allowed when %s=%q; run `cli migrate` instead", AppEnvKey, strings.TrimSpace(appEnv))
}
