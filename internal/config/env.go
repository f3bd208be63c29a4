package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Settings holds the connection parameters for the remote vector store.
// They come from the environment (optionally via a .env file) because they
// carry credentials; everything else is flags and constants.
type Settings struct {
	WeaviateURL       string
	WeaviateAPIKey    string
	OpenAIAPIKeyEmbed string
	Collection        string
}

// LoadSettings reads a .env file if present, then the environment.
// Validation of required fields happens at connect time, the CSV path
// never needs them.
func LoadSettings() Settings {
	_ = godotenv.Load()

	return Settings{
		WeaviateURL:       getEnv("WEAVIATE_URL", ""),
		WeaviateAPIKey:    getEnv("WEAVIATE_API_KEY", ""),
		OpenAIAPIKeyEmbed: getEnv("OPENAI_API_KEY_EMBED", ""),
		Collection:        getEnv("COLLECTION_NAME", DefaultCollectionName),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
