package config

import (
	"github.com/pitabwire/frame/config"
)

// ServiceConfig holds configuration for the voicebridge service.
type ServiceConfig struct {
	config.ConfigurationDefault
	TranscriptionURL string `envDefault:"https://translation-api.ghananlp.org/asr/v1/transcribe" env:"TRANSCRIPTION_URL"`
	TranslationURL   string `envDefault:"https://translation-api.ghananlp.org/tts/v1/synthesize" env:"TRANSLATION_URL"`
	GhanaNLPAPIKey   string `envDefault:""              env:"GHANA_NLP_API_KEY"`
	LanguageDir      string `envDefault:"./languages"   env:"LANGUAGE_DIR"`
	AudioCacheDir    string `envDefault:"./audio-cache" env:"AUDIO_CACHE_DIR"`
	NotifyMaxEntries int    `envDefault:"200"           env:"NOTIFY_MAX_ENTRIES"`
}
