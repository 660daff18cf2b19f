// Package config handles configuration loading for talk-to-anyone.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. Every field except the provider API key has a default, so a
// bare environment (GEMINI_API_KEY set, no file) is a valid setup.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	provider:
//	  api_key: "${GEMINI_API_KEY}"
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8488"
//
// Provider:
//
//	provider:
//	  name: "gemini"          # gemini, openai
//	  api_key: "${GEMINI_API_KEY}"
//	  model: "gemini-2.0-flash"
//	  tts_model: "gemini-2.5-flash-preview-tts"
//
// Voice defaults:
//
//	voice:
//	  enabled: false
//	  auto_play: false
//	  preferred_language: "English (US)"
//
// Logging:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "color"  # color, text, json
package config
