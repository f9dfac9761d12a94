package config

// Version is overridden at build time with -ldflags "-X buildplate.dev/plate-api-gateway/config.Version=..."
var Version = "dev"
