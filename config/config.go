package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("TP_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("TP_DEBUG") == "true"
}

func GetListen() string {
	return os.Getenv("TP_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("TP_PORT"))
	if err != nil || port <= 0 {
		return 8080
	}
	return port
}

func GetBasePath() string {
	basePath := os.Getenv("TP_BASE_PATH")
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

func GetCertFile() string {
	return os.Getenv("TP_CERT_FILE")
}

func GetKeyFile() string {
	return os.Getenv("TP_KEY_FILE")
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("TP_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/taskpanel"
	}
	return dbFolderPath
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("TP_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetSessionMaxAge returns the panel session lifetime in minutes.
func GetSessionMaxAge() int {
	maxAge, err := strconv.Atoi(os.Getenv("TP_SESSION_MAX_AGE"))
	if err != nil || maxAge <= 0 {
		return 60
	}
	return maxAge
}
