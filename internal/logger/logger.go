package logger

import (
	"fmt"
	"time"
)

// ANSI color codes for terminal output.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func logLine(color, level, tag, msg string) {
	fmt.Printf("%s%s%s %s%-5s%s %s[%s]%s %s\n",
		dim, timestamp(), reset,
		color, level, reset,
		bold, tag, reset,
		msg)
}

// Info logs an informational message with a component tag.
func Info(tag, msg string) {
	logLine(cyan, "INFO", tag, msg)
}

// Success logs a success message.
func Success(tag, msg string) {
	logLine(green, "OK", tag, msg)
}

// Warn logs a warning.
func Warn(tag, msg string) {
	logLine(yellow, "WARN", tag, msg)
}

// Error logs an error.
func Error(tag, msg string) {
	logLine(red, "ERROR", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s", bold, cyan)
	fmt.Println(`  ___   __   ____   __    __   ____    ____  __    __  ____  ____  ____  ____`)
	fmt.Println(` (  _ \ / _\ (_   ) / _\  / _\ (  _ \  (  __// )   (  )(  _ \(  _ \(  __)(  _ \`)
	fmt.Println(`  ) _ (/    \ / _/ /    \/    \ )   /   ) _) / (_/\ )(  ) __/ ) __/ ) _)  )   /`)
	fmt.Println(` (____/\_/\_/(____)\_/\_/\_/\_/(__\_)  (__)  \____/(__)(__)  (__)  (____)(__\_)`)
	fmt.Printf("%s\n", reset)
	fmt.Printf("  %sbazaar-flipper %s%s\n\n", dim, version, reset)
}

// Section prints a visual section divider.
func Section(title string) {
	fmt.Printf("\n%s── %s %s%s\n", bold, title, "──────────────────────────────", reset)
}

// Stats prints a key/value stat line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s%-24s%s %v\n", dim, key, reset, value)
}

// Server logs the address the HTTP server is listening on.
func Server(addr string) {
	logLine(green, "HTTP", "Server", fmt.Sprintf("Listening on http://%s", addr))
}
