package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	smtpHost := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	smtpFrom := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	webhook := strings.TrimSpace(os.Getenv("ALERT_WEBHOOK_URL"))
	allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (tracked checks will 403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will 401).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("ADDR is empty; default bind address will be used.")
	} else {
		ok("ADDR=" + addr)
	}

	switch {
	case db != "" && sqlitePath != "":
		warn("both DATABASE_URL and SQLITE_PATH set — DATABASE_URL wins, SQLITE_PATH ignored.")
	case db != "":
		ok("DATABASE_URL present (postgres store)")
	case sqlitePath != "":
		ok("SQLITE_PATH=" + sqlitePath + " (sqlite store)")
	default:
		warn("no storage configured — in-memory store loses history on restart.")
	}

	if smtpHost == "" && webhook == "" {
		warn("no SMTP_HOST and no ALERT_WEBHOOK_URL — down-alerts are disabled.")
	}
	if smtpHost != "" && smtpFrom == "" {
		fail("SMTP_HOST set but SMTP_FROM empty — email alerts cannot send.")
	}
	if smtpHost != "" {
		ok("SMTP_HOST=" + smtpHost)
	}
	if webhook != "" {
		ok("ALERT_WEBHOOK_URL present")
	}

	if allowed == "" {
		warn("ALLOWED_ORIGINS empty — CORS will allow all origins (dev mode).")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	ok("preflight passed")
}
