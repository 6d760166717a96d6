//go:build ignore

// One-off importer for the legacy pi2printer database. Copies missions,
// processed messages, and the check watermark into an inkwell database so
// history survives the switch. Run with:
//
//	go run scripts/import_legacy_db.go -from ~/pi2printer.db -to ~/.inkwell/inkwell.db
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	from := flag.String("from", "", "path to the legacy pi2printer database")
	to := flag.String("to", "", "path to the inkwell database (schema must exist)")
	flag.Parse()

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "both -from and -to are required")
		os.Exit(1)
	}

	src, err := sql.Open("sqlite3", *from)
	if err != nil {
		fatal("open source: %v", err)
	}
	defer src.Close()

	dst, err := sql.Open("sqlite3", *to)
	if err != nil {
		fatal("open destination: %v", err)
	}
	defer dst.Close()

	missions := copyMissions(src, dst)
	processed := copyProcessed(src, dst)
	copyWatermark(src, dst)

	fmt.Printf("imported %d missions, %d processed messages\n", missions, processed)
}

func copyMissions(src, dst *sql.DB) int {
	rows, err := src.Query(`SELECT id, email_id, title, urgency, deadline, action_required, context, people_involved, status, created_at, raw_decision FROM missions`)
	if err != nil {
		fatal("read legacy missions: %v", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var id, title, urgency, status string
		var emailID, deadline, action, context, people, createdAt, raw sql.NullString
		if err := rows.Scan(&id, &emailID, &title, &urgency, &deadline, &action, &context, &people, &status, &createdAt, &raw); err != nil {
			fatal("scan mission: %v", err)
		}
		_, err := dst.Exec(
			`INSERT OR IGNORE INTO missions (id, message_id, title, urgency, deadline, action_required, context, people_involved, status, created_at, raw_decision)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, emailID.String, title, urgency, deadline, action, context, people, status, createdAt, raw)
		if err != nil {
			fatal("insert mission %s: %v", id, err)
		}
		n++
	}
	return n
}

func copyProcessed(src, dst *sql.DB) int {
	rows, err := src.Query(`SELECT email_id, subject, sender, received_at, processed_at, has_task, mission_id FROM processed_emails`)
	if err != nil {
		fatal("read legacy processed emails: %v", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var emailID, subject, sender string
		var receivedAt, processedAt, missionID sql.NullString
		var hasTask bool
		if err := rows.Scan(&emailID, &subject, &sender, &receivedAt, &processedAt, &hasTask, &missionID); err != nil {
			fatal("scan processed email: %v", err)
		}
		_, err := dst.Exec(
			`INSERT OR REPLACE INTO processed_messages (message_id, subject, sender, received_at, processed_at, has_task, mission_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			emailID, subject, sender, receivedAt, processedAt, hasTask, missionID)
		if err != nil {
			fatal("insert processed message %s: %v", emailID, err)
		}
		n++
	}
	return n
}

func copyWatermark(src, dst *sql.DB) {
	var value string
	err := src.QueryRow(`SELECT value FROM system_config WHERE key = 'last_email_check'`).Scan(&value)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		fatal("read legacy watermark: %v", err)
	}
	if _, err := dst.Exec(`INSERT OR REPLACE INTO system_config (key, value) VALUES ('last_mail_check', ?)`, value); err != nil {
		fatal("write watermark: %v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
