package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pocketchat/config"
	"pocketchat/internal/domain"
	"pocketchat/pkg/database"
)

func main() {
	action := flag.String("action", "up", "migration action: up | status")
	flag.Parse()

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch *action {
	case "up":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations applied")
	case "status":
		models := map[string]interface{}{
			"users":             &domain.User{},
			"chats":             &domain.Chat{},
			"chat_participants": &domain.ChatParticipant{},
			"messages":          &domain.Message{},
			"media":             &domain.Media{},
		}
		for table, model := range models {
			state := "missing"
			if db.Migrator().HasTable(model) {
				state = "present"
			}
			fmt.Printf("%-20s %s\n", table, state)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q\n", *action)
		os.Exit(1)
	}
}
