// cmd/seeder/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/DevidBilalov/CRMshit/internal/db"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CRM_DB_PATH")
	if path == "" {
		path = "customers.db"
	}

	conn, err := db.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open database:", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.EnsureSchema(conn); err != nil {
		fmt.Fprintln(os.Stderr, "failed to create schema:", err)
		os.Exit(1)
	}
	if err := db.EnsureCreatedAtColumn(conn); err != nil {
		fmt.Fprintln(os.Stderr, "failed to migrate schema:", err)
		os.Exit(1)
	}

	seedFiles := []string{
		"seed/customers.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", file, err)
			os.Exit(1)
		}

		if _, err := conn.Exec(string(content)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to execute %s: %v\n", file, err)
			os.Exit(1)
		}
		fmt.Printf("Seeded: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
