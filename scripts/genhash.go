// genhash prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
//
//	go run ./scripts <password>
//	ADMIN_PASSWORD=... go run ./scripts
package main

import (
	"fmt"
	"os"

	"linire-backend/pkg/auth"
)

func main() {
	password := os.Getenv("ADMIN_PASSWORD")
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	if len(password) < 12 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>  (at least 12 characters)")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
}
