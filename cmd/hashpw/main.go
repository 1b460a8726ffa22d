// Command hashpw prints a bcrypt hash for use in the teacher directory file.
//
//	hashpw 's3cret'
//	echo 's3cret' | hashpw
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"mergington-activities/core"
)

func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		log.Fatal("password must not be empty")
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
