package core

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NewConsumerID names a rosterlog process as host/pid/instance so log lines
// from several consumers on one queue can be told apart.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s/%d/%s", host, os.Getpid(), uuid.NewString()[:8])
}
