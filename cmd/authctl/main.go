// Package main is the administration CLI of the auth service.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
