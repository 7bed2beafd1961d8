// cmd/dinero/main.go
package main

import (
	"dinero/internal/cli"
)

func main() {
	cli.Execute()
}
