package main

import "github.com/cmlabs-hris/worklog-backend-go/internal/cli"

func main() {
	cli.Execute()
}
