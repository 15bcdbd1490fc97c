package main

import (
	"os"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
