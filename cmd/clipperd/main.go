package main

import (
	"context"
	"errors"
	"log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
