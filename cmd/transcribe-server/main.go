// @title Transcribe Server API
// @version 1.0
// @description Speech recognition and translation over HTTP
// @host localhost:9000
// @BasePath /
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"transcribe-server-go/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [BOOT] starting transcribe-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "transcribe-server failed: %v\n", err)
		os.Exit(1)
	}
}
