package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for MONTAGE_DATA_DIR, MONTAGE_PORT, MONTAGE_PROCESSING_URL.
	godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ls":
		handleLsCommand()
	case "new":
		handleNewCommand()
	case "show":
		handleShowCommand()
	case "rm":
		handleRmCommand()
	case "edit":
		handleEditCommand()
	case "export":
		handleExportCommand()
	case "serve":
		handleServeCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: montage <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ls                       List projects")
	fmt.Println("  new <title> [aspect]     Create a project (aspect: 16:9, 9:16, 1:1)")
	fmt.Println("  show <project_id>        Print a project's tracks and clips")
	fmt.Println("  rm <project_id>          Delete a project")
	fmt.Println("  edit <project_id>        Open the interactive timeline editor")
	fmt.Println("  export <project_id>      Print the resolved frame composition as JSON")
	fmt.Println("  serve                    Start the HTTP API server")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MONTAGE_DATA_DIR         Data directory (default ./data)")
	fmt.Println("  MONTAGE_PORT             API port for serve (default 3009)")
	fmt.Println("  MONTAGE_PROCESSING_URL   Media processing service base URL")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dataDir() string {
	return envOr("MONTAGE_DATA_DIR", "./data")
}
