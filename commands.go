package main

import (
	"encoding/json"
	"fmt"
	"os"

	"montage/compose"
	"montage/media"
	"montage/shell"
	"montage/timeline"
	"montage/util"
	"montage/web"
)

func initDatabase() *util.Database {
	db, err := util.InitDatabase(dataDir())
	if err != nil {
		fmt.Printf("Error initializing database: %v\n", err)
		os.Exit(1)
	}
	return db
}

func processingClient() *media.ProcessingClient {
	baseURL := os.Getenv("MONTAGE_PROCESSING_URL")
	if baseURL == "" {
		return nil
	}
	return media.NewProcessingClient(baseURL)
}

func handleLsCommand() {
	db := initDatabase()
	defer db.Close()

	projects, err := db.ListProjects()
	if err != nil {
		fmt.Printf("Error listing projects: %v\n", err)
		os.Exit(1)
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet. Create one with: montage new <title>")
		return
	}
	for _, p := range projects {
		fmt.Printf("%s\t%s\t%s\t%s\n", p.ID, p.Title, p.AspectRatio, timeline.FormatTime(p.Duration))
	}
}

func handleNewCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: montage new <title> [aspect]")
		fmt.Println("Example: montage new \"Summer cut\" 9:16")
		os.Exit(1)
	}
	title := os.Args[2]
	aspect := timeline.AspectWide
	if len(os.Args) > 3 {
		aspect = timeline.AspectRatio(os.Args[3])
		switch aspect {
		case timeline.AspectWide, timeline.AspectTall, timeline.AspectSquare:
		default:
			fmt.Printf("Invalid aspect ratio: %s (use 16:9, 9:16 or 1:1)\n", os.Args[3])
			os.Exit(1)
		}
	}

	db := initDatabase()
	defer db.Close()

	project := timeline.NewProject(title, aspect)
	if err := db.SaveProject(project); err != nil {
		fmt.Printf("Error creating project: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created project %s (%s)\n", project.ID, project.Title)
}

func handleShowCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: montage show <project_id>")
		os.Exit(1)
	}
	db := initDatabase()
	defer db.Close()

	project, tracks, keyframes, err := db.LoadProject(os.Args[2])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	width, height := compose.CanvasSize(project)
	fmt.Printf("%s  %s  %dx%d  %s\n", project.Title, project.AspectRatio, width, height, timeline.FormatTime(project.Duration))

	timeline.SortTracks(tracks)
	for _, t := range tracks {
		fmt.Printf("  %-12s %-10s vol %.0f%%\n", t.Label, t.Type, t.Volume)
		kfs := keyframes[t.ID]
		timeline.SortKeyframes(kfs)
		for _, k := range kfs {
			fmt.Printf("    %s - %s  %s  %s\n", timeline.FormatTime(k.Timestamp),
				timeline.FormatTime(k.End()), k.Data.Type, k.Data.URL)
		}
	}
}

func handleRmCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: montage rm <project_id>")
		os.Exit(1)
	}
	db := initDatabase()
	defer db.Close()

	if err := db.DeleteProject(os.Args[2]); err != nil {
		fmt.Printf("Error deleting project: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Project deleted")
}

func handleEditCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: montage edit <project_id>")
		os.Exit(1)
	}
	db := initDatabase()
	defer db.Close()

	project, tracks, keyframes, err := db.LoadProject(os.Args[2])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	store, err := timeline.NewStore(project, tracks, keyframes, db)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	sh := shell.NewShell(store, media.NewResolver(), processingClient())
	sh.Run()
}

// handleExportCommand prints the deterministic frame composition the render
// pipeline consumes. Walking it frame-by-frame always yields the same plan
// for the same project.
func handleExportCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: montage export <project_id>")
		os.Exit(1)
	}
	db := initDatabase()
	defer db.Close()

	project, tracks, keyframes, err := db.LoadProject(os.Args[2])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	comp := compose.Resolve(*project, tracks, keyframes)

	out, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding composition: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func handleServeCommand() {
	db := initDatabase()
	defer db.Close()

	server := web.NewServer(db, processingClient())
	port := envOr("MONTAGE_PORT", "3009")
	if err := server.Serve(port); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
}
